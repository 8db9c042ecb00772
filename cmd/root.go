package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/cartographer/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "cartographer",
	Short: "Follow Elite Dangerous journals and value what you scan",
	Long: `Cartographer tails the game's journal files, rebuilds the systems and bodies
you scan and reports what their exploration data is worth.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .cartographer.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".cartographer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	// A .env file in the working directory may supply CARTOGRAPHER_* values.
	// Variables already set in the environment win.
	_ = godotenv.Load()

	viper.SetEnvPrefix("CARTOGRAPHER")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger. Logs go to stderr so that stdout
// carries only printed events.
func newLogger(w io.Writer, level string, json bool) *slog.Logger {
	logger := logging.New(w, level, json)
	slog.SetDefault(logger)
	return logger
}

// defaultJournalDir returns where the game keeps its journals on this
// platform. Only Windows has a fixed location; elsewhere the directory must
// be configured.
func defaultJournalDir() string {
	if runtime.GOOS != "windows" {
		return ""
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Saved Games", "Frontier Developments", "Elite Dangerous")
}
