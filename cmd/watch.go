package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/cartographer/internal/config"
	"github.com/papapumpkin/cartographer/internal/journal"
	"github.com/papapumpkin/cartographer/internal/session"
	"github.com/papapumpkin/cartographer/internal/telemetry"
	"github.com/papapumpkin/cartographer/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the newest journal and print scans as they happen",
	Long: `Follows the newest journal file in the journal directory, switching to each
new journal the game starts. Every scan is applied to the session's model and
printed with its value. Stops on SIGINT or SIGTERM and prints a summary.

By default only lines written after startup are read. --replay reads the
newest journal from its start; --resume continues from the saved checkpoint.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("dir", "", "journal directory")
	watchCmd.Flags().String("pattern", journal.DefaultPattern, "journal file name pattern")
	watchCmd.Flags().Bool("replay", false, "read the newest journal from its start")
	watchCmd.Flags().Bool("resume", false, "continue from the saved checkpoint")
	watchCmd.Flags().String("checkpoint", "", "file recording the read position")
	watchCmd.Flags().String("telemetry", "", "append session telemetry to this JSONL file")
	watchCmd.Flags().StringSlice("events", nil, "non-scan events to print")
	watchCmd.Flags().Bool("efficient", false, "value mapped planets with the efficiency bonus")
	watchCmd.MarkFlagsMutuallyExclusive("replay", "resume")

	_ = viper.BindPFlag("journal_dir", watchCmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("pattern", watchCmd.Flags().Lookup("pattern"))
	_ = viper.BindPFlag("checkpoint_path", watchCmd.Flags().Lookup("checkpoint"))
	_ = viper.BindPFlag("telemetry_path", watchCmd.Flags().Lookup("telemetry"))
	_ = viper.BindPFlag("events", watchCmd.Flags().Lookup("events"))
	_ = viper.BindPFlag("efficiency_bonus", watchCmd.Flags().Lookup("efficient"))

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyStartFlags(cmd, &cfg)

	start, err := cfg.StartMode()
	if err != nil {
		return err
	}
	if start == journal.StartAtCheckpoint && cfg.CheckpointPath == "" {
		return fmt.Errorf("--resume needs a checkpoint path (--checkpoint or checkpoint_path)")
	}
	dir := cfg.JournalDir
	if dir == "" {
		dir = defaultJournalDir()
	}
	if dir == "" {
		return fmt.Errorf("no journal directory: set --dir or journal_dir")
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogJSON)

	var em *telemetry.Emitter
	if cfg.TelemetryPath != "" {
		em, err = telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			return err
		}
		defer em.Close()
	}

	sess, err := session.New(session.Config{
		Dir: dir,
		Journal: journal.Options{
			Pattern:        cfg.Pattern,
			Start:          start,
			CheckpointPath: cfg.CheckpointPath,
		},
		Logger:    logger,
		Telemetry: em,
	})
	if err != nil {
		return err
	}

	printer := ui.New(cmd.OutOrStdout(), ui.Options{
		Events:          cfg.Events,
		Odyssey:         cfg.Odyssey,
		EfficiencyBonus: cfg.EfficiencyBonus,
	})
	printer.Subscribe(sess.Dispatcher())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sess.Run(ctx)
	if sumErr := printer.Summary(sess.Model()); sumErr != nil {
		logger.Warn("printing summary", "error", sumErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// applyStartFlags lets --replay and --resume override the configured start
// mode.
func applyStartFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetBool("replay"); v {
		cfg.Start = journal.StartAtBeginning.String()
	}
	if v, _ := cmd.Flags().GetBool("resume"); v {
		cfg.Start = journal.StartAtCheckpoint.String()
	}
}
