package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/papapumpkin/cartographer/internal/journal"
)

// Config holds all runtime configuration for a cartographer session.
// Values are populated from .cartographer.yaml, CARTOGRAPHER_* env vars, and
// CLI flags.
type Config struct {
	JournalDir      string   `mapstructure:"journal_dir"`
	Pattern         string   `mapstructure:"pattern"`
	Start           string   `mapstructure:"start"`
	CheckpointPath  string   `mapstructure:"checkpoint_path"`
	TelemetryPath   string   `mapstructure:"telemetry_path"`
	LogLevel        string   `mapstructure:"log_level"`
	LogJSON         bool     `mapstructure:"log_json"`
	Odyssey         bool     `mapstructure:"odyssey"`
	EfficiencyBonus bool     `mapstructure:"efficiency_bonus"`
	Events          []string `mapstructure:"events"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("journal_dir", "")
	viper.SetDefault("pattern", journal.DefaultPattern)
	viper.SetDefault("start", "end")
	viper.SetDefault("checkpoint_path", "")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)
	viper.SetDefault("odyssey", true)
	viper.SetDefault("efficiency_bonus", false)
	viper.SetDefault("events", []string{"fsdjump", "startjump", "fssdiscoveryscan", "saascancomplete"})

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// StartMode parses the configured start position.
func (c Config) StartMode() (journal.StartMode, error) {
	return journal.ParseStartMode(c.Start)
}
