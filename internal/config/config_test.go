package config

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"

	"github.com/papapumpkin/cartographer/internal/journal"
)

// resetViper clears all viper state between tests to avoid cross-contamination.
func resetViper() {
	viper.Reset()
}

func TestLoad_Defaults(t *testing.T) {
	resetViper()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"JournalDir", cfg.JournalDir, ""},
		{"Pattern", cfg.Pattern, "Journal*.log"},
		{"Start", cfg.Start, "end"},
		{"CheckpointPath", cfg.CheckpointPath, ""},
		{"TelemetryPath", cfg.TelemetryPath, ""},
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogJSON", cfg.LogJSON, false},
		{"Odyssey", cfg.Odyssey, true},
		{"EfficiencyBonus", cfg.EfficiencyBonus, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if diff := cmp.Diff([]string{"fsdjump", "startjump", "fssdiscoveryscan", "saascancomplete"}, cfg.Events); diff != "" {
		t.Errorf("Events mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(Config) any
		want   any
	}{
		{
			name:   "journal_dir",
			envKey: "CARTOGRAPHER_JOURNAL_DIR",
			envVal: "/tmp/journals",
			field:  func(c Config) any { return c.JournalDir },
			want:   "/tmp/journals",
		},
		{
			name:   "start",
			envKey: "CARTOGRAPHER_START",
			envVal: "checkpoint",
			field:  func(c Config) any { return c.Start },
			want:   "checkpoint",
		},
		{
			name:   "log_json",
			envKey: "CARTOGRAPHER_LOG_JSON",
			envVal: "true",
			field:  func(c Config) any { return c.LogJSON },
			want:   true,
		},
		{
			name:   "odyssey",
			envKey: "CARTOGRAPHER_ODYSSEY",
			envVal: "false",
			field:  func(c Config) any { return c.Odyssey },
			want:   false,
		},
		{
			name:   "efficiency_bonus",
			envKey: "CARTOGRAPHER_EFFICIENCY_BONUS",
			envVal: "true",
			field:  func(c Config) any { return c.EfficiencyBonus },
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper()
			// Set env prefix so CARTOGRAPHER_* env vars map to config keys.
			viper.SetEnvPrefix("CARTOGRAPHER")
			viper.AutomaticEnv()

			os.Setenv(tt.envKey, tt.envVal)
			defer os.Unsetenv(tt.envKey)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %v", err)
			}
			got := tt.field(cfg)
			if got != tt.want {
				t.Errorf("%s: got %v (%T), want %v (%T)", tt.name, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestConfig_StartMode(t *testing.T) {
	t.Parallel()

	mode, err := Config{Start: "replay"}.StartMode()
	if err != nil || mode != journal.StartAtBeginning {
		t.Errorf("StartMode() = %v, %v; want beginning", mode, err)
	}
	if _, err := (Config{Start: "sideways"}).StartMode(); err == nil {
		t.Error("expected error for unknown start mode")
	}
}
