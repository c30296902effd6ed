// Package automation parses automation command flags and launches the
// payment automation runtime.
package automation

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/duebook/duebook/internal/platform/cmd"
	automationapp "github.com/duebook/duebook/internal/services/automation/app"
)

// Config holds automation command configuration.
type Config struct {
	Port         int           `env:"DUEBOOK_AUTOMATION_PORT" envDefault:"8092"`
	DBPath       string        `env:"DUEBOOK_AUTOMATION_DB_PATH" envDefault:"data/obligations.db"`
	PollInterval time.Duration `env:"DUEBOOK_AUTOMATION_POLL_INTERVAL" envDefault:"1m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The automation health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The obligations SQLite database path")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Auto-pay sweep interval")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the automation runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAutomation, func(ctx context.Context) error {
		return automationapp.Run(ctx, automationapp.RuntimeConfig{
			Port:         cfg.Port,
			DBPath:       cfg.DBPath,
			PollInterval: cfg.PollInterval,
		})
	})
}
