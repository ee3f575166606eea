// Package cli implements the kathak command line.
package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ayusman/kathak/internal/config"
	"github.com/ayusman/kathak/internal/log"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "dev"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// ValidFormats defines the allowed log formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kathak CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kathak",
		Short: "Kathak - skeletal gesture mouse",
		Long:  "Drive the desktop mouse with hand poses tracked by a depth sensor, gated by voice commands.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.LogFormat != "" && !slices.Contains(ValidFormats, opts.LogFormat) {
				return fmt.Errorf("invalid log format %q: must be one of %v", opts.LogFormat, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file (default ~/.kathak/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log format (text|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// load reads the configuration, applies the logging flags and installs the
// global logger.
func (o *RootOptions) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, nil, err
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}

	logger := log.Init(log.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logger.Debug("configuration loaded", "file", cfg.File, "data_dir", cfg.DataDir)
	return cfg, logger, nil
}
