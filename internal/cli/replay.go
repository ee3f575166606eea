package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/kathak/internal/config"
	"github.com/ayusman/kathak/internal/skeleton"
	"github.com/ayusman/kathak/internal/voice"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	FPS      int
	Inject   bool
	Inactive bool
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Run a recorded frame file through the translator",
		Long: `Play back a newline-delimited JSON frame recording through the full
pipeline and print the resulting input events.

The gate starts active unless --inactive is given. Events are printed, not
injected, unless --inject is given. The session is journaled like a live one.

Example:
  kathak replay testdata/frames/handover.jsonl
  kathak replay --fps 60 --inject recording.jsonl`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.FPS, "fps", 0, "playback rate in frames per second (default from config)")
	cmd.Flags().BoolVar(&opts.Inject, "inject", false, "inject events into the desktop instead of printing them")
	cmd.Flags().BoolVar(&opts.Inactive, "inactive", false, "start with the gate inactive")

	return cmd
}

func (o *ReplayOptions) apply(cfg *config.Config, path string) {
	cfg.Source.Kind = config.SourceReplay
	cfg.Source.Path = path
	cfg.Source.Loop = false
	if o.FPS > 0 {
		cfg.Source.FPS = o.FPS
	}
	cfg.Input.Backend = config.InputDryRun
	if o.Inject {
		cfg.Input.Backend = config.InputRobot
	}
	cfg.Voice.Enabled = false
	cfg.Tray.Enabled = false
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions, path string) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("recording: %w", err)
	}
	opts.apply(&cfg, path)

	comps, err := build(cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer comps.close(logger)
	a := comps.app

	ctx := cmd.Context()
	if !opts.Inactive {
		a.Command(ctx, string(voice.CommandActivate))
	}

	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer a.Stop()

	replay := comps.source.(*skeleton.ReplaySource)
	select {
	case <-replay.Finished():
	case <-a.Done():
	case <-ctx.Done():
	}

	status := a.Status()
	logger.Info("replay finished", "session", status.SessionID, "frames", status.Frames)
	return nil
}
