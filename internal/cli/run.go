package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/kathak/internal/app"
	"github.com/ayusman/kathak/internal/config"
	"github.com/ayusman/kathak/internal/driver"
	"github.com/ayusman/kathak/internal/overlay"
	"github.com/ayusman/kathak/internal/server"
	"github.com/ayusman/kathak/internal/tray"
	"github.com/ayusman/kathak/internal/voice"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Listen  string
	DryRun  bool
	NoTray  bool
	NoVoice bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Translate live body tracking into mouse input",
		Long: `Start the translator with the configured skeleton source.

Gesture input stays inactive until the "activate" command is heard, or sent
from the tray or POST /api/commands. "break" suspends it and "shut down" exits.

Example:
  kathak run
  kathak run --dry-run --no-tray --listen 127.0.0.1:9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "HTTP listen address (overrides config)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print input events instead of injecting them")
	cmd.Flags().BoolVar(&opts.NoTray, "no-tray", false, "do not show the system tray icon")
	cmd.Flags().BoolVar(&opts.NoVoice, "no-voice", false, "disable speech recognition")

	return cmd
}

func (o *RunOptions) apply(cfg *config.Config) {
	if o.Listen != "" {
		cfg.Listen = o.Listen
	}
	if o.DryRun {
		cfg.Input.Backend = config.InputDryRun
	}
	if o.NoTray {
		cfg.Tray.Enabled = false
	}
	if o.NoVoice {
		cfg.Voice.Enabled = false
	}
}

func runDaemon(cmd *cobra.Command, opts *RunOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	opts.apply(&cfg)

	comps, err := build(cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer comps.close(logger)
	a := comps.app

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer a.Stop()

	webDir := findWebDir(cfg.DataDir)
	if webDir != "" {
		logger.Info("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:   webDir,
		Store:       comps.store,
		Controller:  a,
		Broadcaster: a.Broadcaster(),
		Overlay:     overlay.NewRenderer(cfg.Projection.Width, cfg.Projection.Height),
		Logger:      logger,
	})
	httpSrv := srv.HTTPServer(cfg.Listen)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	wait := func() error {
		select {
		case <-ctx.Done():
			logger.Info("signal received")
		case <-a.Done():
		case err := <-serveErr:
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}

	if cfg.Tray.Enabled {
		err = runWithTray(a, cfg.Listen, logger, wait)
	} else {
		err = wait()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := httpSrv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warn("error shutting down server", "error", shutdownErr)
	}
	return err
}

// runWithTray runs the tray on the calling goroutine, which must be the main
// one, and wait alongside it. Whichever finishes first ends the other.
func runWithTray(a *app.App, listen string, logger *slog.Logger, wait func() error) error {
	t := tray.New()
	t.OnCommand(func(cmd voice.Command) voice.Result {
		return a.Command(context.Background(), string(cmd))
	})
	t.OnStatus(func() {
		logger.Info("status page", "url", "http://"+listen+"/")
	})
	t.OnQuit(a.Shutdown)

	a.Gate().OnCommand(func(_ voice.Utterance, res voice.Result) {
		t.SetActive(res.Active)
	})

	results, unsubscribe := a.Broadcaster().Subscribe()
	defer unsubscribe()
	go func() {
		for res := range results {
			if res.Change != driver.Unchanged {
				t.SetDriver(res.Driver)
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- wait()
		t.Quit()
	}()

	t.Run()
	a.Shutdown()
	return <-errCh
}
