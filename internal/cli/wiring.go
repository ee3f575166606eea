package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ayusman/kathak/internal/app"
	"github.com/ayusman/kathak/internal/config"
	"github.com/ayusman/kathak/internal/input"
	"github.com/ayusman/kathak/internal/input/robot"
	"github.com/ayusman/kathak/internal/skeleton"
	"github.com/ayusman/kathak/internal/spatial"
	"github.com/ayusman/kathak/internal/store"
	"github.com/ayusman/kathak/internal/voice"
)

// components are the collaborators built from a configuration.
type components struct {
	store  *store.Store
	source skeleton.Source
	app    *app.App
}

func (c *components) close(logger *slog.Logger) {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			logger.Warn("error closing store", "error", err)
		}
	}
}

// build opens the store and assembles an App for cfg. out receives help text
// and dry-run events.
func build(cfg config.Config, logger *slog.Logger, out io.Writer) (*components, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	source := newSource(cfg.Source, logger)

	a := app.New(app.Config{
		Store:         st,
		Source:        source,
		SourceName:    cfg.Source.Kind,
		Recognizer:    newRecognizer(cfg.Voice, logger),
		Speaker:       newSpeaker(cfg.Voice, logger),
		Emitter:       newEmitter(cfg.Input, out, logger),
		Mapper:        spatial.NewMapper(spatial.NewPinhole(cfg.Projection)),
		Gesture:       cfg.Gesture,
		MinConfidence: cfg.Voice.MinConfidence,
		HelpOut:       out,
		Logger:        logger,
	})

	return &components{store: st, source: source, app: a}, nil
}

func newSource(cfg config.SourceConfig, logger *slog.Logger) skeleton.Source {
	switch cfg.Kind {
	case config.SourceReplay:
		return skeleton.NewReplaySource(skeleton.ReplayConfig{
			Path:   cfg.Path,
			FPS:    cfg.FPS,
			Loop:   cfg.Loop,
			Logger: logger,
		})
	case config.SourceBridge:
		return skeleton.NewBridgeSource(skeleton.BridgeConfig{
			Command: cfg.Command,
			Args:    cfg.Args,
			Logger:  logger,
		})
	default:
		return skeleton.NoSource{}
	}
}

func newRecognizer(cfg config.VoiceConfig, logger *slog.Logger) voice.Recognizer {
	if !cfg.Enabled {
		return nil
	}
	return voice.NewLineRecognizer(voice.LineConfig{
		Command: cfg.Recognizer.Command,
		Args:    cfg.Recognizer.Args,
		Logger:  logger,
	})
}

// newSpeaker falls back to logging acknowledgments when no speech command
// can be found.
func newSpeaker(cfg config.VoiceConfig, logger *slog.Logger) voice.Speaker {
	command := cfg.Speaker.Command
	if command == "" {
		command = voice.DefaultSpeechCommand()
	}
	speaker, err := voice.NewCommandSpeaker(command, cfg.Speaker.Args, cfg.SpeakTimeout)
	if err != nil {
		logger.Warn("speech output unavailable, logging acknowledgments", "error", err)
		return voice.LogSpeaker{Logger: logger}
	}
	return speaker
}

func newEmitter(cfg config.InputConfig, out io.Writer, logger *slog.Logger) input.Emitter {
	if cfg.Backend == config.InputDryRun {
		return input.NewWriter(out)
	}
	return robot.New(logger)
}

// findWebDir searches for the web directory in common locations.
// It checks "web", "../web", "../../web" and <data dir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
