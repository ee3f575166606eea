// Package app wires the skeleton feed, the per-frame session, the activation
// gate and the input emitter together and owns their lifecycle.
package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/kathak/internal/driver"
	"github.com/ayusman/kathak/internal/gesture"
	"github.com/ayusman/kathak/internal/input"
	"github.com/ayusman/kathak/internal/pipeline"
	"github.com/ayusman/kathak/internal/skeleton"
	"github.com/ayusman/kathak/internal/spatial"
	"github.com/ayusman/kathak/internal/store"
	"github.com/ayusman/kathak/internal/voice"
)

// Config holds the collaborators of an App.
type Config struct {
	// Store persists sessions, settings and the journal. Optional.
	Store *store.Store

	Source     skeleton.Source
	SourceName string

	// Recognizer feeds voice commands. Nil runs with voice disabled.
	Recognizer voice.Recognizer
	Speaker    voice.Speaker

	Emitter input.Emitter
	Mapper  *spatial.Mapper
	Gesture gesture.Config

	MinConfidence float64
	HelpOut       io.Writer
	Logger        *slog.Logger
}

// Status is a point-in-time view of the application.
type Status struct {
	Running   bool            `json:"running"`
	Active    bool            `json:"active"`
	Driver    driver.State    `json:"driver"`
	SessionID string          `json:"session_id"`
	Sensor    skeleton.Status `json:"sensor"`
	Voice     bool            `json:"voice"`
	Frames    uint64          `json:"frames"`
	Gesture   gesture.Config  `json:"gesture"`
}

// App is the running translator.
type App struct {
	config Config
	logger *slog.Logger

	gate    *voice.Gate
	hub     *Broadcaster
	journal *journal

	// frameMu serializes frame processing with classifier swaps.
	frameMu sync.Mutex
	session *pipeline.Session

	mu      sync.RWMutex
	running bool
	voiceOn bool
	cancel  context.CancelFunc

	frames atomic.Uint64

	done     chan struct{}
	doneOnce sync.Once
}

// New creates an App. It does not start any collaborator.
func New(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.Emitter == nil {
		config.Emitter = input.NewRecorder(0, 0)
	}
	if config.Gesture == (gesture.Config{}) {
		config.Gesture = gesture.DefaultConfig()
	}
	if config.SourceName == "" {
		config.SourceName = "unknown"
	}

	a := &App{
		config: config,
		logger: logger,
		hub:    NewBroadcaster(),
		done:   make(chan struct{}),
	}

	a.gate = voice.NewGate(voice.GateConfig{
		Speaker:       config.Speaker,
		HelpOut:       config.HelpOut,
		MinConfidence: config.MinConfidence,
		OnShutdown:    a.Shutdown,
		Logger:        logger,
	})
	a.gate.OnCommand(a.recordCommand)

	a.session = pipeline.NewSession(config.Mapper, gesture.NewClassifier(config.Gesture))
	a.journal = newJournal(config.Store, logger)

	return a
}

// Gate returns the activation gate.
func (a *App) Gate() *voice.Gate {
	return a.gate
}

// Broadcaster returns the hub that receives every frame result.
func (a *App) Broadcaster() *Broadcaster {
	return a.hub
}

// SessionID returns the id of the current session.
func (a *App) SessionID() string {
	return a.session.ID()
}

// Done is closed when a shutdown has been requested.
func (a *App) Done() <-chan struct{} {
	return a.done
}

// Shutdown requests an orderly exit. It never blocks, so it is safe to call
// from recognizer and tray callbacks.
func (a *App) Shutdown() {
	a.doneOnce.Do(func() {
		a.logger.Info("shutdown requested")
		close(a.done)
	})
}

// Start opens the session and subscribes to the sensor and recognizer.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}
	if a.config.Source == nil {
		return errors.New("app: no skeleton source configured")
	}

	runCtx, cancel := context.WithCancel(ctx)

	if err := a.ReloadSettings(); err != nil {
		a.logger.Warn("failed to load stored settings", "error", err)
	}

	if err := a.journal.open(a.session.ID(), a.config.SourceName); err != nil {
		cancel()
		return err
	}

	if err := a.config.Source.Start(runCtx, a.onFrame); err != nil {
		cancel()
		a.journal.close()
		return err
	}
	if a.config.Source.Status() == skeleton.StatusUnavailable {
		a.logger.Warn("sensor unavailable, no frames will arrive", "source", a.config.SourceName)
	}

	a.voiceOn = false
	if a.config.Recognizer != nil {
		err := a.config.Recognizer.Start(runCtx, func(u voice.Utterance) {
			a.gate.Handle(runCtx, u)
		})
		switch {
		case errors.Is(err, voice.ErrRecognizerUnavailable):
			a.logger.Warn("speech recognizer unavailable, voice control disabled", "error", err)
		case err != nil:
			a.logger.Warn("speech recognizer failed to start, voice control disabled", "error", err)
		default:
			a.voiceOn = true
		}
	}

	a.cancel = cancel
	a.running = true
	a.logger.Info("session started",
		"session", a.session.ID(),
		"source", a.config.SourceName,
		"voice", a.voiceOn,
	)
	return nil
}

// Stop unsubscribes from the sensor before releasing it, then from the
// recognizer, then flushes the journal.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}

	if err := a.config.Source.Stop(); err != nil {
		a.logger.Warn("error stopping source", "error", err)
	}
	if err := a.config.Source.Close(); err != nil {
		a.logger.Warn("error closing source", "error", err)
	}

	if a.voiceOn {
		if err := a.config.Recognizer.Stop(); err != nil {
			a.logger.Warn("error stopping recognizer", "error", err)
		}
		a.voiceOn = false
	}

	a.cancel()
	a.journal.close()
	a.hub.Close()

	a.running = false
	a.logger.Info("session stopped", "session", a.session.ID(), "frames", a.frames.Load())
}

// Command routes a token through the gate as a certain recognition.
func (a *App) Command(ctx context.Context, text string) voice.Result {
	return a.gate.Handle(ctx, voice.Utterance{Text: text, Confidence: 1})
}

// Status returns the current status.
func (a *App) Status() Status {
	a.mu.RLock()
	running, voiceOn := a.running, a.voiceOn
	a.mu.RUnlock()

	a.frameMu.Lock()
	drv := a.session.Driver()
	gcfg := a.session.Classifier().Config()
	a.frameMu.Unlock()

	sensor := skeleton.StatusStopped
	if a.config.Source != nil {
		sensor = a.config.Source.Status()
	}

	return Status{
		Running:   running,
		Active:    a.gate.Active(),
		Driver:    drv,
		SessionID: a.session.ID(),
		Sensor:    sensor,
		Voice:     voiceOn,
		Frames:    a.frames.Load(),
		Gesture:   gcfg,
	}
}

// ReloadSettings applies stored gain overrides on top of the configured gains.
func (a *App) ReloadSettings() error {
	gcfg := a.config.Gesture

	if a.config.Store != nil {
		settings := a.config.Store.Settings()
		for key, dst := range map[string]*float64{
			store.SettingCursorGain: &gcfg.CursorGain,
			store.SettingScrollGain: &gcfg.ScrollGain,
		} {
			v, err := settings.Float(key)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil || v <= 0 {
				a.logger.Warn("ignoring invalid setting", "key", key, "error", err)
				continue
			}
			*dst = v
		}
	}

	a.frameMu.Lock()
	a.session.SetClassifier(gesture.NewClassifier(gcfg))
	a.frameMu.Unlock()

	a.logger.Debug("gesture gains applied", "cursor_gain", gcfg.CursorGain, "scroll_gain", gcfg.ScrollGain)
	return nil
}

// onFrame is the sensor callback. The gate is read once, before any body is
// looked at, and the whole frame follows that decision.
func (a *App) onFrame(frame skeleton.Frame) {
	active := a.gate.Active()

	a.frameMu.Lock()
	res := a.session.Process(frame, active, a.config.Emitter)
	a.frameMu.Unlock()

	a.frames.Add(1)

	if err := input.Dispatch(a.config.Emitter, res.Events); err != nil {
		a.logger.Warn("input injection failed", "seq", frame.Seq, "error", err)
	}

	switch res.Change {
	case driver.Acquired:
		a.logger.Info("driver acquired", "body", res.Driver.ID, "seq", frame.Seq)
		a.journal.driver(frame.Seq, res.Driver.ID, res.Change)
	case driver.Lost:
		a.logger.Info("driver lost", "body", res.Previous.ID, "seq", frame.Seq)
		a.journal.driver(frame.Seq, res.Previous.ID, res.Change)
	}

	a.hub.Publish(res)
}

func (a *App) recordCommand(u voice.Utterance, res voice.Result) {
	a.logger.Info("voice command",
		"command", string(res.Command),
		"confidence", u.Confidence,
		"changed", res.Changed,
		"active", res.Active,
	)
	a.journal.command(u, res, time.Now())
}
