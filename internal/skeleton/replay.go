package skeleton

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultFPS is the Kinect v2 body frame rate.
const DefaultFPS = 30

// ReadFrames decodes every wire-format frame in r.
func ReadFrames(r io.Reader, logger *slog.Logger) ([]Frame, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var frames []Frame
	err := scanFrames(context.Background(), r, logger, func(f Frame) bool {
		frames = append(frames, f)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	return frames, nil
}

// ReplayConfig configures a ReplaySource.
type ReplayConfig struct {
	Path   string
	FPS    int
	Loop   bool
	Logger *slog.Logger
}

// ReplaySource plays back a recorded frame file at a fixed rate.
type ReplaySource struct {
	config ReplayConfig
	logger *slog.Logger

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
	closed bool

	finished     chan struct{}
	finishedOnce sync.Once
}

// NewReplaySource creates a ReplaySource. The file is opened on Start.
func NewReplaySource(config ReplayConfig) *ReplaySource {
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplaySource{
		config:   config,
		logger:   logger.With("source", "replay", "path", config.Path),
		status:   StatusStopped,
		finished: make(chan struct{}),
	}
}

// Finished is closed once playback reaches the end of a non-looping
// recording, or the recording is missing.
func (s *ReplaySource) Finished() <-chan struct{} {
	return s.finished
}

func (s *ReplaySource) finish() {
	s.finishedOnce.Do(func() { close(s.finished) })
}

// Start loads the recording and begins playback.
// A missing recording leaves the source unavailable without failing.
func (s *ReplaySource) Start(ctx context.Context, handler FrameHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSourceClosed
	}
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	file, err := os.Open(s.config.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.status = StatusUnavailable
			s.logger.Warn("recording not found, sensor unavailable")
			s.finish()
			return nil
		}
		return fmt.Errorf("open recording: %w", err)
	}
	frames, err := ReadFrames(file, s.logger)
	file.Close()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.status = StatusAvailable

	go s.play(runCtx, frames, handler, s.done)

	s.logger.Info("replay started", "frames", len(frames), "fps", s.config.FPS)
	return nil
}

func (s *ReplaySource) play(ctx context.Context, frames []Frame, handler FrameHandler, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(s.config.FPS))
	defer ticker.Stop()

	i := 0
	for {
		if i >= len(frames) {
			if !s.config.Loop || len(frames) == 0 {
				s.setStatus(StatusUnavailable)
				s.logger.Info("replay finished")
				s.finish()
				return
			}
			i = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			handler(frames[i].Clone())
			i++
		}
	}
}

func (s *ReplaySource) setStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Stop halts playback and waits for the in-flight frame to finish.
func (s *ReplaySource) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	s.setStatus(StatusStopped)
	return nil
}

// Status returns the current sensor availability.
func (s *ReplaySource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close stops playback and marks the source closed.
func (s *ReplaySource) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
