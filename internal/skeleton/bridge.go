package skeleton

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// BridgeConfig configures a BridgeSource.
type BridgeConfig struct {
	// Command is the tracker bridge executable. It must write one
	// wire-format frame per line to stdout.
	Command string
	Args    []string
	Logger  *slog.Logger
}

// BridgeSource implements Source using an external tracker bridge subprocess.
type BridgeSource struct {
	config BridgeConfig
	logger *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}
	status Status
	closed bool
}

// NewBridgeSource creates a new bridge source. The process is started on Start.
func NewBridgeSource(config BridgeConfig) *BridgeSource {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &BridgeSource{
		config: config,
		logger: logger.With("source", "bridge", "command", config.Command),
		status: StatusStopped,
	}
}

// Start launches the bridge and streams its frames to handler.
// A bridge executable that cannot be found leaves the source unavailable.
func (s *BridgeSource) Start(ctx context.Context, handler FrameHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSourceClosed
	}
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	path := findBridge(s.config.Command)
	if path == "" {
		s.status = StatusUnavailable
		s.logger.Warn("tracker bridge not found, sensor unavailable")
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, path, s.config.Args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	// Bridge diagnostics go to our stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		s.status = StatusUnavailable
		s.logger.Warn("tracker bridge failed to start", "error", err)
		return nil
	}

	s.cmd = cmd
	s.cancel = cancel
	s.done = make(chan struct{})
	s.status = StatusAvailable

	go func(done chan struct{}) {
		defer close(done)

		err := scanFrames(runCtx, stdout, s.logger, func(f Frame) bool {
			handler(f)
			return runCtx.Err() == nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("tracker bridge stream ended", "error", err)
		}

		waitErr := cmd.Wait()
		if runCtx.Err() == nil {
			s.logger.Warn("tracker bridge exited", "error", waitErr)
			s.setStatus(StatusUnavailable)
		}
	}(s.done)

	s.logger.Info("tracker bridge started", "pid", cmd.Process.Pid)
	return nil
}

func (s *BridgeSource) setStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Stop kills the bridge process and waits for the reader to drain.
func (s *BridgeSource) Stop() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.done = nil
	s.cmd = nil
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
func (s *BridgeSource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close shuts down the bridge process.
func (s *BridgeSource) Close() error {
	if err := s.Stop(); err != nil {
		return err
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// findBridge resolves the bridge executable. Bare names are looked up in
// PATH, then next to our executable and in ~/.kathak/bin.
func findBridge(command string) string {
	if command == "" {
		return ""
	}

	if filepath.IsAbs(command) || filepath.Base(command) != command {
		if info, err := os.Stat(command); err == nil && !info.IsDir() {
			return command
		}
		return ""
	}

	if path, err := exec.LookPath(command); err == nil {
		return path
	}

	var candidates []string
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), command))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".kathak", "bin", command))
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
