package voice

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// Speaker synthesizes a spoken acknowledgment. Speak blocks until done.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// DefaultSpeechCommand returns the platform text-to-speech executable.
func DefaultSpeechCommand() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak"
}

// CommandSpeaker speaks through an external text-to-speech command.
// The text is passed as the final argument.
type CommandSpeaker struct {
	command string
	args    []string
	timeout time.Duration
}

// NewCommandSpeaker creates a CommandSpeaker with the given timeout.
func NewCommandSpeaker(command string, args []string, timeout time.Duration) (*CommandSpeaker, error) {
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("speech command %q: %w", command, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CommandSpeaker{command: path, args: args, timeout: timeout}, nil
}

// Speak runs the command and waits for it to finish.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := append(append([]string{}, s.args...), text)
	cmd := exec.CommandContext(ctx, s.command, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("speech timeout after %s", s.timeout)
	}
	if err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("speech failed: %w, stderr: %s", err, stderr.String())
		}
		return fmt.Errorf("speech failed: %w", err)
	}
	return nil
}

// LogSpeaker writes acknowledgments to a logger instead of speaking them.
type LogSpeaker struct {
	Logger *slog.Logger
}

// Speak logs text.
func (s LogSpeaker) Speak(ctx context.Context, text string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("say", "text", text)
	return nil
}

// NopSpeaker discards acknowledgments.
type NopSpeaker struct{}

// Speak does nothing.
func (NopSpeaker) Speak(context.Context, string) error { return nil }

// MockSpeaker records spoken phrases for tests.
type MockSpeaker struct {
	mu      sync.Mutex
	phrases []string
	Err     error
}

// NewMockSpeaker creates a MockSpeaker.
func NewMockSpeaker() *MockSpeaker {
	return &MockSpeaker{}
}

// Speak records text.
func (m *MockSpeaker) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phrases = append(m.phrases, text)
	return m.Err
}

// Phrases returns a copy of everything spoken.
func (m *MockSpeaker) Phrases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.phrases))
	copy(out, m.phrases)
	return out
}
