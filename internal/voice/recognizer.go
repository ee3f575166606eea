package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ErrRecognizerUnavailable is returned when the speech recognizer cannot run,
// for example because its acoustic model or executable is missing.
var ErrRecognizerUnavailable = errors.New("voice: recognizer unavailable")

// Recognizer delivers recognition results asynchronously.
type Recognizer interface {
	// Start begins recognition. fn is called from the recognizer's goroutine.
	Start(ctx context.Context, fn func(Utterance)) error

	// Stop cancels recognition. No callback runs after Stop returns.
	Stop() error
}

// ParseLine parses a "text<TAB>confidence" recognition line.
func ParseLine(line string) (Utterance, bool) {
	text, conf, ok := strings.Cut(line, "\t")
	if !ok {
		return Utterance{}, false
	}
	confidence, err := strconv.ParseFloat(strings.TrimSpace(conf), 64)
	if err != nil {
		return Utterance{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Utterance{}, false
	}
	return Utterance{Text: text, Confidence: confidence}, true
}

// LineConfig configures a LineRecognizer.
type LineConfig struct {
	// Input is read directly when set. Otherwise Command is spawned and its
	// stdout is read.
	Input   io.Reader
	Command string
	Args    []string
	Logger  *slog.Logger
}

// LineRecognizer reads tab-separated recognition results, one per line,
// from a reader or from an external recognizer process.
type LineRecognizer struct {
	config LineConfig
	logger *slog.Logger

	// mu is held while a callback runs, so Stop waits for it.
	mu      sync.Mutex
	fn      func(Utterance)
	cancel  context.CancelFunc
	cmd     *exec.Cmd
	started bool
}

// NewLineRecognizer creates a LineRecognizer.
func NewLineRecognizer(config LineConfig) *LineRecognizer {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LineRecognizer{
		config: config,
		logger: logger.With("component", "recognizer"),
	}
}

// Start opens the input and begins delivering utterances.
func (r *LineRecognizer) Start(ctx context.Context, fn func(Utterance)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return errors.New("voice: recognizer already started")
	}

	runCtx, cancel := context.WithCancel(ctx)

	input := r.config.Input
	if input == nil {
		if r.config.Command == "" {
			cancel()
			return fmt.Errorf("%w: no recognizer command configured", ErrRecognizerUnavailable)
		}
		path, err := exec.LookPath(r.config.Command)
		if err != nil {
			cancel()
			return fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)
		}

		cmd := exec.CommandContext(runCtx, path, r.config.Args...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			cancel()
			return fmt.Errorf("create stdout pipe: %w", err)
		}
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			cancel()
			return fmt.Errorf("%w: %v", ErrRecognizerUnavailable, err)
		}
		r.cmd = cmd
		input = stdout
	}

	r.fn = fn
	r.cancel = cancel
	r.started = true

	go r.read(runCtx, input)
	return nil
}

func (r *LineRecognizer) read(ctx context.Context, input io.Reader) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		u, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		if !r.deliver(u) {
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		r.logger.Warn("recognizer input ended", "error", err)
	}
}

func (r *LineRecognizer) deliver(u Utterance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fn == nil {
		return false
	}
	r.fn(u)
	return true
}

// Stop unsubscribes the callback and cancels the recognizer process.
func (r *LineRecognizer) Stop() error {
	r.mu.Lock()
	r.fn = nil
	cancel, cmd := r.cancel, r.cmd
	r.cancel = nil
	r.cmd = nil
	r.started = false
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if cmd != nil {
		// Killed by context cancellation; the exit status is expected.
		_ = cmd.Wait()
	}
	return nil
}

// MockRecognizer is a test Recognizer driven by Say.
type MockRecognizer struct {
	mu       sync.Mutex
	fn       func(Utterance)
	StartErr error
}

// NewMockRecognizer creates a MockRecognizer.
func NewMockRecognizer() *MockRecognizer {
	return &MockRecognizer{}
}

// Start registers fn, or fails with StartErr.
func (m *MockRecognizer) Start(ctx context.Context, fn func(Utterance)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartErr != nil {
		return m.StartErr
	}
	m.fn = fn
	return nil
}

// Say delivers an utterance synchronously. Returns false when stopped.
func (m *MockRecognizer) Say(text string, confidence float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fn == nil {
		return false
	}
	m.fn(Utterance{Text: text, Confidence: confidence})
	return true
}

// Stop unregisters the callback.
func (m *MockRecognizer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = nil
	return nil
}
