// Package voice implements the activation gate driven by recognized voice
// commands, and the recognizer and speaker adapters around it.
package voice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
)

// DefaultMinConfidence is the lowest recognizer confidence that is acted on.
const DefaultMinConfidence = 0.3

// Command is a recognized voice token.
type Command string

const (
	CommandNone        Command = ""
	CommandActivate    Command = "activate"
	CommandBreak       Command = "break"
	CommandShutDown    Command = "shut down"
	CommandAreYouAlive Command = "are you alive"
	CommandHelpMe      Command = "help me"
)

// Commands lists the vocabulary in help order.
var Commands = []Command{
	CommandActivate,
	CommandBreak,
	CommandShutDown,
	CommandAreYouAlive,
	CommandHelpMe,
}

var commandHelp = map[Command]string{
	CommandActivate:    "start turning gestures into mouse input",
	CommandBreak:       "stop turning gestures into mouse input",
	CommandShutDown:    "exit kathak",
	CommandAreYouAlive: "check that kathak is listening",
	CommandHelpMe:      "print this list",
}

// Acknowledgments spoken back to the user.
const (
	ReplyActivated          = "Activated"
	ReplyAlreadyActivated   = "Already activated"
	ReplyDeactivated        = "Deactivated"
	ReplyAlreadyDeactivated = "Already deactivated"
	ReplyAlive              = "Yes, I am alive"
)

// Utterance is one recognition result.
type Utterance struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Result describes what the gate did with an utterance.
type Result struct {
	Command  Command `json:"command"`
	Accepted bool    `json:"accepted"`
	Changed  bool    `json:"changed"`
	Active   bool    `json:"active"`
	Reply    string  `json:"reply,omitempty"`
}

// Normalize folds case, trims punctuation and collapses whitespace.
func Normalize(text string) string {
	folded := cases.Fold().String(text)
	words := strings.Fields(folded)
	for i, w := range words {
		words[i] = strings.TrimFunc(w, unicode.IsPunct)
	}
	return strings.Join(strings.Fields(strings.Join(words, " ")), " ")
}

// Parse maps recognized text to a command, or CommandNone.
func Parse(text string) Command {
	normalized := Normalize(text)
	for _, c := range Commands {
		if string(c) == normalized {
			return c
		}
	}
	return CommandNone
}

// GateConfig configures a Gate.
type GateConfig struct {
	Speaker       Speaker
	HelpOut       io.Writer
	MinConfidence float64
	OnShutdown    func()
	Logger        *slog.Logger
}

// Gate is the activation flag shared by the frame path and the recognizer.
type Gate struct {
	// mu guards active only; the frame path takes it once per frame.
	mu     sync.Mutex
	active bool

	// speakMu keeps acknowledgments in the order of the flips they report.
	speakMu sync.Mutex

	speaker       Speaker
	helpOut       io.Writer
	minConfidence float64
	onShutdown    func()
	logger        *slog.Logger

	obsMu     sync.RWMutex
	observers []func(Utterance, Result)
}

// NewGate creates an inactive gate.
func NewGate(config GateConfig) *Gate {
	if config.MinConfidence <= 0 {
		config.MinConfidence = DefaultMinConfidence
	}
	if config.HelpOut == nil {
		config.HelpOut = io.Discard
	}
	if config.Speaker == nil {
		config.Speaker = NopSpeaker{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{
		speaker:       config.Speaker,
		helpOut:       config.HelpOut,
		minConfidence: config.MinConfidence,
		onShutdown:    config.OnShutdown,
		logger:        logger.With("component", "gate"),
	}
}

// Active reports whether gestures are translated into input.
func (g *Gate) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// OnCommand registers fn to observe every accepted command.
func (g *Gate) OnCommand(fn func(Utterance, Result)) {
	g.obsMu.Lock()
	defer g.obsMu.Unlock()
	g.observers = append(g.observers, fn)
}

// Handle acts on one utterance. Low-confidence and unknown text is ignored.
// Acknowledgments are spoken synchronously on the caller's goroutine.
func (g *Gate) Handle(ctx context.Context, u Utterance) Result {
	res := g.handle(ctx, u)
	if res.Accepted {
		g.notify(u, res)
	}
	return res
}

func (g *Gate) handle(ctx context.Context, u Utterance) Result {
	if u.Confidence < g.minConfidence {
		return Result{Active: g.Active()}
	}
	cmd := Parse(u.Text)
	if cmd == CommandNone {
		return Result{Active: g.Active()}
	}

	res := Result{Command: cmd, Accepted: true}

	switch cmd {
	case CommandActivate, CommandBreak:
		g.speakMu.Lock()
		defer g.speakMu.Unlock()

		res.Changed, res.Active = g.set(cmd == CommandActivate)
		res.Reply = reply(cmd, res.Changed)
		if res.Changed {
			g.logger.Info("activation changed", "active", res.Active, "confidence", u.Confidence)
		}
		g.speak(ctx, res.Reply)

	case CommandAreYouAlive:
		res.Active = g.Active()
		res.Reply = ReplyAlive
		g.speakMu.Lock()
		defer g.speakMu.Unlock()
		g.speak(ctx, res.Reply)

	case CommandHelpMe:
		res.Active = g.Active()
		g.printHelp()

	case CommandShutDown:
		res.Active = g.Active()
		g.logger.Info("shutdown requested by voice")
		if g.onShutdown != nil {
			g.onShutdown()
		}
	}

	return res
}

// set stores the flag and reports whether it flipped.
func (g *Gate) set(active bool) (changed bool, now bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	changed = g.active != active
	g.active = active
	return changed, g.active
}

func reply(cmd Command, changed bool) string {
	switch {
	case cmd == CommandActivate && changed:
		return ReplyActivated
	case cmd == CommandActivate:
		return ReplyAlreadyActivated
	case changed:
		return ReplyDeactivated
	default:
		return ReplyAlreadyDeactivated
	}
}

func (g *Gate) speak(ctx context.Context, text string) {
	if err := g.speaker.Speak(ctx, text); err != nil {
		g.logger.Warn("acknowledgment failed", "reply", text, "error", err)
	}
}

func (g *Gate) printHelp() {
	var b strings.Builder
	b.WriteString("Voice commands:\n")
	for _, c := range Commands {
		fmt.Fprintf(&b, "  %-14s %s\n", c, commandHelp[c])
	}
	io.WriteString(g.helpOut, b.String())
}

func (g *Gate) notify(u Utterance, res Result) {
	g.obsMu.RLock()
	observers := g.observers
	g.obsMu.RUnlock()

	for _, fn := range observers {
		fn(u, res)
	}
}
