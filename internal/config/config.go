// Package config loads kathak's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/kathak/internal/gesture"
	"github.com/ayusman/kathak/internal/spatial"
)

// DefaultFileName is looked up inside the data directory.
const DefaultFileName = "config.yaml"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Source kinds.
const (
	SourceNone   = "none"
	SourceReplay = "replay"
	SourceBridge = "bridge"
)

// Input backends.
const (
	InputRobot  = "robot"
	InputDryRun = "dry-run"
)

// Config holds every user-adjustable setting.
type Config struct {
	DataDir    string             `yaml:"data_dir"`
	Listen     string             `yaml:"listen"`
	Source     SourceConfig       `yaml:"source"`
	Projection spatial.Intrinsics `yaml:"projection"`
	Gesture    gesture.Config     `yaml:"gesture"`
	Input      InputConfig        `yaml:"input"`
	Voice      VoiceConfig        `yaml:"voice"`
	Logging    LoggingConfig      `yaml:"logging"`
	Tray       TrayConfig         `yaml:"tray"`

	// File is where the configuration was read from, or "<defaults>".
	File string `yaml:"-"`
}

// SourceConfig selects the skeleton feed.
type SourceConfig struct {
	Kind    string   `yaml:"kind"`
	Path    string   `yaml:"path"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	FPS     int      `yaml:"fps"`
	Loop    bool     `yaml:"loop"`
}

// InputConfig selects the input emitter backend.
type InputConfig struct {
	Backend string `yaml:"backend"`
}

// CommandConfig names an external executable.
type CommandConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// VoiceConfig configures recognition and spoken acknowledgments.
type VoiceConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Recognizer    CommandConfig `yaml:"recognizer"`
	Speaker       CommandConfig `yaml:"speaker"`
	SpeakTimeout  time.Duration `yaml:"speak_timeout"`
	MinConfidence float64       `yaml:"min_confidence"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TrayConfig toggles the system tray icon.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultDataDir returns ~/.kathak, or .kathak when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kathak"
	}
	return filepath.Join(home, ".kathak")
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		Listen:     "127.0.0.1:8080",
		Projection: spatial.DefaultIntrinsics(),
		Gesture:    gesture.DefaultConfig(),
		Source: SourceConfig{
			Kind:    SourceBridge,
			Command: "kathak-bridge",
			FPS:     30,
		},
		Input: InputConfig{Backend: InputRobot},
		Voice: VoiceConfig{
			Enabled:       true,
			Recognizer:    CommandConfig{Command: "kathak-listen"},
			SpeakTimeout:  5 * time.Second,
			MinConfidence: 0.3,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Tray:    TrayConfig{Enabled: true},
		File:    "<defaults>",
	}
}

// DatabasePath returns the SQLite file inside the data directory.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "kathak.db")
}

// Load reads configuration from path on top of the defaults.
// An empty path tries <data dir>/config.yaml and tolerates it being absent.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = filepath.Join(cfg.DataDir, DefaultFileName)
	}

	file, err := os.Open(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config file %q: %w", candidate, err)
	}
	defer file.Close()

	if err := Decode(file, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", candidate, err)
	}
	cfg.File = candidate

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode reads YAML from r into cfg. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	cfg.normalize()
	return nil
}

func (c *Config) normalize() {
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	c.Input.Backend = strings.ToLower(strings.TrimSpace(c.Input.Backend))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Source.Kind == "" {
		c.Source.Kind = SourceNone
	}
}

// Validate ensures values are present and sensible.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalid)
	}

	switch c.Source.Kind {
	case SourceNone:
	case SourceReplay:
		if c.Source.Path == "" {
			return fmt.Errorf("%w: source.path is required for replay", ErrInvalid)
		}
	case SourceBridge:
		if c.Source.Command == "" {
			return fmt.Errorf("%w: source.command is required for bridge", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown source.kind %q", ErrInvalid, c.Source.Kind)
	}
	if c.Source.FPS < 0 {
		return fmt.Errorf("%w: source.fps must not be negative", ErrInvalid)
	}

	p := c.Projection
	if p.FX <= 0 || p.FY <= 0 {
		return fmt.Errorf("%w: projection focal lengths must be positive", ErrInvalid)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: projection width and height must be positive", ErrInvalid)
	}

	if c.Gesture.CursorGain <= 0 || c.Gesture.ScrollGain <= 0 {
		return fmt.Errorf("%w: gesture gains must be positive", ErrInvalid)
	}

	switch c.Input.Backend {
	case InputRobot, InputDryRun:
	default:
		return fmt.Errorf("%w: unknown input.backend %q", ErrInvalid, c.Input.Backend)
	}

	if c.Voice.MinConfidence < 0 || c.Voice.MinConfidence > 1 {
		return fmt.Errorf("%w: voice.min_confidence must be within [0, 1]", ErrInvalid)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown logging.level %q", ErrInvalid, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown logging.format %q", ErrInvalid, c.Logging.Format)
	}

	return nil
}
