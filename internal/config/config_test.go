package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "<defaults>", cfg.File)
	assert.Equal(t, 7.0, cfg.Gesture.CursorGain)
	assert.Equal(t, 30.0, cfg.Gesture.ScrollGain)
	assert.Equal(t, 0.3, cfg.Voice.MinConfidence)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /tmp/kathak
source:
  kind: Replay
  path: session.jsonl
  fps: 15
  loop: true
gesture:
  cursor_gain: 9
voice:
  enabled: false
  speak_timeout: 2s
logging:
  level: DEBUG
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "/tmp/kathak", cfg.DataDir)
	assert.Equal(t, SourceReplay, cfg.Source.Kind)
	assert.Equal(t, 15, cfg.Source.FPS)
	assert.True(t, cfg.Source.Loop)
	assert.Equal(t, 9.0, cfg.Gesture.CursorGain)
	assert.Equal(t, 30.0, cfg.Gesture.ScrollGain, "unset keys keep defaults")
	assert.False(t, cfg.Voice.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Voice.SpeakTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join("/tmp/kathak", "kathak.db"), cfg.DatabasePath())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecode_UnknownKey(t *testing.T) {
	cfg := Default()
	err := Decode(strings.NewReader("sauce:\n  kind: replay\n"), &cfg)
	assert.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode(strings.NewReader(""), &cfg))
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = " " }},
		{"unknown source", func(c *Config) { c.Source.Kind = "kinect" }},
		{"replay without path", func(c *Config) { c.Source.Kind = SourceReplay; c.Source.Path = "" }},
		{"bridge without command", func(c *Config) { c.Source.Command = "" }},
		{"negative fps", func(c *Config) { c.Source.FPS = -1 }},
		{"zero focal length", func(c *Config) { c.Projection.FX = 0 }},
		{"zero width", func(c *Config) { c.Projection.Width = 0 }},
		{"zero gain", func(c *Config) { c.Gesture.ScrollGain = 0 }},
		{"unknown backend", func(c *Config) { c.Input.Backend = "uinput" }},
		{"confidence above one", func(c *Config) { c.Voice.MinConfidence = 1.5 }},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
