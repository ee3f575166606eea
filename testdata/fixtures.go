// Package testdata embeds recorded skeleton frame sequences for tests.
package testdata

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"path"
	"strings"
)

//go:embed frames/*
var framesFS embed.FS

// LoadRecording returns the raw newline-delimited frames of a recording.
func LoadRecording(name string) ([]byte, error) {
	if !strings.HasSuffix(name, ".jsonl") {
		name += ".jsonl"
	}
	data, err := framesFS.ReadFile(path.Join("frames", name))
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", name, err)
	}
	return data, nil
}

// OpenRecording returns a reader over a recording.
func OpenRecording(name string) (io.Reader, error) {
	data, err := LoadRecording(name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// Recordings lists the embedded recording names.
func Recordings() ([]string, error) {
	entries, err := framesFS.ReadDir("frames")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".jsonl"))
	}
	return names, nil
}
