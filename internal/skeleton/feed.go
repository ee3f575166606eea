package skeleton

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
)

// maxLineBytes bounds a single wire-format frame.
const maxLineBytes = 1 << 20

// scanFrames decodes newline-delimited frames from r and hands each to fn.
// Lines that fail to decode are logged and skipped.
func scanFrames(ctx context.Context, r io.Reader, logger *slog.Logger, fn func(Frame) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		frame, err := DecodeFrame(line)
		if err != nil {
			logger.Warn("skipping malformed frame", "error", err)
			continue
		}

		if !fn(frame) {
			return nil
		}
	}

	return scanner.Err()
}
