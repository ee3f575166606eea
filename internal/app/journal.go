package app

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/kathak/internal/driver"
	"github.com/ayusman/kathak/internal/store"
	"github.com/ayusman/kathak/internal/voice"
)

// journalBuffer bounds pending writes; the frame path never waits on the database.
const journalBuffer = 64

// journal writes driver changes and accepted voice commands from a single goroutine.
type journal struct {
	store  *store.Store
	logger *slog.Logger

	mu        sync.Mutex
	sessionID string
	entries   chan func(sessionID string) error
	wg        sync.WaitGroup
}

func newJournal(s *store.Store, logger *slog.Logger) *journal {
	return &journal{store: s, logger: logger}
}

func (j *journal) open(sessionID, source string) error {
	if j.store == nil {
		return nil
	}
	if err := j.store.Sessions().Create(&store.Session{ID: sessionID, Source: source}); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	entries := make(chan func(string) error, journalBuffer)

	j.mu.Lock()
	j.sessionID = sessionID
	j.entries = entries
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run(sessionID, entries)
	return nil
}

func (j *journal) run(sessionID string, entries <-chan func(string) error) {
	defer j.wg.Done()
	for write := range entries {
		if err := write(sessionID); err != nil {
			j.logger.Warn("journal write failed", "error", err)
		}
	}
}

func (j *journal) enqueue(write func(string) error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.entries == nil {
		return
	}
	select {
	case j.entries <- write:
	default:
		j.logger.Warn("journal full, dropping entry")
	}
}

func (j *journal) driver(seq, bodyID uint64, change driver.Change) {
	j.enqueue(func(sessionID string) error {
		return j.store.DriverEvents().Add(&store.DriverEvent{
			SessionID: sessionID,
			Seq:       seq,
			BodyID:    bodyID,
			Change:    change.String(),
		})
	})
}

func (j *journal) command(u voice.Utterance, res voice.Result, at time.Time) {
	j.enqueue(func(sessionID string) error {
		return j.store.VoiceCommands().Add(&store.VoiceCommand{
			SessionID:  sessionID,
			Command:    string(res.Command),
			Text:       u.Text,
			Confidence: u.Confidence,
			Changed:    res.Changed,
			Active:     res.Active,
			CreatedAt:  at,
		})
	})
}

// close drains pending entries and marks the session ended.
func (j *journal) close() {
	j.mu.Lock()
	entries, sessionID := j.entries, j.sessionID
	j.entries = nil
	j.mu.Unlock()

	if entries == nil {
		return
	}
	close(entries)
	j.wg.Wait()

	if err := j.store.Sessions().End(sessionID, time.Now()); err != nil {
		j.logger.Warn("failed to end session", "session", sessionID, "error", err)
	}
}
