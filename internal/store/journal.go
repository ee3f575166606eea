package store

import (
	"database/sql"
	"time"
)

// DriverEvent records a driver acquisition or loss.
type DriverEvent struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       uint64    `json:"seq"`
	BodyID    uint64    `json:"body_id"`
	Change    string    `json:"change"`
	CreatedAt time.Time `json:"created_at"`
}

// DriverEventRepository provides access to driver events.
type DriverEventRepository struct {
	db *sql.DB
}

// DriverEvents returns the driver event repository for this store.
func (s *Store) DriverEvents() *DriverEventRepository {
	return &DriverEventRepository{db: s.db}
}

// Add appends a driver event.
func (r *DriverEventRepository) Add(e *DriverEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	result, err := r.db.Exec(
		`INSERT INTO driver_events (session_id, seq, body_id, change, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, int64(e.Seq), int64(e.BodyID), e.Change, e.CreatedAt,
	)
	if err != nil {
		return err
	}
	e.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's driver events in order.
func (r *DriverEventRepository) ListBySession(sessionID string) ([]*DriverEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, seq, body_id, change, created_at
		 FROM driver_events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*DriverEvent
	for rows.Next() {
		e := &DriverEvent{}
		var seq, bodyID int64
		if err := rows.Scan(&e.ID, &e.SessionID, &seq, &bodyID, &e.Change, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		e.BodyID = uint64(bodyID)
		events = append(events, e)
	}
	return events, rows.Err()
}

// VoiceCommand records an accepted voice command.
type VoiceCommand struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Command    string    `json:"command"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Changed    bool      `json:"changed"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// VoiceCommandRepository provides access to the voice command log.
type VoiceCommandRepository struct {
	db *sql.DB
}

// VoiceCommands returns the voice command repository for this store.
func (s *Store) VoiceCommands() *VoiceCommandRepository {
	return &VoiceCommandRepository{db: s.db}
}

// Add appends a voice command.
func (r *VoiceCommandRepository) Add(c *VoiceCommand) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	result, err := r.db.Exec(
		`INSERT INTO voice_commands (session_id, command, text, confidence, changed, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.SessionID, c.Command, c.Text, c.Confidence, c.Changed, c.Active, c.CreatedAt,
	)
	if err != nil {
		return err
	}
	c.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's voice commands in order.
func (r *VoiceCommandRepository) ListBySession(sessionID string) ([]*VoiceCommand, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, command, text, confidence, changed, active, created_at
		 FROM voice_commands WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commands []*VoiceCommand
	for rows.Next() {
		c := &VoiceCommand{}
		var changed, active int
		if err := rows.Scan(&c.ID, &c.SessionID, &c.Command, &c.Text, &c.Confidence, &changed, &active, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Changed = changed != 0
		c.Active = active != 0
		commands = append(commands, c)
	}
	return commands, rows.Err()
}
