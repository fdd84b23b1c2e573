package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Note is a member's free-text annotation on a device.
type Note struct {
	InstanceID int       `json:"instance_id"`
	Text       string    `json:"note"`
	AuthorID   string    `json:"author_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NoteRepository persists device notes.
type NoteRepository interface {
	SaveNote(ctx context.Context, n Note) error
	// Notes returns every stored note keyed by instance ID.
	Notes(ctx context.Context) (map[int]Note, error)
}

// SQLiteNoteRepository implements NoteRepository using SQLite.
type SQLiteNoteRepository struct {
	db *sql.DB
}

// NewSQLiteNoteRepository creates a new SQLite-backed note repository.
func NewSQLiteNoteRepository(db *sql.DB) *SQLiteNoteRepository {
	return &SQLiteNoteRepository{db: db}
}

// SaveNote replaces the note for n.InstanceID.
func (r *SQLiteNoteRepository) SaveNote(ctx context.Context, n Note) error {
	n.Text = strings.TrimSpace(n.Text)
	if n.Text == "" {
		return ErrEmptyNote
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO device_notes (instance_id, note, author_id, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(instance_id) DO UPDATE SET note = excluded.note,
		   author_id = excluded.author_id, updated_at = excluded.updated_at`,
		n.InstanceID, n.Text, n.AuthorID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving note for device %d: %w", n.InstanceID, err)
	}
	return nil
}

// Notes loads all notes.
func (r *SQLiteNoteRepository) Notes(ctx context.Context) (map[int]Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT instance_id, note, author_id, updated_at FROM device_notes`)
	if err != nil {
		return nil, fmt.Errorf("querying device notes: %w", err)
	}
	defer rows.Close()

	notes := make(map[int]Note)
	for rows.Next() {
		var n Note
		var updatedAt string
		if err := rows.Scan(&n.InstanceID, &n.Text, &n.AuthorID, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning device note: %w", err)
		}
		n.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
		notes[n.InstanceID] = n
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("iterating device notes: %w", err)
	}
	return notes, nil
}
