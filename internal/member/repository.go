package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository defines member persistence operations.
type Repository interface {
	// Register creates the member or refreshes its team and display name.
	Register(ctx context.Context, m *Member) (*Member, error)
	FindByID(ctx context.Context, id string) (*Member, error)
	SetPolicyAgreement(ctx context.Context, id string, agreed bool) (*Member, error)
	// IncrementKudos records a kudos for receiverID and returns the updated receiver.
	// The receiver row is created if it does not exist yet.
	IncrementKudos(ctx context.Context, receiverID, giverID, comment string) (*Member, error)
	ListKudos(ctx context.Context, receiverID string) ([]Kudos, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed member repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const memberColumns = `id, team_id, display_name, policy_agreed, policy_answered_at,
	kudos_count, created_at, updated_at`

// Register upserts a member.
func (r *SQLiteRepository) Register(ctx context.Context, m *Member) (*Member, error) {
	if m == nil || m.ID == "" {
		return nil, ErrInvalidMember
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (id, team_id, display_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   team_id = CASE WHEN excluded.team_id = '' THEN members.team_id ELSE excluded.team_id END,
		   display_name = CASE WHEN excluded.display_name = '' THEN members.display_name ELSE excluded.display_name END,
		   updated_at = excluded.updated_at`,
		m.ID, m.TeamID, m.DisplayName, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("registering member %s: %w", m.ID, err)
	}
	return r.FindByID(ctx, m.ID)
}

// FindByID retrieves a member by platform user ID.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*Member, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE id = ?", id)
	return scanMember(row)
}

// SetPolicyAgreement records the member's answer to the policy prompt.
func (r *SQLiteRepository) SetPolicyAgreement(ctx context.Context, id string, agreed bool) (*Member, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		`UPDATE members SET policy_agreed = ?, policy_answered_at = ?, updated_at = ? WHERE id = ?`,
		boolToInt(agreed), now, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating policy agreement for %s: %w", id, err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return nil, ErrMemberNotFound
	}
	return r.FindByID(ctx, id)
}

// IncrementKudos stores the kudos and bumps the receiver's counter atomically.
func (r *SQLiteRepository) IncrementKudos(ctx context.Context, receiverID, giverID, comment string) (*Member, error) {
	if receiverID == "" {
		return nil, ErrInvalidMember
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrEmptyComment
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO members (id, kudos_count, created_at, updated_at) VALUES (?, 1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kudos_count = members.kudos_count + 1, updated_at = excluded.updated_at`,
		receiverID, now, now,
	); err != nil {
		return nil, fmt.Errorf("incrementing kudos for %s: %w", receiverID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kudos (id, giver_id, receiver_id, comment, created_at) VALUES (?, ?, ?, ?, ?)`,
		"kds-"+uuid.NewString(), giverID, receiverID, comment, now,
	); err != nil {
		return nil, fmt.Errorf("recording kudos for %s: %w", receiverID, err)
	}

	m, err := scanMember(tx.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM members WHERE id = ?", receiverID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing kudos: %w", err)
	}
	return m, nil
}

// ListKudos returns the kudos a member received, newest first.
func (r *SQLiteRepository) ListKudos(ctx context.Context, receiverID string) ([]Kudos, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, giver_id, receiver_id, comment, created_at
		 FROM kudos WHERE receiver_id = ? ORDER BY created_at DESC, id`, receiverID)
	if err != nil {
		return nil, fmt.Errorf("listing kudos: %w", err)
	}
	defer rows.Close()

	kudos := []Kudos{}
	for rows.Next() {
		var k Kudos
		var createdAt string
		if err := rows.Scan(&k.ID, &k.GiverID, &k.ReceiverID, &k.Comment, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning kudos row: %w", err)
		}
		k.CreatedAt = parseTime(createdAt)
		kudos = append(kudos, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating kudos: %w", err)
	}
	return kudos, nil
}

// rowScanner is satisfied by *sql.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*Member, error) {
	var m Member
	var agreed sql.NullInt64
	var answeredAt sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&m.ID, &m.TeamID, &m.DisplayName, &agreed, &answeredAt,
		&m.KudosCount, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("scanning member: %w", err)
	}

	if agreed.Valid {
		v := agreed.Int64 == 1
		m.PolicyAgreed = &v
	}
	if answeredAt.Valid {
		t := parseTime(answeredAt.String)
		m.PolicyAnsweredAt = &t
	}
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return &m, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s) //nolint:errcheck // format is controlled
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
