package neighborhood

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository defines neighborhood persistence operations.
type Repository interface {
	FindByID(ctx context.Context, id string) (*Neighborhood, error)
	// FuzzyFind returns up to limit neighborhoods whose names match text, best first.
	FuzzyFind(ctx context.Context, text string, limit int) ([]Neighborhood, error)
	Upsert(ctx context.Context, n *Neighborhood) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed neighborhood repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// FindByID returns a single neighborhood.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*Neighborhood, error) {
	var n Neighborhood
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, url, description FROM neighborhoods WHERE id = ?`, id,
	).Scan(&n.ID, &n.Name, &n.URL, &n.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNeighborhoodNotFound
		}
		return nil, fmt.Errorf("scanning neighborhood: %w", err)
	}
	return &n, nil
}

// FuzzyFind ranks every registered neighborhood against text.
// The registry is small (tens of rows), so ranking happens in memory.
func (r *SQLiteRepository) FuzzyFind(ctx context.Context, text string, limit int) ([]Neighborhood, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, url, description FROM neighborhoods ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying neighborhoods: %w", err)
	}
	defer rows.Close()

	var all []Neighborhood
	for rows.Next() {
		var n Neighborhood
		if err := rows.Scan(&n.ID, &n.Name, &n.URL, &n.Description); err != nil {
			return nil, fmt.Errorf("scanning neighborhood row: %w", err)
		}
		all = append(all, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating neighborhood rows: %w", err)
	}

	return rank(text, all, limit), nil
}

// Upsert inserts or replaces a neighborhood.
func (r *SQLiteRepository) Upsert(ctx context.Context, n *Neighborhood) error {
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO neighborhoods (id, name, url, description) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, url = excluded.url,
		   description = excluded.description`,
		n.ID, n.Name, n.URL, n.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting neighborhood %s: %w", n.ID, err)
	}
	return nil
}
