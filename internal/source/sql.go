package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"tagcomplete/internal/domain"
)

// DefaultQuery reads labels from the table created by Seed
const DefaultQuery = `SELECT label FROM suggestions WHERE label LIKE ? ESCAPE '\' ORDER BY label LIMIT 50`

const schema = `
CREATE TABLE IF NOT EXISTS suggestions (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	label TEXT NOT NULL UNIQUE
);
`

// SQL looks suggestions up in a SQLite database. The query takes a single
// LIKE pattern parameter and returns one text column.
type SQL struct {
	db    *sql.DB
	query string
}

// OpenSQL opens a SQLite database and prepares the suggestions table
func OpenSQL(dsn, query string) (*SQL, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// each connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if query == "" {
		query = DefaultQuery
	}
	return &SQL{db: db, query: query}, nil
}

// Close closes the underlying database
func (s *SQL) Close() error {
	return s.db.Close()
}

// Seed inserts labels, skipping the ones already present
func (s *SQL) Seed(ctx context.Context, labels ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO suggestions (label) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, l := range labels {
		if _, err := stmt.ExecContext(ctx, l); err != nil {
			return fmt.Errorf("insert %q: %w", l, err)
		}
	}
	return tx.Commit()
}

// Find returns the labels containing query, case-insensitively
func (s *SQL) Find(ctx context.Context, query string) ([]domain.Suggestion, error) {
	rows, err := s.db.QueryContext(ctx, s.query, "%"+escapeLike(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	out := []domain.Suggestion{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		out = append(out, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read suggestions: %w", err)
	}
	return out, nil
}

// Lookup adapts the source to a trigger lookup
func (s *SQL) Lookup() domain.Lookup {
	return s.Find
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
