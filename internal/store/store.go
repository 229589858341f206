// Package store provides the SQLite-backed presentation store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/altafr/present99/internal/apperr"
	"github.com/altafr/present99/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS presentations (
	id         TEXT PRIMARY KEY,
	topic      TEXT NOT NULL DEFAULT '',
	theme_id   TEXT NOT NULL DEFAULT '',
	slides     TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_presentations_updated ON presentations(updated_at);
`

// Repository defines the presentation persistence operations. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type Repository interface {
	Create(ctx context.Context, p *models.Presentation) error
	Get(ctx context.Context, id string) (*models.Presentation, error)
	List(ctx context.Context) ([]models.Presentation, error)
	Save(ctx context.Context, p *models.Presentation) error
	Delete(ctx context.Context, id string) error
	UpdateSlideImage(ctx context.Context, presentationID, slideID, imageURL string) error
	Close() error
}

// Verify *DB satisfies Repository at compile time.
var _ Repository = (*DB)(nil)

// DB wraps a sql.DB with presentation-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Create inserts a new presentation. Timestamps are set if zero.
func (db *DB) Create(ctx context.Context, p *models.Presentation) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	slides, err := json.Marshal(p.Slides)
	if err != nil {
		return fmt.Errorf("store: marshal slides: %w", err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO presentations (id, topic, theme_id, slides, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Topic, p.ThemeID, string(slides), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: insert presentation: %w", err)
	}
	return nil
}

// Get returns the presentation with the given id.
func (db *DB) Get(ctx context.Context, id string) (*models.Presentation, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, topic, theme_id, slides, created_at, updated_at FROM presentations WHERE id = ?`, id)
	return scanPresentation(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPresentation(row rowScanner) (*models.Presentation, error) {
	var p models.Presentation
	var slidesJSON string
	err := row.Scan(&p.ID, &p.Topic, &p.ThemeID, &slidesJSON, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan presentation: %w", err)
	}
	if err := json.Unmarshal([]byte(slidesJSON), &p.Slides); err != nil {
		return nil, fmt.Errorf("store: unmarshal slides: %w", err)
	}
	return &p, nil
}

// List returns all presentations ordered by most recently modified.
func (db *DB) List(ctx context.Context) ([]models.Presentation, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, topic, theme_id, slides, created_at, updated_at FROM presentations ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list presentations: %w", err)
	}
	defer rows.Close()

	out := []models.Presentation{}
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Save replaces the stored presentation wholesale. This is the editing path;
// it bumps updated_at and returns apperr.ErrNotFound for unknown ids.
func (db *DB) Save(ctx context.Context, p *models.Presentation) error {
	p.UpdatedAt = time.Now().UTC()
	slides, err := json.Marshal(p.Slides)
	if err != nil {
		return fmt.Errorf("store: marshal slides: %w", err)
	}
	res, err := db.conn.ExecContext(ctx,
		`UPDATE presentations SET topic = ?, theme_id = ?, slides = ?, updated_at = ? WHERE id = ?`,
		p.Topic, p.ThemeID, string(slides), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("store: update presentation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes the presentation with the given id.
func (db *DB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM presentations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete presentation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpdateSlideImage sets the image reference on the slide with the given id,
// leaving every other field and every sibling slide untouched. The
// read-modify-write runs in one transaction so concurrent reconcilers and
// editors each see whole-field writes. Returns apperr.ErrNotFound when the
// presentation or the slide no longer exists.
func (db *DB) UpdateSlideImage(ctx context.Context, presentationID, slideID, imageURL string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback()

	var slidesJSON string
	err = tx.QueryRowContext(ctx,
		`SELECT slides FROM presentations WHERE id = ?`, presentationID).Scan(&slidesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("store: read slides: %w", err)
	}

	var slides []models.Slide
	if err := json.Unmarshal([]byte(slidesJSON), &slides); err != nil {
		return fmt.Errorf("store: unmarshal slides: %w", err)
	}

	found := false
	for i := range slides {
		if slides[i].ID == slideID {
			slides[i].ImageURL = imageURL
			found = true
			break
		}
	}
	if !found {
		return apperr.ErrNotFound
	}

	updated, err := json.Marshal(slides)
	if err != nil {
		return fmt.Errorf("store: marshal slides: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE presentations SET slides = ?, updated_at = ? WHERE id = ?`,
		string(updated), time.Now().UTC(), presentationID); err != nil {
		return fmt.Errorf("store: write slides: %w", err)
	}
	return tx.Commit()
}
