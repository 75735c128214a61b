package share

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/baka-byte447/NewsDigest/internal/logger"
)

// SQLiteStore persists shared articles in an embedded SQLite database so
// share links survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open share database: %w", err)
	}

	// The driver opens lazily; ping to surface bad paths early.
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping share database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	logger.Info("Share store using SQLite", "path", path)
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shared_articles (
		id TEXT PRIMARY KEY,
		article TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		views INTEGER NOT NULL DEFAULT 0
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Create(article json.RawMessage, articleURL string) (string, error) {
	now := time.Now()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := newID(articleURL, now, attempt)

		_, err := s.db.Exec(
			`INSERT INTO shared_articles (id, article, created_at, views) VALUES (?, ?, ?, 0)`,
			id, string(article), now.UTC(),
		)
		if err == nil {
			return id, nil
		}
		if isUniqueViolation(err) {
			continue // collision, re-derive
		}
		return "", fmt.Errorf("failed to store shared article: %w", err)
	}

	return "", errIDSpaceExhausted
}

func (s *SQLiteStore) Get(id string) (*Record, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE shared_articles SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to increment views: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	var record Record
	var article string
	err = tx.QueryRow(
		`SELECT article, created_at, views FROM shared_articles WHERE id = ?`, id,
	).Scan(&article, &record.CreatedAt, &record.Views)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read shared article: %w", err)
	}
	record.Article = json.RawMessage(article)

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit view increment: %w", err)
	}

	return &record, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
