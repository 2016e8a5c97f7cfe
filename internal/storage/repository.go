package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glabrego/network-cli/internal/storage/migrations"
)

const (
	keyCompact     = "pref.compact"
	keyShowNumbers = "pref.show_numbers"
	keyLastPath    = "nav.last_path"
	keyWriteCheck  = "storage.write_check"
)

// Preferences are the UI toggles kept between runs.
type Preferences struct {
	Compact     bool
	ShowNumbers bool
}

type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	if err := migrations.Run(ctx, r.db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// CheckWritable fails when the database file cannot be written.
func (r *Repository) CheckWritable(ctx context.Context) error {
	if err := r.set(ctx, keyWriteCheck, "1"); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, keyWriteCheck); err != nil {
		return fmt.Errorf("clear write check: %w", err)
	}
	return nil
}

func (r *Repository) LoadPreferences(ctx context.Context) (Preferences, error) {
	var prefs Preferences
	compact, err := r.getBool(ctx, keyCompact)
	if err != nil {
		return Preferences{}, err
	}
	showNumbers, err := r.getBool(ctx, keyShowNumbers)
	if err != nil {
		return Preferences{}, err
	}
	prefs.Compact = compact
	prefs.ShowNumbers = showNumbers
	return prefs, nil
}

func (r *Repository) SavePreferences(ctx context.Context, prefs Preferences) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for key, value := range map[string]bool{
		keyCompact:     prefs.Compact,
		keyShowNumbers: prefs.ShowNumbers,
	} {
		if err := upsert(ctx, tx, key, strconv.FormatBool(value), now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LoadLastPath returns the last visited path, or "" when none was saved.
func (r *Repository) LoadLastPath(ctx context.Context) (string, error) {
	value, _, err := r.get(ctx, keyLastPath)
	return value, err
}

func (r *Repository) SaveLastPath(ctx context.Context, path string) error {
	return r.set(ctx, keyLastPath, path)
}

func (r *Repository) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Repository) getBool(ctx context.Context, key string) (bool, error) {
	value, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s %q: %w", key, value, err)
	}
	return b, nil
}

func (r *Repository) set(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return upsert(ctx, r.db, key, value, now)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, key, value, now string) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO app_state (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
  value=excluded.value,
  updated_at=excluded.updated_at
`, key, value, now)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
