// Package store persists user voice preferences and saved dictations in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Preferences are a user's voice input settings.
type Preferences struct {
	UserID                 string    `json:"user_id"`
	KeyStage               string    `json:"key_stage" validate:"oneof=early-years ks1 ks2 ks3 ks4"`
	VoiceNavigationEnabled bool      `json:"voice_navigation_enabled"`
	FeedbackEnabled        bool      `json:"feedback_enabled"`
	Accent                 string    `json:"accent"`
	AgeGroup               string    `json:"age_group,omitempty"`
	Sensitivity            int       `json:"sensitivity" validate:"min=0,max=100"`
	Adaptive               bool      `json:"adaptive"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Dictation is a saved piece of dictated text.
type Dictation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SQLiteStore stores preferences and dictations in a SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	defaults Preferences

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates the database at dbPath. defaults are
// returned for users with no stored preferences.
func NewSQLiteStore(dbPath string, defaults Preferences) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:       db,
		defaults: defaults,
		entropy:  ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS preferences (
		user_id          TEXT PRIMARY KEY,
		key_stage        TEXT NOT NULL,
		voice_navigation INTEGER NOT NULL DEFAULT 1,
		feedback         INTEGER NOT NULL DEFAULT 1,
		accent           TEXT NOT NULL DEFAULT 'general',
		age_group        TEXT NOT NULL DEFAULT '',
		sensitivity      INTEGER NOT NULL DEFAULT 50,
		adaptive         INTEGER NOT NULL DEFAULT 1,
		updated_at       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS dictations (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_dictations_user ON dictations(user_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Defaults returns the preferences used for users with no stored row.
func (s *SQLiteStore) Defaults(userID string) Preferences {
	p := s.defaults
	p.UserID = userID
	return p
}

// GetPreferences returns the user's preferences, or the defaults when none
// are stored.
func (s *SQLiteStore) GetPreferences(ctx context.Context, userID string) (Preferences, error) {
	var (
		p         Preferences
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, key_stage, voice_navigation, feedback, accent, age_group, sensitivity, adaptive, updated_at
		FROM preferences WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.KeyStage, &p.VoiceNavigationEnabled, &p.FeedbackEnabled,
		&p.Accent, &p.AgeGroup, &p.Sensitivity, &p.Adaptive, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s.Defaults(userID), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return p, nil
}

// PutPreferences inserts or replaces the user's preferences.
func (s *SQLiteStore) PutPreferences(ctx context.Context, p Preferences) (Preferences, error) {
	if p.UserID == "" {
		return Preferences{}, errors.New("put preferences: user id is required")
	}
	p.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, key_stage, voice_navigation, feedback, accent, age_group, sensitivity, adaptive, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			key_stage = excluded.key_stage,
			voice_navigation = excluded.voice_navigation,
			feedback = excluded.feedback,
			accent = excluded.accent,
			age_group = excluded.age_group,
			sensitivity = excluded.sensitivity,
			adaptive = excluded.adaptive,
			updated_at = excluded.updated_at`,
		p.UserID, p.KeyStage, p.VoiceNavigationEnabled, p.FeedbackEnabled,
		p.Accent, p.AgeGroup, p.Sensitivity, p.Adaptive, p.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Preferences{}, fmt.Errorf("put preferences: %w", err)
	}
	return p, nil
}

// SaveDictation stores text for userID.
func (s *SQLiteStore) SaveDictation(ctx context.Context, userID, text string) (*Dictation, error) {
	now := time.Now().UTC()
	d := &Dictation{ID: s.newID(now), UserID: userID, Text: text, CreatedAt: now}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO dictations (id, user_id, text, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.UserID, d.Text, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("save dictation: %w", err)
	}
	return d, nil
}

// GetDictation returns one saved dictation.
func (s *SQLiteStore) GetDictation(ctx context.Context, id string) (*Dictation, error) {
	var (
		d         Dictation
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, text, created_at FROM dictations WHERE id = ?`, id,
	).Scan(&d.ID, &d.UserID, &d.Text, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dictation: %w", err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &d, nil
}

// ListDictations returns up to limit of the user's dictations, newest first.
func (s *SQLiteStore) ListDictations(ctx context.Context, userID string, limit int) ([]Dictation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, text, created_at FROM dictations
		WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list dictations: %w", err)
	}
	defer rows.Close()

	out := []Dictation{}
	for rows.Next() {
		var (
			d         Dictation
			createdAt string
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scan dictation: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
