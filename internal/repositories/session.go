package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// Session is the persisted login.
type Session struct {
	ID          string
	Username    string
	AccessToken string
	TokenType   string
	CreatedAt   time.Time
}

// SessionRepository stores the access token between runs. It satisfies session.TokenStore.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Current returns the active session or [shared.ErrNoSession].
func (r *SessionRepository) Current() (*Session, error) {
	query := `
		SELECT id, username, access_token, token_type, created_at
		FROM sessions
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`

	var s Session
	err := r.db.QueryRow(query).Scan(&s.ID, &s.Username, &s.AccessToken, &s.TokenType, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &s, nil
}

// Load returns the stored access token, or "" when nobody is logged in.
func (r *SessionRepository) Load() (string, error) {
	s, err := r.Current()
	if errors.Is(err, shared.ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return s.AccessToken, nil
}

// Save replaces any stored session with token.
func (r *SessionRepository) Save(token, username string) error {
	if token == "" {
		return fmt.Errorf("%w: empty access token", shared.ErrInvalidInput)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}

	query := `
		INSERT INTO sessions (id, username, access_token, token_type, created_at) VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, shared.GenerateID(), username, token, "bearer", time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing when nothing is stored is not an error.
func (r *SessionRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
