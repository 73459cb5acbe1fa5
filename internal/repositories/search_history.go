package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// SearchEntry is one committed search location.
type SearchEntry struct {
	ID          string
	QueryString string
	Text        string
	Page        int
	CreatedAt   time.Time
}

// SearchHistoryRepository records search locations committed by the search controller.
type SearchHistoryRepository struct {
	db *sql.DB
}

// NewSearchHistoryRepository creates a new [SearchHistoryRepository] with the given database connection
func NewSearchHistoryRepository(db *sql.DB) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Record appends a location. Repeating the most recent query string is a no-op.
func (r *SearchHistoryRepository) Record(queryString, text string, page int) (*SearchEntry, error) {
	var last string
	err := r.db.QueryRow("SELECT query_string FROM search_history ORDER BY rowid DESC LIMIT 1").Scan(&last)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("failed to query search history: %w", err)
	case last == queryString:
		return nil, nil
	}

	if page < 1 {
		page = 1
	}
	entry := &SearchEntry{
		ID:          shared.GenerateID(),
		QueryString: queryString,
		Text:        text,
		Page:        page,
		CreatedAt:   time.Now().UTC(),
	}

	query := `
		INSERT INTO search_history (id, query_string, text, page, created_at) VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, entry.ID, entry.QueryString, entry.Text, entry.Page, entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert search entry: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first. A non-positive limit returns everything.
func (r *SearchHistoryRepository) Recent(limit int) ([]SearchEntry, error) {
	query := `
		SELECT id, query_string, text, page, created_at
		FROM search_history
		ORDER BY rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	var entries []SearchEntry
	for rows.Next() {
		var e SearchEntry
		if err := rows.Scan(&e.ID, &e.QueryString, &e.Text, &e.Page, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// Delete removes one entry by id.
func (r *SearchHistoryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM search_history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete search entry: %w", err)
	}
	return requireRows(result, "search entry "+id)
}

// Clear removes every entry and reports how many were deleted.
func (r *SearchHistoryRepository) Clear() (int64, error) {
	result, err := r.db.Exec("DELETE FROM search_history")
	if err != nil {
		return 0, fmt.Errorf("failed to clear search history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}
