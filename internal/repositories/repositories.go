package repositories

import (
	"database/sql"
	"fmt"
)

// requireRows fails when result affected no rows, naming what was missing.
func requireRows(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found", what)
	}
	return nil
}
