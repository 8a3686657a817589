package models

import (
	"database/sql"
	"fmt"
)

func lastInsertID(result sql.Result) (uint64, error) {
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid ID from database: %d", id)
	}

	return uint64(id), nil
}
