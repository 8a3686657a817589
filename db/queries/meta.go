package queries

import (
	"context"
	"fmt"
	"time"

	"go.hackfix.me/ticketd/db/types"
)

// StoreInfo returns the application version that created the store, and the
// creation time.
func StoreInfo(ctx context.Context, d types.Querier) (version string, createdAt time.Time, err error) {
	err = d.QueryRowContext(ctx, `SELECT version, created_at FROM _meta`).Scan(&version, &createdAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed reading store metadata: %w", err)
	}

	return version, createdAt, nil
}
