package migrate

import (
	"context"
	"time"

	"github.com/storynest/storysync/internal/cache"
)

// IsMigrationComplete reports whether userID's one-time migration finished.
func (e *Engine) IsMigrationComplete(ctx context.Context, userID string) bool {
	return e.readString(ctx, cache.MigrationCompleteKey(userID)) == "true"
}

// MigrationTimestamp returns when the last migration on this device
// completed, or nil if none has.
func (e *Engine) MigrationTimestamp(ctx context.Context) *time.Time {
	raw := e.readString(ctx, cache.KeyMigrationCompletedAt)
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		e.logger.Printf("WARNING: malformed migration timestamp %q: %v", raw, err)
		return nil
	}
	return &ts
}
