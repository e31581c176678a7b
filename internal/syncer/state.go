package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/model"
)

// neverSyncedLabel is shown before the first successful sync.
const neverSyncedLabel = "Never synced"

// SyncState reads the sync bookkeeping keys and derives the human label.
// The label is computed fresh on every call relative to wall-clock time,
// never cached.
func (e *Engine) SyncState(ctx context.Context) model.SyncState {
	status := model.SyncStatus(e.readString(ctx, cache.KeySyncStatus))
	if status == "" {
		status = model.SyncNever
	}

	raw := e.readString(ctx, cache.KeyLastSyncAt)
	if raw == "" {
		return model.SyncState{Status: status, Label: neverSyncedLabel}
	}

	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		e.logger.Printf("WARNING: malformed last sync timestamp %q: %v", raw, err)
		return model.SyncState{Status: status, Label: neverSyncedLabel}
	}

	return model.SyncState{
		Status:     status,
		LastSyncAt: &last,
		Label:      FormatSince(e.now().Sub(last)),
	}
}

// FormatSince renders an elapsed duration as the app's relative sync label.
//
//	< 10s  -> "Just now"
//	< 60s  -> "{n}s ago"
//	< 60m  -> "{n}m ago"
//	< 24h  -> "{n}h ago"
//	else   -> "{n}d ago"
func FormatSince(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < 10*time.Second:
		return "Just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
