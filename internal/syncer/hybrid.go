package syncer

import (
	"context"

	"github.com/storynest/storysync/internal/model"
)

// LoadHybridData serves the two-phase read contract.
//
// Phase 1 snapshots the cache so the caller has renderable data immediately.
// Phase 2 attempts a full cloud refresh, but only when a user is signed in
// and the backend is configured. On success the fresh collections are
// returned with FromCache=false; on any failure the phase-1 snapshot is
// returned unchanged with FromCache=true. The result is always wholesale:
// cached or fresh, never a per-field mixture of the two.
func (e *Engine) LoadHybridData(ctx context.Context, userID string) *model.HybridData {
	snapshot := &model.HybridData{
		Children:    e.CachedChildren(ctx),
		Voices:      e.CachedVoices(ctx),
		Stories:     e.CachedStories(ctx),
		Preferences: e.CachedPreferences(ctx),
		FromCache:   true,
	}

	if userID == "" || !e.backend.Configured() {
		return snapshot
	}

	if !e.SyncFromCloud(ctx, userID) {
		return snapshot
	}

	return &model.HybridData{
		Children:    e.CachedChildren(ctx),
		Voices:      e.CachedVoices(ctx),
		Stories:     e.CachedStories(ctx),
		Preferences: e.CachedPreferences(ctx),
		FromCache:   false,
	}
}
