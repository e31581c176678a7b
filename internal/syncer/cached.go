package syncer

import (
	"context"

	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/model"
)

// CachedChildren returns the cached child profiles. When the list key is
// absent it falls back to the legacy single-child pointer so installs that
// predate the list cache still render their child. Failures degrade to an
// empty list.
func (e *Engine) CachedChildren(ctx context.Context) []model.ChildProfile {
	var children []model.ChildProfile
	if e.readJSON(ctx, cache.KeyChildren, &children) {
		return children
	}

	var pending model.ChildProfile
	if e.readJSON(ctx, cache.KeyPendingChild, &pending) && pending.Name != "" {
		return []model.ChildProfile{pending}
	}
	return []model.ChildProfile{}
}

// CachedVoices returns the cached voice profiles, or an empty list.
func (e *Engine) CachedVoices(ctx context.Context) []model.VoiceProfile {
	var voices []model.VoiceProfile
	if e.readJSON(ctx, cache.KeyVoices, &voices) {
		return voices
	}
	return []model.VoiceProfile{}
}

// CachedStories returns the cached stories, or an empty list.
func (e *Engine) CachedStories(ctx context.Context) []model.Story {
	var stories []model.Story
	if e.readJSON(ctx, cache.KeyStories, &stories) {
		return stories
	}
	return []model.Story{}
}

// CachedPreferences returns the cached preference record, or nil.
func (e *Engine) CachedPreferences(ctx context.Context) *model.UserPreferences {
	var prefs model.UserPreferences
	if e.readJSON(ctx, cache.KeyPreferences, &prefs) {
		return &prefs
	}
	return nil
}

// ClearSyncCache removes every sync-related cache key, including the
// per-user migration flag for userID when given. Invoked on sign-out.
// Idempotent and safe when no cache exists.
func (e *Engine) ClearSyncCache(ctx context.Context, userID string) {
	if err := e.cache.RemoveMany(ctx, cache.SyncKeys(userID)); err != nil {
		e.logger.Printf("WARNING: failed to clear sync cache: %v", err)
	}
}
