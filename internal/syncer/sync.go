package syncer

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/model"
)

// fetchConcurrency bounds the per-entity fan-out so a large account cannot
// open unbounded parallel requests against the backend.
const fetchConcurrency = 4

// SyncFromCloud pulls every entity collection for userID and refreshes the
// local cache.
//
// Returns false without error when the backend is unconfigured or userID is
// empty; both are expected in unauthenticated/offline contexts, not
// failures.
//
// The per-entity fetches run concurrently and are joined before the
// bookkeeping write; each entity's fetch-then-cache-write is sequential
// inside its own flow. A failed fetch does not abort its siblings, and every
// collection that did arrive is still cached. Only a fully clean pass
// records success; any partial failure records status=error, returns false
// and leaves the failed collections' previous cache entries untouched.
func (e *Engine) SyncFromCloud(ctx context.Context, userID string) bool {
	if userID == "" || !e.backend.Configured() {
		return false
	}

	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	e.writeString(ctx, cache.KeySyncStatus, string(model.SyncInProgress))

	var (
		resultMu sync.Mutex
		allOk    = true
	)
	fail := func(what string, err error) {
		e.logger.Printf("WARNING: failed to sync %s: %v", what, err)
		resultMu.Lock()
		allOk = false
		resultMu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(fetchConcurrency)

	g.Go(func() error {
		children, err := e.backend.ListChildren(ctx, userID)
		if err != nil {
			fail("children", err)
			return nil
		}
		if err := e.writeJSON(ctx, cache.KeyChildren, children); err != nil {
			fail("children cache", err)
		}
		return nil
	})

	g.Go(func() error {
		voices, err := e.backend.ListVoices(ctx, userID)
		if err != nil {
			fail("voices", err)
			return nil
		}
		if err := e.writeJSON(ctx, cache.KeyVoices, voices); err != nil {
			fail("voices cache", err)
		}
		return nil
	})

	g.Go(func() error {
		stories, err := e.backend.ListStories(ctx, userID, model.MaxCachedStories)
		if err != nil {
			fail("stories", err)
			return nil
		}
		if err := e.writeJSON(ctx, cache.KeyStories, stories); err != nil {
			fail("stories cache", err)
		}
		return nil
	})

	g.Go(func() error {
		prefs, err := e.backend.GetPreferences(ctx, userID)
		if err != nil {
			fail("preferences", err)
			return nil
		}
		if prefs == nil {
			return nil
		}
		if err := e.writeJSON(ctx, cache.KeyPreferences, prefs); err != nil {
			fail("preferences cache", err)
			return nil
		}
		e.mirrorLegacyPointers(ctx, prefs)
		return nil
	})

	_ = g.Wait()

	if !allOk {
		e.writeString(ctx, cache.KeySyncStatus, string(model.SyncError))
		return false
	}

	now := e.now().UTC()
	e.writeString(ctx, cache.KeyLastSyncAt, now.Format(time.RFC3339))
	e.writeString(ctx, cache.KeySyncStatus, string(model.SyncSuccess))

	// Best-effort mirror of the sync time to cloud preferences; a failure
	// here must not fail a sync that already succeeded.
	if err := e.backend.TouchLastSync(ctx, userID, now); err != nil {
		e.logger.Printf("WARNING: failed to mirror last_sync_at to cloud: %v", err)
	}

	return true
}

// mirrorLegacyPointers copies pointer fields from the preference record into
// their individual legacy keys so older read paths keep working.
func (e *Engine) mirrorLegacyPointers(ctx context.Context, prefs *model.UserPreferences) {
	if prefs.ActiveChildID != "" {
		e.writeString(ctx, cache.KeyActiveChildID, prefs.ActiveChildID)
	}
	if prefs.ActiveVoiceID != "" {
		e.writeString(ctx, cache.KeyActiveVoiceID, prefs.ActiveVoiceID)
	}
	if prefs.NarratorType != "" {
		e.writeString(ctx, cache.KeyNarratorType, prefs.NarratorType)
	}
}
