package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/model"
)

const (
	defaultChildName  = "My Child"
	defaultStoryTitle = "Untitled Story"
)

// MigrateLocalDataToCloud uploads every candidate record in summary to the
// cloud under userID and rewrites the cached copies with the cloud-assigned
// ids.
//
// Children migrate first so their new cloud id can serve as the child_id
// foreign key on the stories and voices that follow. Records migrate one at
// a time; a failed record is appended to Errors and never stops the batch.
// The completion flag is written strictly after the last attempt, gated by
// the engine's RetryPolicy, and a completed migration triggers a best-effort
// cache refresh from the cloud.
func (e *Engine) MigrateLocalDataToCloud(ctx context.Context, userID string, summary model.LocalDataSummary) *model.MigrationResult {
	result := &model.MigrationResult{}

	if userID == "" || !e.backend.Configured() {
		result.Errors = append(result.Errors, "backend not configured, cannot migrate local data")
		return result
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// The id of the first child created this pass. It takes precedence over
	// any stale child_id a local story or voice might reference.
	newChildID := e.migrateChildren(ctx, userID, summary.Children, result)
	e.migrateStories(ctx, userID, summary.Stories, newChildID, result)
	e.migrateVoices(ctx, userID, summary.Voices, newChildID, result)

	result.TotalMigrated = result.MigratedChildren + result.MigratedStories + result.MigratedVoices
	result.Success = len(result.Errors) == 0

	complete := result.Success
	if e.policy == GiveUpAfterFirstAttempt {
		complete = result.Success || result.TotalMigrated > 0
	}
	if complete {
		e.markComplete(ctx, userID)

		// Refresh every cache from the now-authoritative cloud state. A
		// failure here does not undo a migration that already happened.
		if !e.syncer.SyncFromCloud(ctx, userID) {
			e.logger.Printf("WARNING: post-migration sync failed, caches may be stale")
		}
	}

	e.logger.Printf("migration finished: %d children, %d stories, %d voices, %d errors",
		result.MigratedChildren, result.MigratedStories, result.MigratedVoices, len(result.Errors))
	return result
}

func (e *Engine) migrateChildren(ctx context.Context, userID string, children []model.ChildProfile, result *model.MigrationResult) string {
	var newChildID string

	for _, child := range children {
		if child.Name == "" {
			child.Name = defaultChildName
		}
		if child.Interests == nil {
			child.Interests = []string{}
		}

		created, err := e.backend.CreateChild(ctx, userID, child)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("child %q: %v", child.Name, err))
			continue
		}

		result.MigratedChildren++
		if newChildID == "" {
			newChildID = created.ID
		}

		// The cloud record replaces the stale local copy outright.
		e.writeJSON(ctx, cache.KeyPendingChild, model.Reconcile(&child, created))
		e.writeString(ctx, cache.KeyActiveChildID, created.ID)
	}

	return newChildID
}

func (e *Engine) migrateStories(ctx context.Context, userID string, candidates []model.Story, newChildID string, result *model.MigrationResult) {
	if len(candidates) == 0 {
		return
	}

	// Load the full cached list once and patch it in memory; one rewrite at
	// the end instead of a cache write per record.
	var cached []model.Story
	e.readJSON(ctx, cache.KeyStories, &cached)
	patched := false

	for _, story := range candidates {
		oldID := story.ID
		if story.Title == "" {
			story.Title = defaultStoryTitle
		}
		story.ChildID = pickChildID(newChildID, story.ChildID)

		created, err := e.backend.CreateStory(ctx, userID, story)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("story %q: %v", story.Title, err))
			continue
		}

		result.MigratedStories++
		for i := range cached {
			if matchStory(cached[i], oldID, story.Title) {
				cached[i].ID = created.ID
				cached[i].UserID = userID
				cached[i].ChildID = created.ChildID
				patched = true
				break
			}
		}
	}

	if patched {
		if len(cached) > model.MaxCachedStories {
			cached = cached[:model.MaxCachedStories]
		}
		e.writeJSON(ctx, cache.KeyStories, cached)
	}
}

func (e *Engine) migrateVoices(ctx context.Context, userID string, candidates []model.VoiceProfile, newChildID string, result *model.MigrationResult) {
	if len(candidates) == 0 {
		return
	}

	var cached []model.VoiceProfile
	e.readJSON(ctx, cache.KeyVoices, &cached)
	patched := false

	for _, voice := range candidates {
		oldID := voice.ID
		voice.ChildID = pickChildID(newChildID, voice.ChildID)

		// Metadata only. Audio bytes are never re-uploaded by migration;
		// RecordingURL and RecordingLabels keep pointing at wherever the
		// recording already lives.
		created, err := e.backend.CreateVoice(ctx, userID, voice)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("voice %s: %v", voice.VoiceType, err))
			continue
		}

		result.MigratedVoices++
		for i := range cached {
			if cached[i].ID == oldID && oldID != "" {
				cached[i].ID = created.ID
				cached[i].UserID = userID
				cached[i].ChildID = created.ChildID
				patched = true
				break
			}
		}
	}

	if patched {
		e.writeJSON(ctx, cache.KeyVoices, cached)
	}
}

func (e *Engine) markComplete(ctx context.Context, userID string) {
	e.writeString(ctx, cache.MigrationCompleteKey(userID), "true")
	e.writeString(ctx, cache.KeyMigrationCompletedAt, e.now().UTC().Format(time.RFC3339))
}

// pickChildID prefers the child id minted this pass over whatever the local
// record referenced; a stale local child id is dropped rather than sent.
func pickChildID(newChildID string, existing *string) *string {
	if newChildID != "" {
		return &newChildID
	}
	if existing != nil && !model.IsLocalID(*existing) {
		return existing
	}
	return nil
}

// matchStory finds the cached copy of a migrated story, by its old id when
// one existed, otherwise by title.
func matchStory(cached model.Story, oldID, title string) bool {
	if oldID != "" {
		return cached.ID == oldID
	}
	return cached.Title == title
}
