package migrate

import (
	"context"

	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/model"
)

// DetectLocalData scans the local cache for records that exist only
// on-device and belong to userID's session.
//
// Returns the empty summary when the backend is unconfigured (migration is
// meaningless without one) or when this user's migration already completed;
// the completed case never re-scans.
func (e *Engine) DetectLocalData(ctx context.Context, userID string) model.LocalDataSummary {
	var summary model.LocalDataSummary

	if userID == "" || !e.backend.Configured() {
		return summary
	}
	if e.IsMigrationComplete(ctx, userID) {
		return summary
	}

	var pending model.ChildProfile
	if e.readJSON(ctx, cache.KeyPendingChild, &pending) && pending.Name != "" {
		if isCandidate(userID, pending.ID, pending.UserID) {
			summary.Children = append(summary.Children, pending)
		}
	}

	var stories []model.Story
	if e.readJSON(ctx, cache.KeyStories, &stories) {
		for _, s := range stories {
			if isCandidate(userID, s.ID, s.UserID) {
				summary.Stories = append(summary.Stories, s)
			}
		}
	}

	var voices []model.VoiceProfile
	if e.readJSON(ctx, cache.KeyVoices, &voices) {
		for _, v := range voices {
			if isCandidate(userID, v.ID, v.UserID) {
				summary.Voices = append(summary.Voices, v)
			}
		}
	}

	summary.HasLocalData = len(summary.Children)+len(summary.Stories)+len(summary.Voices) > 0
	return summary
}

// isCandidate reports whether a cached record needs migration for userID:
// it has no owner, a different owner, or a locally minted id.
func isCandidate(userID, id, recordUserID string) bool {
	if recordUserID == "" || recordUserID != userID {
		return true
	}
	return model.IsLocalID(id)
}
