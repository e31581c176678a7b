package cache

// Key namespace for the sync caches and bookkeeping. The unprefixed legacy
// keys predate the namespaced layout and are kept for older read paths.
const (
	// Entity collection snapshots, written wholesale by the sync engine.
	KeyChildren    = "storysync:children"
	KeyVoices      = "storysync:voices"
	KeyStories     = "storysync:stories"
	KeyPreferences = "storysync:preferences"

	// Sync bookkeeping.
	KeyLastSyncAt = "storysync:last_sync_at"
	KeySyncStatus = "storysync:sync_status"

	// Legacy single-entity pointers retained for backward compatibility.
	KeyPendingChild  = "pending_child_profile"
	KeyActiveChildID = "active_child_id"
	KeyActiveVoiceID = "active_voice_id"
	KeyNarratorType  = "narrator_type"

	// Migration bookkeeping. The completion flag is per user; see
	// MigrationCompleteKey.
	KeyMigrationCompletedAt = "storysync:migration_completed_at"

	migrationCompletePrefix = "storysync:migration_complete:"
)

// MigrationCompleteKey returns the per-user migration completion flag key.
func MigrationCompleteKey(userID string) string {
	return migrationCompletePrefix + userID
}

// SyncKeys lists every key cleared on sign-out, including the per-user
// migration flag for userID when non-empty.
func SyncKeys(userID string) []string {
	keys := []string{
		KeyChildren,
		KeyVoices,
		KeyStories,
		KeyPreferences,
		KeyLastSyncAt,
		KeySyncStatus,
		KeyPendingChild,
		KeyActiveChildID,
		KeyActiveVoiceID,
		KeyNarratorType,
		KeyMigrationCompletedAt,
	}
	if userID != "" {
		keys = append(keys, MigrationCompleteKey(userID))
	}
	return keys
}
