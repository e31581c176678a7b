// Package model provides the entity types shared by the backend gateway,
// the local cache, and the sync/migration engines.
//
// Every entity is scoped to one authenticated user via UserID. Records are
// created client-side, often before any network connectivity exists, with a
// locally minted id (local_* / tmp_*). They are promoted to cloud-backed
// records exactly once by the migration engine, after which the cloud id is
// authoritative.
package model

import (
	"time"
)

// SyncStatus describes the outcome of the most recent cloud sync.
type SyncStatus string

const (
	// SyncNever means no sync has ever been attempted on this device.
	SyncNever SyncStatus = "never"
	// SyncInProgress means a sync is currently running.
	SyncInProgress SyncStatus = "syncing"
	// SyncSuccess means the last sync refreshed every collection.
	SyncSuccess SyncStatus = "success"
	// SyncError means the last sync failed for at least one collection.
	SyncError SyncStatus = "error"
)

// ChildProfile is a child reader profile.
//
// The backend supports multiple children per user; the device tracks at most
// one "active" child through a separate pointer key in the cache.
type ChildProfile struct {
	// ===== Identity =====
	ID     string `json:"id,omitempty"`
	UserID string `json:"user_id,omitempty"`

	// ===== Profile content =====
	Name      string   `json:"name"`
	Birthday  *string  `json:"birthday,omitempty"` // YYYY-MM-DD, nil when unknown
	Age       *int     `json:"age,omitempty"`
	Interests []string `json:"interests"`
	LifeNotes *string  `json:"life_notes,omitempty"`

	// ===== Timestamps =====
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// VoiceType identifies which parent (or custom narrator) recorded a voice.
type VoiceType string

const (
	VoiceMom    VoiceType = "mom"
	VoiceDad    VoiceType = "dad"
	VoiceCustom VoiceType = "custom"
)

// VoiceProfile is the metadata for one parent voice recording session.
// Audio bytes live elsewhere; RecordingLabels maps script-segment keys to
// local or remote audio URIs.
type VoiceProfile struct {
	ID      string  `json:"id,omitempty"`
	UserID  string  `json:"user_id,omitempty"`
	ChildID *string `json:"child_id,omitempty"`

	VoiceType       VoiceType         `json:"voice_type"`
	VoiceName       *string           `json:"voice_name,omitempty"`
	RecordingURL    string            `json:"recording_url,omitempty"`
	RecordingLabels map[string]string `json:"recording_labels,omitempty"`

	DurationSeconds          float64 `json:"duration_seconds,omitempty"`
	ScriptParagraphsRecorded int     `json:"script_paragraphs_recorded"`
	IsComplete               bool    `json:"is_complete"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Complete reports whether the recording covers the whole script.
func (v *VoiceProfile) Complete(totalParagraphs int) bool {
	return totalParagraphs > 0 && v.ScriptParagraphsRecorded >= totalParagraphs
}

// Story is a generated bedtime story. Content may be nil when the full text
// is generated lazily.
type Story struct {
	ID      string  `json:"id,omitempty"`
	UserID  string  `json:"user_id,omitempty"`
	ChildID *string `json:"child_id,omitempty"`

	Title      string  `json:"title"`
	Content    *string `json:"content,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
	Theme      string  `json:"theme,omitempty"`
	IsFavorite bool    `json:"is_favorite"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// MaxCachedStories caps the locally cached story list to the most recent N.
const MaxCachedStories = 50

// UserPreferences is the 1:1 durable pointer record synchronized between
// cache and cloud.
type UserPreferences struct {
	UserID               string     `json:"user_id"`
	ActiveChildID        string     `json:"active_child_id,omitempty"`
	ActiveVoiceID        string     `json:"active_voice_id,omitempty"`
	NarratorType         string     `json:"narrator_type,omitempty"`
	NotificationsEnabled bool       `json:"notifications_enabled"`
	LastSyncAt           *time.Time `json:"last_sync_at,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at,omitempty"`
}

// SyncState is derived bookkeeping, never persisted as one record.
type SyncState struct {
	Status     SyncStatus `json:"status"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	Label      string     `json:"label"`
}

// LocalDataSummary describes on-device records that exist only locally and
// are candidates for one-time migration to the cloud.
type LocalDataSummary struct {
	HasLocalData bool           `json:"has_local_data"`
	Children     []ChildProfile `json:"children,omitempty"`
	Stories      []Story        `json:"stories,omitempty"`
	Voices       []VoiceProfile `json:"voices,omitempty"`
}

// ChildCount returns the number of candidate child profiles.
func (s *LocalDataSummary) ChildCount() int { return len(s.Children) }

// StoryCount returns the number of candidate stories.
func (s *LocalDataSummary) StoryCount() int { return len(s.Stories) }

// VoiceCount returns the number of candidate voice profiles.
func (s *LocalDataSummary) VoiceCount() int { return len(s.Voices) }

// MigrationResult reports the outcome of one migration attempt.
//
// Success is true only when every candidate migrated cleanly. Partial
// progress still counts toward TotalMigrated; per-record failures are
// collected in Errors and never abort the batch.
type MigrationResult struct {
	Success          bool     `json:"success"`
	MigratedChildren int      `json:"migrated_children"`
	MigratedStories  int      `json:"migrated_stories"`
	MigratedVoices   int      `json:"migrated_voices"`
	TotalMigrated    int      `json:"total_migrated"`
	Errors           []string `json:"errors,omitempty"`
}

// HybridData is the two-phase read result: either a wholesale cache snapshot
// (FromCache=true) or a wholesale fresh fetch (FromCache=false), never a
// per-field mixture.
type HybridData struct {
	Children    []ChildProfile   `json:"children"`
	Voices      []VoiceProfile   `json:"voices"`
	Stories     []Story          `json:"stories"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
	FromCache   bool             `json:"from_cache"`
}
