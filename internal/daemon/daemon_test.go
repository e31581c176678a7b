package daemon

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/storynest/storysync/internal/backend"
	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/config"
	"github.com/storynest/storysync/internal/model"
	"github.com/storynest/storysync/internal/syncer"
)

// setupDaemon builds a daemon over a memory cache, an unconfigured backend
// and a temp inbox.
func setupDaemon(t *testing.T) (*Daemon, *cache.MemoryStore, string) {
	t.Helper()

	store := cache.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	client := backend.New(config.Backend{}, nil)
	quiet := log.New(io.Discard, "", 0)
	engine := syncer.New(client, store, quiet)

	inbox := filepath.Join(t.TempDir(), "inbox")
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		t.Fatalf("Failed to create inbox dir: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Logger = quiet
	cfg.DebounceInterval = 10 * time.Millisecond
	cfg.SyncInterval = time.Hour

	d, err := NewWithConfig(engine, store, "user-1", inbox, cfg)
	if err != nil {
		t.Fatalf("Failed to create daemon: %v", err)
	}
	return d, store, inbox
}

// writeDrop writes one envelope file into the inbox.
func writeDrop(t *testing.T, inbox, name, kind string, record any) string {
	t.Helper()

	raw, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Failed to marshal record: %v", err)
	}
	data, err := json.Marshal(Envelope{Kind: kind, Record: raw})
	if err != nil {
		t.Fatalf("Failed to marshal envelope: %v", err)
	}

	path := filepath.Join(inbox, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write drop: %v", err)
	}
	return path
}

func TestNewValidation(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	engine := syncer.New(backend.New(config.Backend{}, nil), store, log.New(io.Discard, "", 0))

	tests := []struct {
		name    string
		engine  *syncer.Engine
		store   cache.Store
		inbox   string
		wantErr bool
	}{
		{"valid", engine, store, t.TempDir(), false},
		{"nil engine", nil, store, t.TempDir(), true},
		{"nil store", engine, nil, t.TempDir(), true},
		{"empty inbox", engine, store, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.engine, tt.store, "user-1", tt.inbox)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			d.cancel()
			_ = d.watcher.Close()
		})
	}
}

func TestIngestInbox(t *testing.T) {
	d, store, inbox := setupDaemon(t)
	defer func() { d.cancel(); _ = d.watcher.Close() }()
	ctx := context.Background()

	writeDrop(t, inbox, "child.json", KindChild, model.ChildProfile{Name: "Mila"})
	writeDrop(t, inbox, "story.json", KindStory, model.Story{Title: "Moon Picnic"})
	writeDrop(t, inbox, "voice.json", KindVoice, model.VoiceProfile{VoiceType: model.VoiceMom})

	if err := d.IngestInbox(); err != nil {
		t.Fatalf("IngestInbox failed: %v", err)
	}

	var child model.ChildProfile
	data, ok, _ := store.Get(ctx, cache.KeyPendingChild)
	if !ok {
		t.Fatalf("pending child not cached")
	}
	if err := json.Unmarshal(data, &child); err != nil {
		t.Fatalf("malformed pending child: %v", err)
	}
	if child.Name != "Mila" || !model.IsLocalID(child.ID) {
		t.Errorf("ingested child should carry a local id, got %+v", child)
	}

	var stories []model.Story
	data, _, _ = store.Get(ctx, cache.KeyStories)
	if err := json.Unmarshal(data, &stories); err != nil {
		t.Fatalf("malformed stories cache: %v", err)
	}
	if len(stories) != 1 || stories[0].Title != "Moon Picnic" {
		t.Errorf("unexpected stories cache: %+v", stories)
	}

	// Consumed drops are removed from the inbox.
	entries, err := os.ReadDir(inbox)
	if err != nil {
		t.Fatalf("Failed to read inbox: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty inbox after ingestion, found %d files", len(entries))
	}
}

func TestIngestedRecordsAreMigrationCandidates(t *testing.T) {
	d, store, inbox := setupDaemon(t)
	defer func() { d.cancel(); _ = d.watcher.Close() }()
	ctx := context.Background()

	writeDrop(t, inbox, "story.json", KindStory, model.Story{Title: "Moon Picnic"})
	if err := d.IngestInbox(); err != nil {
		t.Fatalf("IngestInbox failed: %v", err)
	}

	var stories []model.Story
	data, _, _ := store.Get(ctx, cache.KeyStories)
	if err := json.Unmarshal(data, &stories); err != nil {
		t.Fatalf("malformed stories cache: %v", err)
	}
	if len(stories) != 1 {
		t.Fatalf("expected 1 cached story, got %d", len(stories))
	}
	if !model.IsLocalID(stories[0].ID) || stories[0].UserID != "" {
		t.Errorf("ingested story must look local, got %+v", stories[0])
	}
}

func TestIngestStoryCap(t *testing.T) {
	d, store, inbox := setupDaemon(t)
	defer func() { d.cancel(); _ = d.watcher.Close() }()
	ctx := context.Background()

	// Seed a full cache, then drop one more.
	full := make([]model.Story, model.MaxCachedStories)
	for i := range full {
		full[i] = model.Story{ID: model.NewLocalID(), Title: "Old"}
	}
	data, _ := json.Marshal(full)
	if err := store.Set(ctx, cache.KeyStories, data); err != nil {
		t.Fatalf("Failed to seed stories: %v", err)
	}

	writeDrop(t, inbox, "new.json", KindStory, model.Story{Title: "Newest"})
	if err := d.IngestInbox(); err != nil {
		t.Fatalf("IngestInbox failed: %v", err)
	}

	var stories []model.Story
	data, _, _ = store.Get(ctx, cache.KeyStories)
	if err := json.Unmarshal(data, &stories); err != nil {
		t.Fatalf("malformed stories cache: %v", err)
	}
	if len(stories) != model.MaxCachedStories {
		t.Errorf("cache must stay capped at %d, got %d", model.MaxCachedStories, len(stories))
	}
	if stories[0].Title != "Newest" {
		t.Errorf("new drop must be first, got %q", stories[0].Title)
	}
}

func TestIngestBadDrops(t *testing.T) {
	d, _, inbox := setupDaemon(t)
	defer func() { d.cancel(); _ = d.watcher.Close() }()

	if err := os.WriteFile(filepath.Join(inbox, "junk.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write junk: %v", err)
	}
	writeDrop(t, inbox, "unknown.json", "gadget", map[string]string{"x": "y"})

	// Bad drops are skipped, not fatal.
	if err := d.IngestInbox(); err != nil {
		t.Fatalf("IngestInbox must tolerate bad drops: %v", err)
	}
}

func TestWatcherPicksUpDrop(t *testing.T) {
	d, store, inbox := setupDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Start(ctx) }()

	// Give the watcher a moment to attach.
	time.Sleep(50 * time.Millisecond)
	writeDrop(t, inbox, "live.json", KindChild, model.ChildProfile{Name: "Theo"})

	deadline := time.After(2 * time.Second)
	for {
		if _, ok, _ := store.Get(context.Background(), cache.KeyPendingChild); ok {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("drop was not ingested before deadline")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("daemon exited with error: %v", err)
	}
}

func TestStateFileLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.toml")

	state, err := ReadState(path)
	if err != nil {
		t.Fatalf("ReadState on missing file: %v", err)
	}
	if state != nil {
		t.Errorf("expected nil state for missing file")
	}

	if err := WriteState(path, "user-1", "/tmp/daemon.log"); err != nil {
		t.Fatalf("WriteState failed: %v", err)
	}

	state, err = ReadState(path)
	if err != nil {
		t.Fatalf("ReadState failed: %v", err)
	}
	if state.PID != os.Getpid() || state.UserID != "user-1" {
		t.Errorf("unexpected state: %+v", state)
	}
	if !state.Alive() {
		t.Errorf("our own pid must probe as alive")
	}

	if err := RemoveState(path); err != nil {
		t.Fatalf("RemoveState failed: %v", err)
	}
	if err := RemoveState(path); err != nil {
		t.Errorf("RemoveState must be idempotent: %v", err)
	}
}

func TestAliveOnDeadState(t *testing.T) {
	var state *State
	if state.Alive() {
		t.Errorf("nil state must not be alive")
	}
	if (&State{PID: 0}).Alive() {
		t.Errorf("zero pid must not be alive")
	}
}
