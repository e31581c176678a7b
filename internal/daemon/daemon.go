// Package daemon provides the background sync daemon.
//
// The daemon:
// 1. Watches the inbox directory for dropped record files
// 2. Ingests each drop into the local cache as a sync/migration candidate
// 3. Periodically refreshes the cache from the cloud
// 4. Handles graceful shutdown
package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/syncer"
)

// Events receives notifications about daemon activity. Implementations must
// not block; the daemon calls them inline.
type Events interface {
	SyncStarted(userID string)
	SyncCompleted(userID string, ok bool)
}

// Config holds configuration for the daemon.
type Config struct {
	// SyncInterval is how often to refresh the cache from the cloud.
	SyncInterval time.Duration

	// DebounceInterval is how long to wait before processing inbox drops.
	// This batches rapid writes to the same file together.
	DebounceInterval time.Duration

	// Logger for daemon activity.
	Logger *log.Logger

	// Events is optional; nil disables notifications.
	Events Events
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SyncInterval:     5 * time.Minute,
		DebounceInterval: 200 * time.Millisecond,
		Logger:           log.New(os.Stderr, "[daemon] ", log.LstdFlags),
	}
}

// NewRotatingLogger returns a daemon logger writing to a size-rotated file.
func NewRotatingLogger(path string) *log.Logger {
	return log.New(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}, "[daemon] ", log.LstdFlags)
}

// Daemon orchestrates inbox watching and periodic cloud syncs.
type Daemon struct {
	engine   *syncer.Engine
	store    cache.Store
	userID   string
	inboxDir string
	config   *Config

	watcher       *fsnotify.Watcher
	changeQueue   map[string]time.Time // filepath -> timestamp
	changeQueueMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Daemon instance.
//
// The daemon requires:
//   - engine: sync engine used for cloud refreshes
//   - store: local cache that inbox drops are ingested into
//   - userID: the signed-in user the daemon syncs for
//   - inboxDir: directory watched for dropped record files (*.json)
//
// Use Start() to begin watching and syncing.
func New(engine *syncer.Engine, store cache.Store, userID, inboxDir string) (*Daemon, error) {
	return NewWithConfig(engine, store, userID, inboxDir, DefaultConfig())
}

// NewWithConfig creates a daemon with custom configuration.
func NewWithConfig(engine *syncer.Engine, store cache.Store, userID, inboxDir string, config *Config) (*Daemon, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if inboxDir == "" {
		return nil, fmt.Errorf("inboxDir cannot be empty")
	}
	if config == nil {
		config = DefaultConfig()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		engine:      engine,
		store:       store,
		userID:      userID,
		inboxDir:    inboxDir,
		config:      config,
		watcher:     watcher,
		changeQueue: make(map[string]time.Time),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Start begins the daemon's operation.
//
// The daemon will:
// 1. Ingest any drops already sitting in the inbox
// 2. Run an initial cloud sync
// 3. Watch the inbox for new drops, with debouncing
// 4. Periodically re-sync from the cloud
//
// This blocks until ctx is cancelled or an error occurs.
func (d *Daemon) Start(ctx context.Context) error {
	d.config.Logger.Println("Starting daemon")

	if err := os.MkdirAll(d.inboxDir, 0o755); err != nil {
		return fmt.Errorf("failed to create inbox directory: %w", err)
	}

	if err := d.IngestInbox(); err != nil {
		return fmt.Errorf("initial inbox scan failed: %w", err)
	}
	d.runSync()

	if err := d.watcher.Add(d.inboxDir); err != nil {
		return fmt.Errorf("failed to watch inbox directory: %w", err)
	}
	d.config.Logger.Printf("Watching: %s", d.inboxDir)

	d.wg.Add(3)
	go d.watchInboxEvents()
	go d.processChangeQueue()
	go d.periodicSync()

	select {
	case <-ctx.Done():
		d.config.Logger.Println("Shutdown signal received")
		return d.Stop()
	case <-d.ctx.Done():
		return nil
	}
}

// Stop gracefully shuts down the daemon.
func (d *Daemon) Stop() error {
	d.config.Logger.Println("Stopping daemon")

	d.cancel()

	if err := d.watcher.Close(); err != nil {
		d.config.Logger.Printf("Error closing watcher: %v", err)
	}

	d.wg.Wait()

	d.config.Logger.Println("Daemon stopped")
	return nil
}

// IngestInbox processes every drop currently in the inbox directory.
//
// Called on startup; can be triggered manually. A bad drop is logged and
// skipped, never fatal.
func (d *Daemon) IngestInbox() error {
	entries, err := os.ReadDir(d.inboxDir)
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(d.inboxDir, entry.Name())
		if err := d.ingestFile(path); err != nil {
			d.config.Logger.Printf("Warning: failed to ingest %s: %v", path, err)
			continue
		}
		count++
	}

	if count > 0 {
		d.config.Logger.Printf("Ingested %d inbox drops", count)
	}
	return nil
}

// watchInboxEvents monitors filesystem events and queues changes.
func (d *Daemon) watchInboxEvents() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			// Only care about Create and Write; drops are removed by the
			// daemon itself after ingestion.
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}

			d.config.Logger.Printf("Inbox event: %s %s", event.Op, event.Name)
			d.queueChange(event.Name)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.config.Logger.Printf("Watcher error: %v", err)
		}
	}
}

// queueChange adds a file to the change queue with debouncing.
func (d *Daemon) queueChange(path string) {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	d.changeQueue[path] = time.Now()
}

// processChangeQueue processes queued inbox drops with debouncing.
func (d *Daemon) processChangeQueue() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.DebounceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.processPendingChanges()
		}
	}
}

// processPendingChanges ingests drops that have been queued for long enough.
func (d *Daemon) processPendingChanges() {
	d.changeQueueMu.Lock()
	defer d.changeQueueMu.Unlock()

	now := time.Now()
	for path, queuedAt := range d.changeQueue {
		// Only process if enough time has passed (debouncing). A writer
		// still appending to the file keeps pushing its timestamp forward.
		if now.Sub(queuedAt) < d.config.DebounceInterval {
			continue
		}

		d.config.Logger.Printf("Processing drop: %s", path)
		if err := d.ingestFile(path); err != nil {
			d.config.Logger.Printf("Error ingesting %s: %v", path, err)
		}

		delete(d.changeQueue, path)
	}
}

// periodicSync refreshes the cache from the cloud on an interval.
func (d *Daemon) periodicSync() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return

		case <-ticker.C:
			d.runSync()
		}
	}
}

// runSync performs one cloud sync and reports the outcome.
func (d *Daemon) runSync() {
	if d.config.Events != nil {
		d.config.Events.SyncStarted(d.userID)
	}

	ok := d.engine.SyncFromCloud(d.ctx, d.userID)
	if !ok {
		d.config.Logger.Println("Cloud sync did not complete")
	}

	if d.config.Events != nil {
		d.config.Events.SyncCompleted(d.userID, ok)
	}
}
