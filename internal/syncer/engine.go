// Package syncer is the bridge between the backend gateway and the local
// cache store.
//
// It gives the app an offline-first read path (cache-only getters that never
// fail) and an explicit refresh path (SyncFromCloud / LoadHybridData). The
// engine never propagates errors past its public API: operations return
// booleans or data, with failures degraded to "use stale cache" and logged.
package syncer

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/storynest/storysync/internal/backend"
	"github.com/storynest/storysync/internal/cache"
)

// Engine coordinates cloud fetches and cache refreshes.
type Engine struct {
	backend *backend.Client
	cache   cache.Store
	logger  *log.Logger

	// now is injectable for relative-label tests.
	now func() time.Time

	// locks serializes sync work per user id, so two concurrent syncs for
	// the same user cannot interleave cache writes.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a sync engine over the given gateway and cache store.
// If logger is nil, a default logger writing to stderr is used.
func New(client *backend.Client, store cache.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "[syncer] ", log.LstdFlags)
	}
	return &Engine{
		backend: client,
		cache:   store,
		logger:  logger,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex serializing sync work for one user.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	return lock
}

// readJSON loads and decodes one cache key into out. Any miss, read error
// or malformed document degrades to false: the cache is an accelerator, not
// a source of truth.
func (e *Engine) readJSON(ctx context.Context, key string, out any) bool {
	value, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Printf("WARNING: cache read failed for %s: %v", key, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(value, out); err != nil {
		e.logger.Printf("WARNING: malformed cache entry %s: %v", key, err)
		return false
	}
	return true
}

// writeJSON encodes and stores one cache key.
func (e *Engine) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return e.cache.Set(ctx, key, data)
}

// writeString stores a raw scalar value (status, timestamps, pointers).
func (e *Engine) writeString(ctx context.Context, key, value string) {
	if err := e.cache.Set(ctx, key, []byte(value)); err != nil {
		e.logger.Printf("WARNING: cache write failed for %s: %v", key, err)
	}
}

// readString loads a raw scalar value, degrading to "" on miss or error.
func (e *Engine) readString(ctx context.Context, key string) string {
	value, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Printf("WARNING: cache read failed for %s: %v", key, err)
		return ""
	}
	if !ok {
		return ""
	}
	return string(value)
}
