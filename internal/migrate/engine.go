// Package migrate promotes device-local records to cloud-backed ones.
//
// Records created offline carry locally minted ids (local_* / tmp_*) or a
// stale user id. The migration engine finds them in the local cache, creates
// authoritative cloud records for them, and rewrites the cached copies in
// place with the cloud-assigned ids so no record is ever duplicated.
// Migration runs at most once per user, enforced by a persisted completion
// flag.
package migrate

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/storynest/storysync/internal/backend"
	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/syncer"
)

// RetryPolicy controls when the per-user completion flag is written after a
// migration attempt that had errors.
type RetryPolicy int

const (
	// GiveUpAfterFirstAttempt marks migration complete once any partial
	// progress was made, even with errors remaining. Records that keep
	// failing (malformed data) are not re-attempted on every app open.
	// This is the default.
	GiveUpAfterFirstAttempt RetryPolicy = iota

	// RetryFailedOnly marks migration complete only on a fully clean pass,
	// so failed records are re-detected and re-attempted next time.
	RetryFailedOnly
)

// Engine performs local-to-cloud data migration.
type Engine struct {
	backend *backend.Client
	cache   cache.Store
	syncer  *syncer.Engine
	policy  RetryPolicy
	logger  *log.Logger

	// now is injectable for timestamp tests.
	now func() time.Time

	// mu serializes migration attempts so two concurrent calls cannot
	// double-create cloud records. Migration is rare enough that one
	// engine-wide lock suffices.
	mu sync.Mutex
}

// New creates a migration engine. The sync engine is used for the
// best-effort cache refresh after a completed migration. If logger is nil,
// a default logger writing to stderr is used.
func New(client *backend.Client, store cache.Store, sync *syncer.Engine, policy RetryPolicy, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(os.Stderr, "[migrate] ", log.LstdFlags)
	}
	return &Engine{
		backend: client,
		cache:   store,
		syncer:  sync,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

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

func (e *Engine) writeJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		e.logger.Printf("WARNING: failed to encode cache entry %s: %v", key, err)
		return
	}
	if err := e.cache.Set(ctx, key, data); err != nil {
		e.logger.Printf("WARNING: cache write failed for %s: %v", key, err)
	}
}

func (e *Engine) writeString(ctx context.Context, key, value string) {
	if err := e.cache.Set(ctx, key, []byte(value)); err != nil {
		e.logger.Printf("WARNING: cache write failed for %s: %v", key, err)
	}
}

func (e *Engine) readString(ctx context.Context, key string) string {
	value, ok, err := e.cache.Get(ctx, key)
	if err != nil || !ok {
		return ""
	}
	return string(value)
}
