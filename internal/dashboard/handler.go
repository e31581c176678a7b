package dashboard

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/storynest/storysync/internal/model"
	"github.com/storynest/storysync/internal/syncer"
)

// Handler bridges sync engine activity to dashboard broadcasts. It satisfies
// the daemon's Events interface and can also announce migration results.
type Handler struct {
	server *Server
	engine *syncer.Engine
	logger *log.Logger
}

// NewHandler creates an event handler connected to a dashboard server. The
// sync engine is used to compute cache statistics after each sync.
func NewHandler(server *Server, engine *syncer.Engine, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		server: server,
		engine: engine,
		logger: logger,
	}
}

// SyncStarted handles sync start events
func (h *Handler) SyncStarted(userID string) {
	h.broadcast(MessageTypeSyncStarted, SyncData{UserID: userID})
}

// SyncCompleted handles sync completion events and follows up with fresh
// cache statistics
func (h *Handler) SyncCompleted(userID string, ok bool) {
	state := h.engine.SyncState(context.Background())
	h.broadcast(MessageTypeSyncComplete, SyncData{
		UserID: userID,
		OK:     ok,
		Label:  state.Label,
	})
	h.broadcastStats()
}

// MigrationCompleted announces a finished local-to-cloud migration
func (h *Handler) MigrationCompleted(result *model.MigrationResult) {
	h.logger.Printf("Migration complete: %d records, %d errors",
		result.TotalMigrated, len(result.Errors))

	h.broadcast(MessageTypeMigrationComplete, MigrationData{
		MigratedChildren: result.MigratedChildren,
		MigratedStories:  result.MigratedStories,
		MigratedVoices:   result.MigratedVoices,
		ErrorCount:       len(result.Errors),
	})
	h.broadcastStats()
}

// broadcastStats sends current cache statistics to all clients
func (h *Handler) broadcastStats() {
	ctx := context.Background()
	state := h.engine.SyncState(ctx)

	h.broadcast(MessageTypeStats, StatsData{
		Children: len(h.engine.CachedChildren(ctx)),
		Stories:  len(h.engine.CachedStories(ctx)),
		Voices:   len(h.engine.CachedVoices(ctx)),
		Status:   string(state.Status),
		LastSync: state.Label,
	})
}

func (h *Handler) broadcast(typ MessageType, data any) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}
	h.server.Broadcast(Message{
		Type:      typ,
		Timestamp: time.Now(),
		Data:      dataJSON,
	})
}
