package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/storynest/storysync/internal/backend"
	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/config"
	"github.com/storynest/storysync/internal/model"
	"github.com/storynest/storysync/internal/syncer"
)

func startServer(t *testing.T) *Server {
	t.Helper()

	server := NewServer(&Config{
		Port:   0, // Use random available port
		Logger: log.New(io.Discard, "", 0),
	})
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() { _ = server.Stop() })

	time.Sleep(100 * time.Millisecond)
	return server
}

func dialClient(t *testing.T, ctx context.Context, server *Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws://" + server.GetAddr() + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) Message {
	t.Helper()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return msg
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(&Config{Port: 0, Logger: log.New(io.Discard, "", 0)})

	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	if addr := server.GetAddr(); addr == "" {
		t.Fatal("Server address is empty")
	}

	if err := server.Stop(); err != nil {
		t.Fatalf("Failed to stop server: %v", err)
	}
}

func TestWebSocketWelcome(t *testing.T) {
	server := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialClient(t, ctx, server)

	if count := server.ClientCount(); count != 1 {
		t.Errorf("Expected 1 client, got %d", count)
	}

	msg := readMessage(t, ctx, conn)
	if msg.Type != MessageTypeStats {
		t.Errorf("Expected welcome message type %s, got %s", MessageTypeStats, msg.Type)
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := startServer(t)

	resp, err := http.Get("http://" + server.GetAddr() + "/health")
	if err != nil {
		t.Fatalf("Failed to fetch health: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("Expected ok status, got %q", body.Status)
	}
}

func TestHandlerBroadcastsSyncEvents(t *testing.T) {
	server := startServer(t)

	store := cache.NewMemoryStore()
	defer store.Close()
	engine := syncer.New(backend.New(config.Backend{}, nil), store, log.New(io.Discard, "", 0))
	handler := NewHandler(server, engine, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialClient(t, ctx, server)
	readMessage(t, ctx, conn) // welcome

	handler.SyncStarted("user-1")
	msg := readMessage(t, ctx, conn)
	if msg.Type != MessageTypeSyncStarted {
		t.Errorf("Expected %s, got %s", MessageTypeSyncStarted, msg.Type)
	}

	var data SyncData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("Failed to unmarshal sync data: %v", err)
	}
	if data.UserID != "user-1" {
		t.Errorf("Expected user-1, got %q", data.UserID)
	}

	handler.SyncCompleted("user-1", false)
	msg = readMessage(t, ctx, conn)
	if msg.Type != MessageTypeSyncComplete {
		t.Errorf("Expected %s, got %s", MessageTypeSyncComplete, msg.Type)
	}
	// Completion is followed by a stats refresh.
	msg = readMessage(t, ctx, conn)
	if msg.Type != MessageTypeStats {
		t.Errorf("Expected trailing %s, got %s", MessageTypeStats, msg.Type)
	}
}

func TestHandlerBroadcastsMigration(t *testing.T) {
	server := startServer(t)

	store := cache.NewMemoryStore()
	defer store.Close()
	engine := syncer.New(backend.New(config.Backend{}, nil), store, log.New(io.Discard, "", 0))
	handler := NewHandler(server, engine, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialClient(t, ctx, server)
	readMessage(t, ctx, conn) // welcome

	handler.MigrationCompleted(&model.MigrationResult{
		Success:          true,
		MigratedChildren: 1,
		MigratedStories:  2,
		TotalMigrated:    3,
	})

	msg := readMessage(t, ctx, conn)
	if msg.Type != MessageTypeMigrationComplete {
		t.Errorf("Expected %s, got %s", MessageTypeMigrationComplete, msg.Type)
	}

	var data MigrationData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("Failed to unmarshal migration data: %v", err)
	}
	if data.MigratedStories != 2 || data.ErrorCount != 0 {
		t.Errorf("Unexpected migration data: %+v", data)
	}
}
