package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"PiwPew/pkg/logger"
)

// TickStats is one tick's worth of loop telemetry.
type TickStats struct {
	Tick        uint64  `json:"tick"`
	DurationUS  int64   `json:"duration_us"`
	BudgetUS    int64   `json:"budget_us"`
	Players     int     `json:"players"`
	Projectiles int     `json:"projectiles"`
	LoadPercent float64 `json:"load_percent"`
}

// PlayerSummary is the read-only per-player view exposed on /debug/state.
type PlayerSummary struct {
	ID     uint64  `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health int     `json:"health"`
	Cash   int64   `json:"cash"`
}

// WorldSnapshot is the full /debug/state document.
type WorldSnapshot struct {
	Stats   TickStats       `json:"stats"`
	Players []PlayerSummary `json:"players"`
}

// StatusBoard is the bridge between the tick loop and the ops endpoints.
// The loop publishes a fresh snapshot each tick; HTTP handlers only read.
type StatusBoard struct {
	mu       sync.RWMutex
	snapshot WorldSnapshot
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

func (b *StatusBoard) Publish(s WorldSnapshot) {
	b.mu.Lock()
	b.snapshot = s
	b.mu.Unlock()
}

func (b *StatusBoard) Snapshot() WorldSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newDebugMux(ctx context.Context, board *StatusBoard) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/debug/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, board.Snapshot())
	})
	mux.HandleFunc("/debug/live", func(w http.ResponseWriter, r *http.Request) {
		serveLive(ctx, w, r, board)
	})
	return mux
}

// serveDebug runs the ops HTTP server until ctx is cancelled. Read-only:
// nothing here can reach into live game state, only published snapshots.
func serveDebug(ctx context.Context, addr string, board *StatusBoard) {
	srv := &http.Server{Addr: addr, Handler: newDebugMux(ctx, board)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Log.Infof("ops endpoints on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.WithError(err).Error("ops server failed")
	}
}

// serveLive streams tick stats over a websocket, one frame per second,
// until the client goes away or the server shuts down. Shutdown does not
// close upgraded connections for us, hence the ctx select.
func serveLive(ctx context.Context, w http.ResponseWriter, r *http.Request, board *StatusBoard) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Debug("live feed upgrade failed")
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(board.Snapshot().Stats); err != nil {
		return
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(board.Snapshot().Stats); err != nil {
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
