// Package observer streams tick reports to websocket clients.
package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/udisondev/tankrun/internal/director"
)

const (
	clientBuffer = 16
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

// Hub fans tick reports out to every connected client. Slow clients miss
// reports instead of stalling the director.
type Hub struct {
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	dropped  atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]chan []byte
	last    []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Publish implements director.Sink.
func (h *Hub) Publish(_ context.Context, r director.Report) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report %d: %w", r.Tick, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = b
	for _, ch := range h.clients {
		select {
		case ch <- b:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many per-client deliveries were skipped.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) join() (uint64, chan []byte) {
	id := h.nextID.Add(1)
	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[id] = ch
	if h.last != nil {
		ch <- h.last
	}
	return id, ch
}

func (h *Hub) leave(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// LatestHandler serves the most recent report as JSON.
func (h *Hub) LatestHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		h.mu.Lock()
		b := h.last
		h.mu.Unlock()

		if b == nil {
			rw.WriteHeader(http.StatusNoContent)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write(b)
	}
}

// WSHandler upgrades the request and streams reports until the client goes
// away.
func (h *Hub) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out := h.join()
		defer h.leave(id)
		slog.Debug("observer connected", "client", id, "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Clients only read; the loop exists to notice disconnects.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		slog.Debug("observer disconnected", "client", id)
	}
}

// Handler returns the routes of the observer: /ws and /report.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.WSHandler())
	mux.HandleFunc("/report", h.LatestHandler())
	return mux
}

// Serve listens on addr until ctx is canceled.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	slog.Info("observer listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("observer shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("observer listen %s: %w", addr, err)
	}
}
