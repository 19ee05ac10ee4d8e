package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gantry-dev/gantry/internal/domain"
	"github.com/gantry-dev/gantry/internal/infra/metrics"
)

// ─── Batch event stream (/v1/tasks/events) ──────────────────────────────────
// Server-Sent Events. Every regenerate on the board fans out to all
// connected clients as an `event: batch` frame.

const (
	eventBuffer       = 8
	heartbeatInterval = 15 * time.Second
)

// EventHub fans batches out to subscribed SSE clients.
type EventHub struct {
	mu        sync.RWMutex
	clients   map[string]chan domain.Batch
	heartbeat time.Duration
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{
		clients:   make(map[string]chan domain.Batch),
		heartbeat: heartbeatInterval,
	}
}

// Publish delivers b to every client. It is a board observer. Slow clients
// whose buffer is full miss the batch rather than block the board.
func (h *EventHub) Publish(b domain.Batch) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.clients {
		select {
		case ch <- b:
		default:
			log.Printf("[events] client %s is behind, dropped batch %d", id, b.Seq)
		}
	}
}

// Subscribe registers a client and returns its id and channel.
func (h *EventHub) Subscribe() (string, <-chan domain.Batch) {
	id := uuid.New().String()
	ch := make(chan domain.Batch, eventBuffer)

	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()

	metrics.EventSubscribers.Inc()
	return id, ch
}

// Unsubscribe removes a client and closes its channel.
func (h *EventHub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if ok {
		close(ch)
		metrics.EventSubscribers.Dec()
	}
}

// Clients returns the number of connected clients.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleEvents streams the current batch, then one frame per regenerate.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	id, ch := s.events.Subscribe()
	defer s.events.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeBatchEvent(w, s.board.Batch()); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(s.events.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case b, ok := <-ch:
			if !ok {
				return
			}
			if err := writeBatchEvent(w, b); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeBatchEvent(w http.ResponseWriter, b domain.Batch) error {
	data, err := json.Marshal(batchResponse(b))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: batch\ndata: %s\n\n", b.Seq, data)
	return err
}
