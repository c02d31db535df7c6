package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/archsynth/internal/logging"
	"github.com/aretw0/archsynth/pkg/domain"
)

// Message is one broadcast search event.
type Message struct {
	Type    domain.EventType
	Payload []byte
}

// StreamManager fans search events out to SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- Message]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates a StreamManager. A nil logger discards.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[chan<- Message]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a listener. The returned function unregisters it and
// closes the channel.
func (sm *StreamManager) Subscribe() (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 64)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast encodes event and hands it to every subscriber. Slow
// subscribers lose messages rather than block the search.
func (sm *StreamManager) Broadcast(t domain.EventType, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		sm.logger.Warn("SSE: failed to encode event", "type", t, "err", err)
		return
	}
	msg := Message{Type: t, Payload: payload}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "type", t)
		}
	}
}

// Hooks broadcasts every search event.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAttempt:  func(_ context.Context, e *domain.AttemptEvent) { sm.Broadcast(e.Type, e) },
		OnDecision: func(_ context.Context, e *domain.DecisionEvent) { sm.Broadcast(e.Type, e) },
		OnRollback: func(_ context.Context, e *domain.RollbackEvent) { sm.Broadcast(e.Type, e) },
		OnFinish:   func(_ context.Context, e *domain.FinishEvent) { sm.Broadcast(e.Type, e) },
	}
}

// SubscribeEvents handles the GET /events request (SSE). The optional
// watch parameter filters by event type, e.g. watch=rollback,finish.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	watch := make(map[domain.EventType]bool)
	if v := r.URL.Query().Get("watch"); v != "" {
		for _, t := range strings.Split(v, ",") {
			watch[domain.EventType(strings.TrimSpace(t))] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[msg.Type] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Payload)
			flusher.Flush()
		}
	}
}
