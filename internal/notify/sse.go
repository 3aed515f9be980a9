// Package notify delivers settled change events to downstream observers
// over Server-Sent Events. Delivery is best-effort: a slow or disconnected
// client drops events, and no failure here ever reaches the transfer path.
package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danisetya/transfer-service/internal/domain"
)

// clientBufferSize bounds the per-client event queue; events beyond it are
// dropped for that client
const clientBufferSize = 16

// Broker fans settled change events out to subscribed SSE clients. It
// implements domain.Notifier.
type Broker struct {
	mu      sync.RWMutex
	clients map[string]chan domain.Event
	closed  bool
	logger  *zap.Logger
}

// NewBroker creates a Broker with no subscribers
func NewBroker(logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		clients: make(map[string]chan domain.Event),
		logger:  logger,
	}
}

// Publish implements the domain.Notifier interface. It never blocks: full
// client queues drop the event.
func (b *Broker) Publish(event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.clients {
		select {
		case ch <- event:
		default:
			b.logger.Warn("dropping event for slow client",
				zap.String("clientId", id),
				zap.String("type", string(event.Type)))
		}
	}
}

// Subscribe registers a new client and returns its id and event channel
func (b *Broker) Subscribe() (string, <-chan domain.Event) {
	id := uuid.NewString()
	ch := make(chan domain.Event, clientBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return id, ch
	}
	b.clients[id] = ch
	b.mu.Unlock()

	b.logger.Info("sse client connected", zap.String("clientId", id))
	return id, ch
}

// Unsubscribe removes a client and closes its channel
func (b *Broker) Unsubscribe(id string) {
	b.mu.Lock()
	ch, ok := b.clients[id]
	if ok {
		delete(b.clients, id)
		close(ch)
	}
	b.mu.Unlock()

	if ok {
		b.logger.Info("sse client disconnected", zap.String("clientId", id))
	}
}

// ClientCount returns the number of connected clients
func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects all clients. Publish becomes a no-op afterwards.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.clients {
		delete(b.clients, id)
		close(ch)
	}
}

// ServeHTTP streams events to one client until it disconnects
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	id, events := b.Subscribe()
	defer b.Unsubscribe(id)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				b.logger.Error("encoding sse event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
