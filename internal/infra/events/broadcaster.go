// Package events fans out background job lifecycle notifications to
// connected SSE clients. There is a single global stream: no tenant or
// workspace scoping applies to this domain's job queue.
package events

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/collectionvault/index-engine/internal/jobmodel"
)

// Event represents one job lifecycle transition.
type Event struct {
	Type         string        `json:"type"`
	JobID        uuid.UUID     `json:"jobId"`
	JobType      jobmodel.Type `json:"jobType"`
	Status       jobmodel.Status `json:"status"`
	Progress     int           `json:"progress"`
	ErrorMessage *string       `json:"errorMessage,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Client represents an SSE connection.
type Client struct {
	ID      uuid.UUID
	Channel chan Event
}

// Broadcaster manages SSE connections and job event broadcasting.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
}

// NewBroadcaster creates a new job event broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[uuid.UUID]*Client),
	}
}

// Register adds a new client connection.
func (b *Broadcaster) Register() *Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	client := &Client{
		ID:      uuid.New(),
		Channel: make(chan Event, 100), // Buffer to prevent blocking
	}
	b.clients[client.ID] = client
	return client
}

// Unregister removes a client connection.
func (b *Broadcaster) Unregister(clientID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if client, ok := b.clients[clientID]; ok {
		close(client.Channel)
		delete(b.clients, clientID)
	}
}

// Publish broadcasts a job event to every connected client.
func (b *Broadcaster) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	event.Timestamp = time.Now().UTC()

	for _, client := range b.clients {
		select {
		case client.Channel <- event:
		default:
			// Channel full, skip this client
			fmt.Printf("Warning: client %s channel full, dropping event\n", client.ID)
		}
	}
}

// ServeHTTP streams job events to one SSE client for the lifetime of the
// request. Huma does not model streaming responses, so callers mount this
// directly on a chi or net/http mux rather than through huma.Register.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	client := b.Register()
	defer b.Unregister(client.ID)

	fmt.Fprintf(w, "event: connected\ndata: {\"clientId\":\"%s\"}\n\n", client.ID)
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-client.Channel:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		}
	}
}

// GetStats returns broadcaster statistics.
func (b *Broadcaster) GetStats() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return map[string]interface{}{
		"total_clients": len(b.clients),
	}
}
