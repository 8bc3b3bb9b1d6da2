package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"isoplan/app"
	"isoplan/internal"
)

// Batch event types
const (
	EventItem     = "item"
	EventComplete = "complete"
	EventFailed   = "failed"
)

// BatchEvent is one progress update of a running batch.
type BatchEvent struct {
	BatchID   string      `json:"batch_id"`
	EventType string      `json:"event_type"`
	Progress  float64     `json:"progress"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// maxRetainedBatches bounds how many finished batches keep their final event
// for late subscribers.
const maxRetainedBatches = 256

type sseClient struct {
	batchID string
	channel chan BatchEvent
}

// SSEHub fans batch events out to Server-Sent Events subscribers.
type SSEHub struct {
	clients    map[string]map[chan BatchEvent]bool
	clientsMu  sync.RWMutex
	final      map[string]BatchEvent
	finalOrder []string
	register   chan sseClient
	unregister chan sseClient
	broadcast  chan BatchEvent
	done       chan struct{}
	logger     *internal.Logger
	keepAlive  time.Duration
}

// NewSSEHub creates a hub and starts its dispatch loop.
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &SSEHub{
		clients:    make(map[string]map[chan BatchEvent]bool),
		final:      make(map[string]BatchEvent),
		register:   make(chan sseClient, 10),
		unregister: make(chan sseClient, 10),
		broadcast:  make(chan BatchEvent, 100),
		done:       make(chan struct{}),
		logger:     logger,
		keepAlive:  30 * time.Second,
	}
	go hub.run()
	return hub
}

func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.batchID] == nil {
				h.clients[client.batchID] = make(map[chan BatchEvent]bool)
			}
			h.clients[client.batchID][client.channel] = true
			if event, ok := h.final[client.batchID]; ok {
				client.channel <- event
			}
			h.logger.Debug("[SSE] client subscribed to batch %s (%d)", client.batchID, len(h.clients[client.batchID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, ok := h.clients[client.batchID]; ok {
				delete(clients, client.channel)
				close(client.channel)
				if len(clients) == 0 {
					delete(h.clients, client.batchID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			if event.EventType != EventItem {
				h.retain(event)
			}
			h.clientsMu.RLock()
			for ch := range h.clients[event.BatchID] {
				select {
				case ch <- event:
				default:
					h.logger.Warn("[SSE] subscriber channel full for batch %s, dropping %s", event.BatchID, event.EventType)
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// retain keeps a batch's final event, evicting the oldest beyond
// maxRetainedBatches.
func (h *SSEHub) retain(event BatchEvent) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	if _, ok := h.final[event.BatchID]; !ok {
		h.finalOrder = append(h.finalOrder, event.BatchID)
	}
	h.final[event.BatchID] = event
	if len(h.finalOrder) > maxRetainedBatches {
		delete(h.final, h.finalOrder[0])
		h.finalOrder = h.finalOrder[1:]
	}
}

// finalEvent returns the retained terminal event of a batch.
func (h *SSEHub) finalEvent(batchID string) (BatchEvent, bool) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	event, ok := h.final[batchID]
	return event, ok
}

// Close stops the dispatch loop.
func (h *SSEHub) Close() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
}

// Broadcast queues an event for the batch's subscribers.
func (h *SSEHub) Broadcast(event BatchEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("[SSE] broadcast queue full, dropping %s", event.EventType)
	}
}

// Progress adapts the hub to the batch runner's progress callback.
func (h *SSEHub) Progress(p app.BatchProgress) {
	progress := 0.0
	if p.Total > 0 {
		progress = float64(p.Done) / float64(p.Total)
	}
	h.Broadcast(BatchEvent{BatchID: p.BatchID.String(), EventType: EventItem, Progress: progress, Data: p.Outcome})
}

// SubscriberCount returns the number of clients listening to a batch.
func (h *SSEHub) SubscriberCount(batchID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients[batchID])
}

// HandleSSE streams events of one batch.
func (h *SSEHub) HandleSSE(c *gin.Context) {
	batchID := c.Query("batch_id")
	if batchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch_id parameter required", "code": "INVALID_INPUT"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan BatchEvent, 10)
	client := sseClient{batchID: batchID, channel: clientChan}
	select {
	case h.register <- client:
	case <-h.done:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event hub closed", "code": "UNAVAILABLE"})
		return
	}
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-clientChan:
			if !ok {
				return false
			}
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("[SSE] marshal event: %v", err)
				return true
			}
			c.SSEvent("batch", string(payload))
			return event.EventType == EventItem

		case <-time.After(h.keepAlive):
			c.SSEvent("ping", `{"status":"alive"}`)
			return true

		case <-ctx.Done():
			return false

		case <-h.done:
			return false
		}
	})
}
