package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/haseebdoesdev/go-task-scheduler/internal/events"
	"github.com/haseebdoesdev/go-task-scheduler/internal/logger"
	"github.com/haseebdoesdev/go-task-scheduler/internal/metrics"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
)

// SnapshotInterval is how often the hub pushes a fresh pool.Snapshot to
// every connected client, the in-process stand-in for "push on every
// change" when change detection would cost more than just resending.
const SnapshotInterval = 1 * time.Second

// Hub manages connected WebSocket clients and fans out both lifecycle
// events (optionally relayed from a Redis publisher/subscriber) and
// periodic pool snapshots.
type Hub struct {
	pool      *pool.Pool
	publisher events.Publisher

	clients    map[*Client]bool
	broadcast  chan *events.Event
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewHub builds a Hub that streams snapshots of p. publisher may be nil,
// in which case only snapshot pushes are sent (no Redis-relayed
// lifecycle events).
func NewHub(p *pool.Pool, publisher events.Publisher) *Hub {
	return &Hub{
		pool:       p,
		publisher:  publisher,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *events.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopCh:     make(chan struct{}),
	}
}

// Run starts the hub's snapshot ticker, the optional Redis relay, and
// the client (un)registration loop in background goroutines and returns
// at once; those goroutines run until ctx is cancelled or Stop is called.
func (h *Hub) Run(ctx context.Context) {
	if h.publisher != nil {
		eventCh, err := h.publisher.Subscribe(ctx, events.EventPoolSnapshot,
			events.EventTaskCompleted, events.EventTaskFailed, events.EventTaskTimeout,
			events.EventWorkerCrashed, events.EventWorkerRespawned)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket hub: failed to subscribe to event publisher, snapshot-only mode")
		} else {
			h.wg.Add(1)
			go h.relayLoop(ctx, eventCh)
		}
	}

	h.wg.Add(1)
	go h.snapshotLoop(ctx)

	h.wg.Add(1)
	go h.clientLoop(ctx)

	logger.Info().Msg("websocket hub started")
}

func (h *Hub) relayLoop(ctx context.Context, eventCh <-chan *events.Event) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			h.Broadcast(ev)
		}
	}
}

func (h *Hub) snapshotLoop(ctx context.Context) {
	defer h.wg.Done()
	ticker := time.NewTicker(SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case <-ticker.C:
			snap := h.pool.Snapshot()
			h.Broadcast(events.NewEvent(events.EventPoolSnapshot, map[string]interface{}{
				"size":               snap.Size,
				"capacity":           snap.Capacity,
				"algorithm":          string(snap.Algorithm),
				"num_active_workers": snap.NumActiveWorkers,
				"completed_tasks":    snap.CompletedTasks,
				"failed_tasks":       snap.FailedTasks,
			}))
		}
	}
}

func (h *Hub) clientLoop(ctx context.Context) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return
		case <-h.stopCh:
			h.closeAllClients()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.SetWebSocketConnections(float64(h.ClientCount()))
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			metrics.SetWebSocketConnections(float64(h.ClientCount()))
		case ev := <-h.broadcast:
			h.broadcastEvent(ev)
		}
	}
}

// Stop shuts the hub down and waits for its goroutines to exit.
func (h *Hub) Stop() {
	close(h.stopCh)
	h.wg.Wait()
	logger.Info().Msg("websocket hub stopped")
}

// Register enrolls client with the hub.
func (h *Hub) Register(client *Client) { h.register <- client }

// Unregister removes client from the hub.
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

// Broadcast queues ev for delivery to every subscribed client,
// dropping it if the internal buffer is full.
func (h *Hub) Broadcast(ev *events.Event) {
	select {
	case h.broadcast <- ev:
	default:
		logger.Warn().Msg("websocket hub: broadcast channel full, dropping event")
	}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastEvent(ev *events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error().Err(err).Msg("websocket hub: failed to marshal event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if !client.IsSubscribed(ev.Type) {
			continue
		}
		select {
		case client.send <- data:
			metrics.RecordWebSocketMessage(string(ev.Type))
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
