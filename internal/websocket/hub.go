package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel carries live search events between instances.
const ClusterChannel = "smart_search:cluster_events"

// clusterMessage is what instances exchange over Redis. Origin lets an
// instance skip its own messages, which it already delivered locally.
type clusterMessage struct {
	Origin    string          `json:"origin"`
	SessionId string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

// Hub fans pipeline events out to the websocket clients watching a session.
type Hub struct {
	id string

	// sessionId -> watching clients
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// nil runs the hub single-instance
	rdb redis.UniversalClient

	logger logger.ILogger
}

func NewHub(rdb redis.UniversalClient, log logger.ILogger) *Hub {
	return &Hub{
		id:         uuid.NewString(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

// Run owns client registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionId] = append(h.clients[client.SessionId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionId})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.SessionId]
			for i, c := range clients {
				if c == client {
					h.clients[client.SessionId] = append(clients[:i], clients[i+1:]...)
					close(client.Send)
					break
				}
			}
			if len(h.clients[client.SessionId]) == 0 {
				delete(h.clients, client.SessionId)
				h.logger.Info("Hub", "Session has no more watchers", map[string]interface{}{"session_id": client.SessionId})
			}
			h.mu.Unlock()
		}
	}
}

// Emit implements service.EventSink. Delivery never blocks the pipeline: a
// client with a full buffer misses the event.
func (h *Hub) Emit(ctx context.Context, ev dto.SearchEvent) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "search_event",
		"data": ev,
	})
	if err != nil {
		return
	}

	h.deliver(ev.SessionId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.id, SessionId: ev.SessionId, Message: data})
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := h.rdb.Publish(pubCtx, ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish cluster event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) deliver(sessionId string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[sessionId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping event", map[string]interface{}{"session_id": sessionId})
		}
	}
}

// Watchers returns the number of local clients per session.
func (h *Hub) Watchers() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]int, len(h.clients))
	for id, clients := range h.clients {
		out[id] = len(clients)
	}
	return out
}

// subscribeToRedis delivers events published by other instances to the
// clients connected here.
func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			if payload.Origin == h.id {
				continue
			}
			h.deliver(payload.SessionId, payload.Message)
		}
	}
}
