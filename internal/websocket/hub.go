package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"chat-agent-be/internal/pkg/logger"
)

// MonitorEvent is one live feed item shown on the operations dashboard.
type MonitorEvent struct {
	Kind       string    `json:"kind"`
	ThreadID   string    `json:"thread_id"`
	UserID     string    `json:"user_id"`
	Route      string    `json:"route,omitempty"`
	Reply      string    `json:"reply,omitempty"`
	Degraded   bool      `json:"degraded"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	At         time.Time `json:"at"`
}

// Hub fans monitor events out to every connected operator. Redis pub/sub
// relays events across instances so an operator sees traffic handled by any
// replica.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	// instanceID filters out our own relayed events on the Redis channel.
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.New().String(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.OperatorID] = append(h.clients[client.OperatorID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "operator connected", map[string]interface{}{"operator_id": client.OperatorID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.OperatorID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.OperatorID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.OperatorID]) == 0 {
					delete(h.clients, client.OperatorID)
					h.logger.Info("Hub", "operator disconnected", map[string]interface{}{"operator_id": client.OperatorID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast delivers a monitor event to all local operators and relays it to
// the other instances through Redis.
func (h *Hub) Broadcast(event MonitorEvent) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":   "monitor_event",
		"origin": h.instanceID,
		"data":   event,
	})

	h.deliverLocal(data)

	if h.rdb != nil {
		h.rdb.Publish(context.Background(), "monitor_events", data)
	}
}

func (h *Hub) deliverLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "operator send buffer full, dropping", map[string]interface{}{"operator_id": client.OperatorID})
			}
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "monitor_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var probe struct {
			Origin string `json:"origin"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &probe); err != nil {
			log.Printf("monitor event parse error: %v", err)
			continue
		}
		if probe.Origin == h.instanceID {
			continue
		}
		h.deliverLocal([]byte(msg.Payload))
	}
}
