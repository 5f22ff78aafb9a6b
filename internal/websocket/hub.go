package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"statree-backend/internal/logger"
	"statree-backend/internal/models"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans job status updates from Redis pub/sub out to every connected
// client.
type Hub struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]struct{}
	redisClient *redis.Client
	log         *logger.Logger
}

func NewHub(redisClient *redis.Client, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNop()
	}
	return &Hub{
		connections: make(map[*websocket.Conn]struct{}),
		redisClient: redisClient,
		log:         log,
	}
}

// Run relays job updates until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	pubsub := h.redisClient.Subscribe(ctx, models.JobUpdatesChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast([]byte(msg.Payload))
		}
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	// Clear deadlines inherited from the HTTP server
	conn.SetReadDeadline(time.Time{})
	h.registerConnection(conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(conn *websocket.Conn) {
	h.mu.Lock()
	h.connections[conn] = struct{}{}
	total := len(h.connections)
	h.mu.Unlock()

	h.log.Debug("websocket connected", "remote", conn.RemoteAddr().String(), "total", total)
}

func (h *Hub) unregisterConnection(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.connections[conn]
	delete(h.connections, conn)
	h.mu.Unlock()

	if ok {
		conn.Close()
		h.log.Debug("websocket disconnected", "remote", conn.RemoteAddr().String())
	}
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.connections))
	for conn := range h.connections {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.unregisterConnection(conn)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := h.connections
	h.connections = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for conn := range conns {
		conn.Close()
	}
}

// Len reports the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
