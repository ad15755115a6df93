package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/alumnihub/alumni-api/models"
)

// Notifier pushes a notification to a user if they are connected
type Notifier interface {
	Notify(userID string, n models.Notification)
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

type wsClient struct {
	userID string
	conn   *websocket.Conn
	send   chan models.Notification
}

// NotificationHub keeps the open notification sockets, several per user
type NotificationHub struct {
	mu       sync.Mutex
	clients  map[string]map[*wsClient]struct{}
	upgrader websocket.Upgrader
}

// NewNotificationHub accepts upgrades from the given origins; an empty list accepts any
func NewNotificationHub(origins []string) *NotificationHub {
	allowed := map[string]bool{}
	for _, o := range origins {
		allowed[o] = true
	}
	return &NotificationHub{
		clients: map[string]map[*wsClient]struct{}{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

// HandleNotificationsWebSocket WebSocket handler for notifications
func (h *NotificationHub) HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if _, err := primitive.ObjectIDFromHex(userID); err != nil {
		badID(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{userID: userID, conn: conn, send: make(chan models.Notification, sendBuffer)}
	h.register(c)
	zap.S().Debugw("user connected to /ws/notifications", "userId", userID)

	go h.writePump(c)
	h.readPump(c)
}

func (h *NotificationHub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = map[*wsClient]struct{}{}
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *NotificationHub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
}

// readPump only watches for the client going away
func (h *NotificationHub) readPump(c *wsClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		zap.S().Debugw("user disconnected from /ws/notifications", "userId", c.userID)
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			return
		}
	}
}

// writePump is the only goroutine writing to the connection
func (h *NotificationHub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case n, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(map[string]interface{}{"event": n.Type, "data": n}); err != nil {
				zap.S().Warnw("error sending notification", "userId", c.userID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Notify queues n for every open socket of userID. A client whose buffer is full
// misses the notification rather than stalling the caller.
func (h *NotificationHub) Notify(userID string, n models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- n:
		default:
			zap.S().Warnw("notification dropped, client too slow", "userId", userID, "type", n.Type)
		}
	}
}

// Connected reports how many sockets userID has open
func (h *NotificationHub) Connected(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[userID])
}
