package handlers

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/auth"
	"github.com/traceops/backend/internal/events"
	"go.uber.org/zap"
)

// WSHub fans alert lifecycle events out to the browsers of the owning tenant.
type WSHub struct {
	tokens      auth.TokenIssuer
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[uuid.UUID][]*wsConn
}

// wsConn serializes writes; gorilla-style connections allow one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func NewWSHub(tokens auth.TokenIssuer, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		tokens:      tokens,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[uuid.UUID][]*wsConn),
	}
}

// Start subscribes to the alert stream until ctx is cancelled.
func (h *WSHub) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.StreamAlerts, h.dispatch)
}

func (h *WSHub) dispatch(event events.Event) {
	tenantID, err := uuid.Parse(event.TenantID)
	if err != nil {
		h.log.Warn("dropping event without tenant", zap.String("type", event.Type))
		return
	}
	h.SendToTenant(tenantID, event)
}

func (h *WSHub) SendToTenant(tenantID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := append([]*wsConn(nil), h.connections[tenantID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
		}
	}
}

func (h *WSHub) ConnectionCount(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[tenantID])
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := h.tokens.Parse(tokenStr)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	tenantID := claims.TenantID
	wc := &wsConn{conn: conn}
	h.register(tenantID, wc)
	defer func() {
		h.unregister(tenantID, wc)
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *WSHub) register(tenantID uuid.UUID, wc *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[tenantID] = append(h.connections[tenantID], wc)
}

func (h *WSHub) unregister(tenantID uuid.UUID, wc *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[tenantID]
	for i, c := range conns {
		if c == wc {
			h.connections[tenantID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[tenantID]) == 0 {
		delete(h.connections, tenantID)
	}
}
