package handler

import (
	"context"
	"encoding/json"

	"medlit-rag-be/internal/dto"
	"medlit-rag-be/internal/pkg/logger"
	"medlit-rag-be/internal/service"
	internalWS "medlit-rag-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service   service.IChatService
	registry  *internalWS.Registry
	jwtSecret string
	logger    logger.ILogger
}

func NewChatHandler(svc service.IChatService, registry *internalWS.Registry, jwtSecret string, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		service:   svc,
		registry:  registry,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs handles websocket requests from the peer. Authentication is
// optional: when JWT_SECRET is unset the socket is open, matching local
// and demo deployments.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	if h.jwtSecret != "" {
		if err := h.authenticate(c); err != nil {
			return err
		}
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.serveSession(conn)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *ChatHandler) authenticate(c *fiber.Ctx) error {
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("ChatHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	return nil
}

// serveSession runs the per-connection read loop. The connection is
// registered under a provisional key until the client declares its id,
// then moved via Rekey so answers route by the declared id.
func (h *ChatHandler) serveSession(conn *websocket.Conn) {
	transport := internalWS.NewConnTransport(conn)
	currentKey := uuid.NewString()

	h.registry.Register(currentKey, transport)
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("ChatHandler", "Panic in websocket session", map[string]interface{}{
				"key":   currentKey,
				"panic": r,
			})
			_ = transport.CloseWithCode(websocket.CloseInternalServerErr, "internal error")
		}
		h.registry.Unregister(currentKey)
	}()

	h.logger.Info("ChatHandler", "Starting WebSocket session", map[string]interface{}{"key": currentKey})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var msg dto.QuestionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.logger.Warn("ChatHandler", "Malformed message, closing", map[string]interface{}{
				"key":   currentKey,
				"error": err.Error(),
			})
			_ = transport.CloseWithCode(websocket.CloseUnsupportedData, "invalid JSON")
			break
		}

		// Older clients send bare {"content": "..."} without a type.
		if msg.Type != "" && msg.Type != "question" {
			h.logger.Warn("ChatHandler", "Ignoring unknown message type", map[string]interface{}{
				"key":  currentKey,
				"type": msg.Type,
			})
			continue
		}

		if msg.ClientId != "" && msg.ClientId != currentKey {
			if err := h.registry.Rekey(currentKey, msg.ClientId); err != nil {
				h.logger.Error("ChatHandler", "Rekey failed", map[string]interface{}{
					"old_key": currentKey,
					"new_key": msg.ClientId,
					"error":   err.Error(),
				})
			} else {
				currentKey = msg.ClientId
			}
		}

		h.service.HandleQuestion(context.Background(), currentKey, msg.Content)
	}

	h.logger.Info("ChatHandler", "WebSocket session ended", map[string]interface{}{"key": currentKey})
}

// HealthCheck reports readiness. The active connection count is only
// present once the service is healthy.
func (h *ChatHandler) HealthCheck(c *fiber.Ctx) error {
	health := h.service.Health()

	status := fiber.StatusOK
	if health.Status == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(health)
}

// LLMStatus reports which model backs the service and whether it is
// currently reachable.
func (h *ChatHandler) LLMStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.LLMStatus(c.Context()))
}
