package handler

import (
	"strings"

	"smart-search-be/internal/pkg/logger"
	"smart-search-be/internal/pkg/serverutils"
	internalWS "smart-search-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LiveHandler lets websocket clients watch the pipeline events of a session
// while runs happen elsewhere (HTTP, stdio, MCP).
type LiveHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewLiveHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *LiveHandler {
	return &LiveHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// authorize checks the handshake token. Browsers can't set headers on a
// websocket handshake, so the query param comes first.
func (h *LiveHandler) authorize(c *fiber.Ctx) error {
	if h.jwtSecret == "" {
		return nil
	}

	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr, _ = strings.CutPrefix(c.Get("Authorization"), "Bearer ")
	}
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		h.logger.Warn("LiveHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err})
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return nil
}

// ServeWs upgrades the request and streams the session's events until the
// peer disconnects.
func (h *LiveHandler) ServeWs(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return err
	}

	sessionId := c.Params("sessionId")
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session id is required")
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("LiveHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionId})
			internalWS.ServeWs(h.hub, conn, sessionId)
			h.logger.Info("LiveHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// Watchers reports how many local clients watch each session.
func (h *LiveHandler) Watchers(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("success", h.hub.Watchers()))
}

func (h *LiveHandler) RegisterRoutes(router fiber.Router) {
	ws := router.Group("/ws")
	ws.Get("/watchers", h.Watchers)
	ws.Get("/search/:sessionId", h.ServeWs)
}
