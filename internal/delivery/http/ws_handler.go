package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tradedesk/internal/auth"
	"tradedesk/internal/realtime"
)

// WSHandler upgrades subscriber connections and registers them with the
// hub. The handshake route sits on the gate's allow-list, so the token
// arrives as a query parameter and is verified here; an expired or
// forged token never gets a session.
type WSHandler struct {
	hub    *realtime.Hub
	tokens *auth.TokenService
	logger *zap.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *realtime.Hub, tokens *auth.TokenService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		logger: logger,
	}
}

// Subscribe handles the realtime subscribe handshake
// GET /ws?token=...&topics=market.candles,market.scores
func (h *WSHandler) Subscribe(c echo.Context) error {
	claims, err := h.tokens.Verify(c.QueryParam("token"))
	if err != nil {
		return UnauthorizedResponse(c, "Invalid or expired token")
	}

	var topics []string
	if raw := c.QueryParam("topics"); raw != "" {
		topics = strings.Split(raw, ",")
	}

	conn, err := h.hub.Upgrade(c.Response(), c.Request())
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return err
	}

	session := h.hub.Register(claims.UserID, conn, topics)
	go session.WritePump()
	go session.ReadPump()

	return nil
}
