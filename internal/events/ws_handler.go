package events

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"coursedesk/internal/domain"
	"coursedesk/internal/pkg/jwt"
	"coursedesk/internal/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	logger     *slog.Logger
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{hub: hub, jwtService: jwtService, logger: logger}
}

func (h *WSHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws/ledger", h.HandleWebSocket)
}

// HandleWebSocket serves GET /ws/ledger?token=JWT. Browsers cannot set headers
// on websocket requests, so the token travels in the query. Admins only.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is required")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	if claims.Role != string(domain.RoleAdmin) {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.logger.Info("ledger feed connected", "user_id", claims.UserID)
	h.hub.ServeWS(claims.UserID, conn)
	h.logger.Info("ledger feed disconnected", "user_id", claims.UserID)
}
