package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"github.com/siege-spider/spider-backend/internal/api/middleware"
	"github.com/siege-spider/spider-backend/internal/websocket"
)

// WebSocketHandler WebSocket 연결 처리
type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader *gorilla.Upgrader
}

// NewWebSocketHandler WebSocketHandler 생성
func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		upgrader: websocket.NewUpgrader(allowedOrigins),
	}
}

// HandleWebSocket 실시간 수집 피드
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	// 인증 미들웨어에서 설정한 email 가져오기
	email := c.GetString(middleware.ContextEmail)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	websocket.ServeWs(h.hub, h.upgrader, c.Writer, c.Request, email)
}
