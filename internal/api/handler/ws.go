package handler

import (
	"net/http"
	"strings"

	"amoura/backend/internal/chathub"
	"amoura/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Дозволяє з'єднання з будь-якого домену. У продакшені налаштувати!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket
func (h *Handler) ServeWebSocket(c *gin.Context) {
	// 1. Отримати токен. Мобільний клієнт шле Bearer-заголовок,
	// браузерний — query-параметр, бо JS WebSocket не вміє заголовків.
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	// 2. Валідація та отримання MemberID з JWT
	memberID, err := h.validateAndGetMemberID(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	if banned, err := h.Storage.IsMemberBanned(memberID); err == nil && banned {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Member is banned"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		Hub:      h.Hub,
		MemberID: memberID,
		Conn:     conn,
		Send:     make(chan models.Frame, 256),
	}

	// Реєстрація клієнта в Chat Hub; хаб відповість фреймом CONNECTED
	h.Hub.RegisterCh <- client

	// client.Run() сам запустить необхідні goroutines
	client.Run()
}
