package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

type tokenRequest struct {
	DeviceID string `json:"deviceId"`
	Nickname string `json:"nickname"`
	Gender   string `json:"gender"`
}

// generateJWT генерує JWT з ідентифікатором учасника
func (h *Handler) generateJWT(memberID int64) (string, error) {
	// Встановлюємо claims, включаючи MemberID та термін дії
	claims := jwt.MapClaims{
		"member_id": memberID,
		"exp":       time.Now().Add(time.Hour * 72).Unix(),
		"iss":       "amoura-service", // Видавець
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Cfg.JWTSecret))
}

// validateAndGetMemberID перевіряє підпис токена та повертає member_id.
func (h *Handler) validateAndGetMemberID(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.Cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	// JSON-числа декодуються у float64
	id, ok := claims["member_id"].(float64)
	if !ok || id <= 0 {
		return 0, errors.New("member_id missing")
	}
	return int64(id), nil
}

// IssueToken реєструє пристрій (або знаходить наявного учасника) та повертає JWT
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.DeviceID == "" {
		// Новий пристрій: генеруємо анонімний UUID
		req.DeviceID = uuid.NewString()
	}

	member, err := h.Storage.GetOrCreateMemberByDevice(req.DeviceID, req.Nickname, req.Gender)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register member"})
		return
	}

	banned, err := h.Storage.IsMemberBanned(member.ID)
	if err == nil && banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Member is banned"})
		return
	}

	token, err := h.generateJWT(member.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"memberId": member.ID,
		"deviceId": member.DeviceID,
		"nickname": member.Nickname,
	})
}

// AuthRequired — middleware, що перевіряє Bearer-токен і кладе memberID у контекст.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		memberID, err := h.validateAndGetMemberID(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		c.Set("memberID", memberID)
		c.Next()
	}
}

// memberID дістає автентифікованого учасника з контексту Gin.
func memberID(c *gin.Context) int64 {
	return c.GetInt64("memberID")
}
