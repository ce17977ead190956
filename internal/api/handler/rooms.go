package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"amoura/backend/internal/config"
	"amoura/backend/internal/models"
	"amoura/backend/internal/pairing"
	"amoura/backend/internal/roomphase"
	"amoura/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// JoinMatching ставить учасника в чергу підбору. Якщо кімната збирається
// миттєво, відповідь одразу містить її ID; інакше клієнт слухає лобі-топік.
func (h *Handler) JoinMatching(c *gin.Context) {
	id := memberID(c)

	// Учасник не може шукати нову кімнату, поки перебуває в активній
	if roomID, err := h.Storage.GetActiveRoomIDForMember(id); err == nil && roomID != 0 {
		c.JSON(http.StatusOK, gin.H{"message": "already_in_room", "chatRoomId": roomID})
		return
	}

	req := models.SearchRequest{
		MemberID: id,
		ResultCh: make(chan int64, 1),
	}
	h.Hub.MatchRequestCh <- req

	select {
	case roomID := <-req.ResultCh:
		c.JSON(http.StatusOK, gin.H{"message": "match_found", "chatRoomId": roomID})
	case <-time.After(config.MatchResultWait):
		c.JSON(http.StatusAccepted, gin.H{"message": "searching"})
	}
}

// GetRoom повертає кімнату, її поточну фазу та історію повідомлень.
func (h *Handler) GetRoom(c *gin.Context) {
	room, ok := h.roomForMember(c)
	if !ok {
		return
	}

	history, err := h.Storage.GetChatHistory(room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	messages := make([]models.ChatMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, msg.Wire())
	}

	phase, remaining := roomphase.Resolve(room.CreatedAt, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"chatRoom":         room,
		"phase":            phase,
		"remainingSeconds": int(remaining / time.Second),
		"messages":         messages,
	})
}

// GetRoomEvents повертає події кімнати, видимі учаснику: лише ті, де він
// відправник або отримувач. Додатково рахує результат взаємного вибору.
func (h *Handler) GetRoomEvents(c *gin.Context) {
	room, ok := h.roomForMember(c)
	if !ok {
		return
	}
	id := memberID(c)

	events, err := h.Storage.GetRoomEvents(room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room events"})
		return
	}

	visible := make([]models.RoomEvent, 0, len(events))
	for _, event := range events {
		if event.SenderID == id || event.ReceiverID == id {
			visible = append(visible, event)
		}
	}

	resp := gin.H{"chatRoomId": room.ID, "events": visible}
	// Результат купідона розкривається лише після закриття вікна вибору
	phase, _ := roomphase.Resolve(room.CreatedAt, time.Now())
	if phase == roomphase.PhaseCountdownToEnd || phase == roomphase.PhasePostEvent {
		if match, matched := pairing.Resolve(events, id); matched {
			resp["match"] = match
		}
	}
	c.JSON(http.StatusOK, resp)
}

type roomEventRequest struct {
	ChatRoomID    int64  `json:"chatRoomId"`
	ReceiverID    int64  `json:"receiverId"`
	RoomEventType string `json:"roomEventType"`
	Message       string `json:"message"`
}

// CreateRoomEvent приймає подію міні-івенту. Тип події дозволений лише у
// своїй фазі таймлайну, межі фаз — напіввідкриті.
func (h *Handler) CreateRoomEvent(c *gin.Context) {
	id := memberID(c)

	var req roomEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	room, err := h.Storage.GetRoomByID(req.ChatRoomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}
	if !room.IsActive {
		c.JSON(http.StatusConflict, gin.H{"error": "Chat room has ended"})
		return
	}
	if !room.HasMember(id) || !room.HasMember(req.ReceiverID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this room"})
		return
	}
	if req.ReceiverID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Receiver must be another member"})
		return
	}

	phase, _ := roomphase.Resolve(room.CreatedAt, time.Now())
	switch req.RoomEventType {
	case models.RoomEventSecretMessage:
		if phase != roomphase.PhaseSecret {
			c.JSON(http.StatusConflict, gin.H{"error": "Secret messages are only accepted during the secret hour"})
			return
		}
		if req.Message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}
	case models.RoomEventPickMessage:
		if phase != roomphase.PhaseCupidInterim && phase != roomphase.PhaseCupidMain {
			c.JSON(http.StatusConflict, gin.H{"error": "Picks are only accepted during the cupid event"})
			return
		}
		// Перший вибір остаточний
		picked, err := h.Storage.HasPickEvent(room.ID, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing pick"})
			return
		}
		if picked {
			c.JSON(http.StatusConflict, gin.H{"error": "Pick already made"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown room event type"})
		return
	}

	event := models.RoomEvent{
		ChatRoomID:    room.ID,
		SenderID:      id,
		ReceiverID:    req.ReceiverID,
		RoomEventType: req.RoomEventType,
		Message:       req.Message,
		CreatedAt:     time.Now(),
	}
	if err := h.Storage.SaveRoomEvent(&event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save room event"})
		return
	}
	c.JSON(http.StatusCreated, event)
}

// roomForMember дістає кімнату з path-параметра та перевіряє членство.
func (h *Handler) roomForMember(c *gin.Context) (*models.ChatRoom, bool) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || roomID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room id"})
		return nil, false
	}

	room, err := h.Storage.GetRoomByID(roomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat room not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return nil, false
	}
	if !room.HasMember(memberID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this room"})
		return nil, false
	}
	return room, true
}
