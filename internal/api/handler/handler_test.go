package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"amoura/backend/internal/api/handler"
	"amoura/backend/internal/chathub"
	"amoura/backend/internal/config"
	"amoura/backend/internal/models"
	"amoura/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStorage implements just the storage surface the handlers touch.
// The embedded interface panics on anything else.
type fakeStorage struct {
	storage.Storage
	member *models.Member
	banned bool
	room   *models.ChatRoom
	events []models.RoomEvent
	picked map[int64]bool
}

func newHandlerStorage() *fakeStorage {
	return &fakeStorage{picked: make(map[int64]bool)}
}

func (f *fakeStorage) GetOrCreateMemberByDevice(deviceID, nickname, gender string) (*models.Member, error) {
	if f.member == nil {
		f.member = &models.Member{ID: 1, DeviceID: deviceID, Nickname: nickname, Gender: gender}
	}
	return f.member, nil
}

func (f *fakeStorage) IsMemberBanned(int64) (bool, error) {
	return f.banned, nil
}

func (f *fakeStorage) GetRoomByID(id int64) (*models.ChatRoom, error) {
	if f.room == nil || f.room.ID != id {
		return nil, storage.ErrRoomNotFound
	}
	return f.room, nil
}

func (f *fakeStorage) GetRoomEvents(int64) ([]models.RoomEvent, error) {
	return f.events, nil
}

func (f *fakeStorage) HasPickEvent(_, senderID int64) (bool, error) {
	return f.picked[senderID], nil
}

func (f *fakeStorage) SaveRoomEvent(e *models.RoomEvent) error {
	e.ID = int64(len(f.events) + 1)
	f.events = append(f.events, *e)
	if e.RoomEventType == models.RoomEventPickMessage {
		f.picked[e.SenderID] = true
	}
	return nil
}

func newTestHandler(store *fakeStorage) *handler.Handler {
	cfg := &config.Config{JWTSecret: "test-secret"}
	return handler.NewHandler(chathub.NewManagerService(store), store, nil, cfg)
}

// roomAged returns an active room whose timeline started `age` ago.
func roomAged(age time.Duration) *models.ChatRoom {
	return &models.ChatRoom{
		ID:        7,
		MemberIDs: pq.Int64Array{1, 2, 3},
		IsActive:  true,
		CreatedAt: time.Now().Add(-age),
	}
}

func postRoomEvent(h *handler.Handler, memberID int64, payload map[string]any) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("memberID", memberID)

	body, _ := json.Marshal(payload)
	c.Request = httptest.NewRequest(http.MethodPost, "/room-event", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateRoomEvent(c)
	return w
}

func TestCreateRoomEventSecretDuringSecretHour(t *testing.T) {
	store := newHandlerStorage()
	store.room = roomAged(23*time.Hour + 30*time.Minute)
	h := newTestHandler(store)

	w := postRoomEvent(h, 1, map[string]any{
		"chatRoomId": 7, "receiverId": 2,
		"roomEventType": models.RoomEventSecretMessage, "message": "hi, anonymously",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.events, 1)
	assert.Equal(t, int64(1), store.events[0].SenderID)
}

func TestCreateRoomEventSecretOutsideWindow(t *testing.T) {
	store := newHandlerStorage()
	store.room = roomAged(2 * time.Hour) // long before the secret hour
	h := newTestHandler(store)

	w := postRoomEvent(h, 1, map[string]any{
		"chatRoomId": 7, "receiverId": 2,
		"roomEventType": models.RoomEventSecretMessage, "message": "too early",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, store.events)
}

func TestCreateRoomEventPickDuringSecretHourRejected(t *testing.T) {
	store := newHandlerStorage()
	store.room = roomAged(23*time.Hour + 30*time.Minute)
	h := newTestHandler(store)

	w := postRoomEvent(h, 1, map[string]any{
		"chatRoomId": 7, "receiverId": 2, "roomEventType": models.RoomEventPickMessage,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateRoomEventPickDuringCupidWindow(t *testing.T) {
	store := newHandlerStorage()
	store.room = roomAged(30 * time.Hour)
	h := newTestHandler(store)

	w := postRoomEvent(h, 1, map[string]any{
		"chatRoomId": 7, "receiverId": 2, "roomEventType": models.RoomEventPickMessage,
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.events, 1)
	assert.Equal(t, models.RoomEventPickMessage, store.events[0].RoomEventType)
}

func TestCreateRoomEventSecondPickRejected(t *testing.T) {
	store := newHandlerStorage()
	store.room = roomAged(30 * time.Hour)
	h := newTestHandler(store)

	first := postRoomEvent(h, 1, map[string]any{
		"chatRoomId": 7, "receiverId": 2, "roomEventType": models.RoomEventPickMessage,
	})
	require.Equal(t, http.StatusCreated, first.Code)

	// The first pick is final; switching to another member is rejected
	second := postRoomEvent(h, 1, map[string]any{
		"chatRoomId": 7, "receiverId": 3, "roomEventType": models.RoomEventPickMessage,
	})
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Len(t, store.events, 1)
}

func TestCreateRoomEventOutsiderRejected(t *testing.T) {
	store := newHandlerStorage()
	store.room = roomAged(30 * time.Hour)
	h := newTestHandler(store)

	w := postRoomEvent(h, 99, map[string]any{
		"chatRoomId": 7, "receiverId": 2, "roomEventType": models.RoomEventPickMessage,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A member cannot target someone outside the room either
	w = postRoomEvent(h, 1, map[string]any{
		"chatRoomId": 7, "receiverId": 99, "roomEventType": models.RoomEventPickMessage,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateRoomEventEndedRoomRejected(t *testing.T) {
	store := newHandlerStorage()
	store.room = roomAged(30 * time.Hour)
	store.room.IsActive = false
	h := newTestHandler(store)

	w := postRoomEvent(h, 1, map[string]any{
		"chatRoomId": 7, "receiverId": 2, "roomEventType": models.RoomEventPickMessage,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestGetRoomEventsVisibility checks that members only see events they sent
// or received, and the match result stays hidden until the cupid window ends.
func TestGetRoomEventsVisibility(t *testing.T) {
	store := newHandlerStorage()
	store.room = roomAged(30 * time.Hour) // cupid window still open
	store.events = []models.RoomEvent{
		{ID: 1, ChatRoomID: 7, SenderID: 1, ReceiverID: 2, RoomEventType: models.RoomEventPickMessage},
		{ID: 2, ChatRoomID: 7, SenderID: 2, ReceiverID: 1, RoomEventType: models.RoomEventPickMessage},
		{ID: 3, ChatRoomID: 7, SenderID: 2, ReceiverID: 3, RoomEventType: models.RoomEventSecretMessage},
	}
	h := newTestHandler(store)

	get := func() map[string]json.RawMessage {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set("memberID", int64(1))
		c.Request = httptest.NewRequest(http.MethodGet, "/room-event/chat-room/7", nil)
		c.Params = gin.Params{{Key: "id", Value: "7"}}
		h.GetRoomEvents(c)
		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp
	}

	resp := get()
	var events []models.RoomEvent
	require.NoError(t, json.Unmarshal(resp["events"], &events))
	assert.Len(t, events, 2, "the secret message between 2 and 3 is invisible to 1")
	assert.NotContains(t, resp, "match", "match is hidden while picks are still open")

	// Once the window closes the mutual pick is revealed
	store.room.CreatedAt = time.Now().Add(-48*time.Hour - 10*time.Minute)
	resp = get()
	assert.Contains(t, resp, "match")
}

// TestAuthFlow issues a token and uses it against a protected route.
func TestAuthFlow(t *testing.T) {
	store := newHandlerStorage()
	h := newTestHandler(store)

	r := gin.New()
	r.POST("/auth/token", h.IssueToken)
	r.GET("/me", h.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"memberId": c.GetInt64("memberID")})
	})

	body, _ := json.Marshal(map[string]string{"nickname": "fox", "gender": "F"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var issued struct {
		Token    string `json:"token"`
		MemberID int64  `json:"memberId"`
		DeviceID string `json:"deviceId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issued))
	require.NotEmpty(t, issued.Token)
	assert.NotEmpty(t, issued.DeviceID, "server assigns a device id when none is sent")

	// With the token
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"memberId":1`)

	// Without it
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// With garbage
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthBannedMemberRejected(t *testing.T) {
	store := newHandlerStorage()
	store.banned = true
	h := newTestHandler(store)

	r := gin.New()
	r.POST("/auth/token", h.IssueToken)

	body, _ := json.Marshal(map[string]string{"nickname": "fox"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader(body)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
