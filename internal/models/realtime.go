package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frame is the unit of the pub/sub protocol spoken over the websocket.
// Clients subscribe to /sub/... topics and publish to /pub/... destinations;
// the server answers with CONNECTED, MESSAGE and ERROR frames.
type Frame struct {
	Type        string          `json:"type"`
	Destination string          `json:"destination,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

// Frame types.
const (
	FrameConnected   = "CONNECTED"
	FrameSubscribe   = "SUBSCRIBE"
	FrameUnsubscribe = "UNSUBSCRIBE"
	FrameSend        = "SEND"
	FrameMessage     = "MESSAGE"
	FrameError       = "ERROR"
)

// ChatMessage is the broadcast body delivered on a room topic.
// ChatID is assigned by the server on persist and is unique per room.
type ChatMessage struct {
	ChatID     int64     `json:"chatId"`
	ChatRoomID int64     `json:"chatRoomId"`
	MemberID   int64     `json:"memberId"`
	Nickname   string    `json:"nickname"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SendMessageRequest is the publish body for /pub/chat/{roomId}/sendMessage.
type SendMessageRequest struct {
	ChatRoomID int64  `json:"chatRoomId"`
	Message    string `json:"message"`
	Nickname   string `json:"nickname"`
	MemberID   int64  `json:"memberId"`
}

// DeleteMessageRequest is the publish body for /pub/chat/message. The same
// shape is re-broadcast on the room topic so peers can drop the message.
type DeleteMessageRequest struct {
	Type      string `json:"type"` // always "delete"
	MessageID int64  `json:"messageId"`
}

// QueueStatus is the broadcast body on the matchmaking lobby topic.
type QueueStatus struct {
	Waiting    int    `json:"waiting"`
	Capacity   int    `json:"capacity"`
	Message    string `json:"message,omitempty"`
	ChatRoomID int64  `json:"chatRoomId,omitempty"`
}

// ErrorBody is the body of an ERROR frame.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchRequest — запит на підбір кімнати, який обробляє Matcher.
// ResultCh отримує ID створеної кімнати, якщо збіг знайдено одразу.
type SearchRequest struct {
	MemberID int64
	ResultCh chan int64
}

// ChatTopic returns the subscribe topic carrying messages for one room.
func ChatTopic(roomID int64) string {
	return fmt.Sprintf("/sub/chat/%d", roomID)
}

// MatchingStatusTopic is the room-independent lobby broadcast topic.
const MatchingStatusTopic = "/sub/matching/status"

// SendMessageDest returns the publish destination for a room's outbound messages.
func SendMessageDest(roomID int64) string {
	return fmt.Sprintf("/pub/chat/%d/sendMessage", roomID)
}

// ChatMessageDest is the publish destination for message-level commands (delete).
const ChatMessageDest = "/pub/chat/message"

// ParseSendMessageDest extracts the room id from a /pub/chat/{id}/sendMessage
// destination. ok is false for any other destination.
func ParseSendMessageDest(dest string) (int64, bool) {
	if !strings.HasPrefix(dest, "/pub/chat/") || !strings.HasSuffix(dest, "/sendMessage") {
		return 0, false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(dest, "/pub/chat/"), "/sendMessage")
	roomID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || roomID <= 0 {
		return 0, false
	}
	return roomID, true
}
