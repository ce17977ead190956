package models

import "time"

// Room event types. SECRET_MESSAGE is the anonymous note exchanged during the
// secret-message window; PICK_MESSAGE is a member's chosen counterpart during
// the cupid arrow event.
const (
	RoomEventSecretMessage = "SECRET_MESSAGE"
	RoomEventPickMessage   = "PICK_MESSAGE"
)

// RoomEvent is a room-scoped record produced by a scheduled mini-event.
type RoomEvent struct {
	ID         int64     `gorm:"primaryKey" json:"eventId"`
	ChatRoomID int64     `gorm:"not null;index" json:"chatRoomId"`
	SenderID   int64     `gorm:"not null;index" json:"senderId"`
	ReceiverID int64     `gorm:"not null" json:"receiverId"`
	// RoomEventType is one of the event type constants above.
	RoomEventType string    `gorm:"type:text;not null" json:"roomEventType"`
	Message       string    `gorm:"type:text" json:"message"`
	CreatedAt     time.Time `json:"createdAt"`
}
