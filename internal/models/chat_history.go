package models

import "time"

// ChatHistory is a persisted chat message. Its autoincrement ID is the chatId
// carried on the wire, which makes it the dedup key on the client side.
type ChatHistory struct {
	ID int64 `gorm:"primaryKey"`

	// ChatRoomID is the room the message was sent to.
	ChatRoomID int64 `gorm:"not null;index:idx_room_msg"`
	// SenderID is the member who sent the message. 0 marks a system notice.
	SenderID int64 `gorm:"not null;index:idx_room_msg"`
	// Nickname is the sender's display name at send time.
	Nickname string `gorm:"type:text;not null"`
	// Message is the text body.
	Message string `gorm:"type:text;not null"`
	// Deleted marks messages removed by their sender; the row is kept so the
	// chatId stays burned.
	Deleted bool `gorm:"not null;default:false"`

	CreatedAt time.Time
}

// Wire converts the stored row into its broadcast shape.
func (h *ChatHistory) Wire() ChatMessage {
	return ChatMessage{
		ChatID:     h.ID,
		ChatRoomID: h.ChatRoomID,
		MemberID:   h.SenderID,
		Nickname:   h.Nickname,
		Message:    h.Message,
		CreatedAt:  h.CreatedAt,
	}
}
