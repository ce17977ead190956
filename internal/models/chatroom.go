package models

import (
	"time"

	"github.com/lib/pq"
)

// ChatRoom represents a time-boxed group chat between matched strangers.
// CreatedAt is the origin of the room's event timeline: every scheduled
// mini-event is an offset from it, so the field is written once and never
// updated afterwards.
type ChatRoom struct {
	// ID is the room identifier, assigned by the database.
	ID int64 `gorm:"primaryKey" json:"chatRoomId"`
	// MemberIDs holds the ids of every matched participant.
	MemberIDs pq.Int64Array `gorm:"type:bigint[]" json:"memberIds"`
	// IsActive indicates whether the room has not yet expired.
	IsActive bool `json:"isActive"`
	// CreatedAt is the timestamp the room was assembled by the matcher.
	CreatedAt time.Time `json:"createdAt"`
	// EndedAt is the timestamp the room was closed.
	EndedAt time.Time `json:"endedAt,omitempty"`
}

// HasMember reports whether the given member belongs to the room.
func (r *ChatRoom) HasMember(memberID int64) bool {
	for _, id := range r.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
