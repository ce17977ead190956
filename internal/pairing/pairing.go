// Package pairing computes mutual-pick outcomes from a room's event records.
package pairing

import "amoura/backend/internal/models"

// Match is a reciprocal pair of picks. It is derived, never persisted.
type Match struct {
	MemberA int64
	MemberB int64
}

// Resolve determines whether selfID is part of a reciprocal pick.
//
// Only PICK_MESSAGE events are considered. The first event sent by selfID in
// slice order is authoritative; any later picks by the same member are
// ignored. A match exists when the picked member has a pick event pointing
// back at selfID. Resolve performs no I/O.
func Resolve(events []models.RoomEvent, selfID int64) (Match, bool) {
	var mine *models.RoomEvent
	for i := range events {
		if events[i].RoomEventType != models.RoomEventPickMessage {
			continue
		}
		if events[i].SenderID == selfID {
			mine = &events[i]
			break
		}
	}
	if mine == nil {
		return Match{}, false
	}

	for i := range events {
		if events[i].RoomEventType != models.RoomEventPickMessage {
			continue
		}
		if events[i].SenderID == mine.ReceiverID && events[i].ReceiverID == selfID {
			return Match{MemberA: selfID, MemberB: mine.ReceiverID}, true
		}
	}
	return Match{}, false
}
