// Package readmark tracks the last-read position per room so the client can
// place an unread divider when a member re-enters a room.
package readmark

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"amoura/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrNoMarker is returned by Load when the room has no saved position yet.
var ErrNoMarker = errors.New("readmark: no marker for room")

// Store persists the last-read chatId per room.
type Store interface {
	Load(ctx context.Context, roomID int64) (int64, error)
	Save(ctx context.Context, roomID, chatID int64) error
}

// MarkerKey is the storage key for a room's last-read position.
func MarkerKey(roomID int64) string {
	return fmt.Sprintf("lastReading_%d", roomID)
}

// RedisStore keeps markers in Redis, one key per room.
type RedisStore struct {
	Client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) Load(ctx context.Context, roomID int64) (int64, error) {
	val, err := s.Client.Get(ctx, MarkerKey(roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoMarker
	}
	if err != nil {
		return 0, err
	}
	chatID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrNoMarker
	}
	return chatID, nil
}

func (s *RedisStore) Save(ctx context.Context, roomID, chatID int64) error {
	return s.Client.Set(ctx, MarkerKey(roomID), strconv.FormatInt(chatID, 10), 0).Err()
}

// Tracker decides where the unread divider goes for one room visit.
// The divider position is fixed the moment the room is entered; messages
// arriving during the visit never move it.
type Tracker struct {
	store  Store
	roomID int64

	entered   bool
	hasMarker bool
	marker    int64
}

func NewTracker(store Store, roomID int64) *Tracker {
	return &Tracker{store: store, roomID: roomID}
}

// EnterRoom loads the saved position. It returns the chatId the divider
// should follow and whether a divider should be shown at all. A first visit
// has no marker and no divider.
func (t *Tracker) EnterRoom(ctx context.Context) (int64, bool, error) {
	marker, err := t.store.Load(ctx, t.roomID)
	if errors.Is(err, ErrNoMarker) {
		t.entered = true
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	t.entered = true
	t.hasMarker = true
	t.marker = marker
	return marker, true, nil
}

// Divider reports the fixed divider position decided at EnterRoom.
func (t *Tracker) Divider() (int64, bool) {
	return t.marker, t.hasMarker
}

// ExitRoom saves the id of the last message in the log as the new marker.
// An empty log leaves the previous marker untouched.
func (t *Tracker) ExitRoom(ctx context.Context, log []models.ChatMessage) error {
	if !t.entered || len(log) == 0 {
		return nil
	}
	return t.store.Save(ctx, t.roomID, log[len(log)-1].ChatID)
}
