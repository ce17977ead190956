package readmark_test

import (
	"context"
	"testing"

	"amoura/backend/internal/models"
	"amoura/backend/internal/readmark"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps markers in memory.
type fakeStore struct {
	markers map[int64]int64
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{markers: make(map[int64]int64)}
}

func (s *fakeStore) Load(_ context.Context, roomID int64) (int64, error) {
	marker, ok := s.markers[roomID]
	if !ok {
		return 0, readmark.ErrNoMarker
	}
	return marker, nil
}

func (s *fakeStore) Save(_ context.Context, roomID, chatID int64) error {
	s.markers[roomID] = chatID
	s.saves++
	return nil
}

func msgs(ids ...int64) []models.ChatMessage {
	out := make([]models.ChatMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.ChatMessage{ChatID: id})
	}
	return out
}

func TestMarkerKeyFormat(t *testing.T) {
	assert.Equal(t, "lastReading_7", readmark.MarkerKey(7))
}

func TestFirstVisitHasNoDivider(t *testing.T) {
	tracker := readmark.NewTracker(newFakeStore(), 7)

	_, show, err := tracker.EnterRoom(context.Background())
	require.NoError(t, err)
	assert.False(t, show, "first visit has nothing unread to divide")
}

func TestDividerFixedAtEntry(t *testing.T) {
	store := newFakeStore()
	store.markers[7] = 12

	tracker := readmark.NewTracker(store, 7)
	marker, show, err := tracker.EnterRoom(context.Background())
	require.NoError(t, err)
	assert.True(t, show)
	assert.Equal(t, int64(12), marker)

	// Messages arriving during the visit must not move the divider
	marker, show = tracker.Divider()
	assert.True(t, show)
	assert.Equal(t, int64(12), marker)
}

func TestExitRoomSavesLastMessage(t *testing.T) {
	store := newFakeStore()
	tracker := readmark.NewTracker(store, 7)

	_, _, err := tracker.EnterRoom(context.Background())
	require.NoError(t, err)

	require.NoError(t, tracker.ExitRoom(context.Background(), msgs(10, 11, 15)))
	assert.Equal(t, int64(15), store.markers[7])
}

func TestExitRoomEmptyLogKeepsMarker(t *testing.T) {
	store := newFakeStore()
	store.markers[7] = 12

	tracker := readmark.NewTracker(store, 7)
	_, _, err := tracker.EnterRoom(context.Background())
	require.NoError(t, err)

	require.NoError(t, tracker.ExitRoom(context.Background(), nil))
	assert.Equal(t, int64(12), store.markers[7], "empty visit must not clobber the marker")
	assert.Zero(t, store.saves)
}
