package chathub

import (
	"testing"
	"time"

	"amoura/backend/internal/models"
	"amoura/backend/internal/notices"
	"amoura/backend/internal/roomphase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestAnnouncerFirstSightIsSilent verifies that the first sweep over a room
// only records its phase. A restart must not replay old notices.
func TestAnnouncerFirstSightIsSilent(t *testing.T) {
	createdAt := time.Now().Add(-30 * time.Hour) // already past the secret hour

	storageMock := new(MockStorage)
	storageMock.On("GetActiveRoomIDs").Return([]int64{1}, nil)
	storageMock.On("GetRoomByID", int64(1)).
		Return(&models.ChatRoom{ID: 1, IsActive: true, CreatedAt: createdAt}, nil)

	a := NewAnnouncer(storageMock, notices.NewLocalizer(), "en")
	a.sweep(time.Now())

	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
	assert.Equal(t, roomphase.PhaseCupidInterim, a.lastPhase[1])
}

// TestAnnouncerAnnouncesPhaseTransition verifies that crossing a boundary
// persists a system message and broadcasts it to the room.
func TestAnnouncerAnnouncesPhaseTransition(t *testing.T) {
	now := time.Now()
	createdAt := now.Add(-22 * time.Hour)

	storageMock := new(MockStorage)
	storageMock.On("GetActiveRoomIDs").Return([]int64{1}, nil)
	storageMock.On("GetRoomByID", int64(1)).
		Return(&models.ChatRoom{ID: 1, IsActive: true, CreatedAt: createdAt}, nil)

	var saved *models.ChatHistory
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatHistory")).
		Run(func(args mock.Arguments) {
			saved = args.Get(0).(*models.ChatHistory)
			saved.ID = 900
		}).Return(nil).Once()
	storageMock.On("PublishToRoom", int64(1), mock.AnythingOfType("models.ChatMessage")).Return(nil).Once()

	a := NewAnnouncer(storageMock, notices.NewLocalizer(), "en")
	a.sweep(now)                         // records PRE_SECRET
	a.sweep(createdAt.Add(23*time.Hour)) // boundary crossed: secret hour begins

	storageMock.AssertExpectations(t)
	require.NotNil(t, saved)
	assert.Equal(t, int64(0), saved.SenderID, "notices are system messages")
	assert.Equal(t, notices.NewLocalizer().GetString("en", notices.KeySecretStart), saved.Message)
	assert.Equal(t, roomphase.PhaseSecret, a.lastPhase[1])
}

// TestAnnouncerClosesRoomAlreadyExpiredAtFirstSight verifies that a room
// first seen past the end of its timeline (a restart scenario) is closed on
// that very sweep, silently, instead of lingering active forever.
func TestAnnouncerClosesRoomAlreadyExpiredAtFirstSight(t *testing.T) {
	createdAt := time.Now().Add(-50 * time.Hour)

	storageMock := new(MockStorage)
	storageMock.On("GetActiveRoomIDs").Return([]int64{1}, nil)
	storageMock.On("GetRoomByID", int64(1)).
		Return(&models.ChatRoom{ID: 1, IsActive: true, CreatedAt: createdAt}, nil)
	storageMock.On("CloseRoom", int64(1)).Return(nil).Once()

	a := NewAnnouncer(storageMock, notices.NewLocalizer(), "en")
	a.sweep(time.Now())

	storageMock.AssertExpectations(t)
	storageMock.AssertNotCalled(t, "SaveMessage", mock.Anything)
	assert.NotContains(t, a.lastPhase, int64(1))
}

// TestAnnouncerClosesExpiredRoom verifies that reaching the end of the
// timeline closes the room and drops it from tracking.
func TestAnnouncerClosesExpiredRoom(t *testing.T) {
	now := time.Now()
	createdAt := now.Add(-48*time.Hour - 30*time.Minute)

	storageMock := new(MockStorage)
	storageMock.On("GetActiveRoomIDs").Return([]int64{1}, nil)
	storageMock.On("GetRoomByID", int64(1)).
		Return(&models.ChatRoom{ID: 1, IsActive: true, CreatedAt: createdAt}, nil)
	storageMock.On("SaveMessage", mock.AnythingOfType("*models.ChatHistory")).
		Run(func(args mock.Arguments) { args.Get(0).(*models.ChatHistory).ID = 901 }).
		Return(nil).Once()
	storageMock.On("PublishToRoom", int64(1), mock.AnythingOfType("models.ChatMessage")).Return(nil).Once()
	storageMock.On("CloseRoom", int64(1)).Return(nil).Once()

	a := NewAnnouncer(storageMock, notices.NewLocalizer(), "en")
	a.sweep(now)                         // records COUNTDOWN_TO_END
	a.sweep(createdAt.Add(49*time.Hour)) // room expires

	storageMock.AssertExpectations(t)
	assert.NotContains(t, a.lastPhase, int64(1))
}
