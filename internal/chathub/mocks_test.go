package chathub

import (
	"time"

	"amoura/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveMember(member *models.Member) error {
	args := m.Called(member)
	return args.Error(0)
}

func (m *MockStorage) GetMemberByID(id int64) (*models.Member, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockStorage) GetOrCreateMemberByDevice(deviceID, nickname, gender string) (*models.Member, error) {
	args := m.Called(deviceID, nickname, gender)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockStorage) UpdateMember(member *models.Member) error {
	args := m.Called(member)
	return args.Error(0)
}

func (m *MockStorage) UpdateMemberReputation(id int64, delta int) error {
	args := m.Called(id, delta)
	return args.Error(0)
}

func (m *MockStorage) IsMemberBanned(id int64) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SetMemberBan(id int64, duration time.Duration) error {
	args := m.Called(id, duration)
	return args.Error(0)
}

func (m *MockStorage) SaveRoom(room *models.ChatRoom) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) GetRoomByID(roomID int64) (*models.ChatRoom, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) GetActiveRoomIDs() ([]int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockStorage) GetActiveRoomIDForMember(memberID int64) (int64, error) {
	args := m.Called(memberID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) CloseRoom(roomID int64) error {
	args := m.Called(roomID)
	return args.Error(0)
}

func (m *MockStorage) SaveMessage(msg *models.ChatHistory) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetChatHistory(roomID int64) ([]models.ChatHistory, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatHistory), args.Error(1)
}

func (m *MockStorage) MarkMessageDeleted(chatID, senderID int64) (int64, error) {
	args := m.Called(chatID, senderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) SaveRoomEvent(event *models.RoomEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockStorage) GetRoomEvents(roomID int64) ([]models.RoomEvent, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoomEvent), args.Error(1)
}

func (m *MockStorage) HasPickEvent(roomID, senderID int64) (bool, error) {
	args := m.Called(roomID, senderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) SaveReport(report *models.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func (m *MockStorage) GetReportByID(id int64) (*models.Report, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) GetReportsForMember(targetID int64, since time.Time) ([]models.Report, error) {
	args := m.Called(targetID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) PublishToRoom(roomID int64, body any) error {
	args := m.Called(roomID, body)
	return args.Error(0)
}

func (m *MockStorage) PublishQueueStatus(status models.QueueStatus) error {
	args := m.Called(status)
	return args.Error(0)
}

func (m *MockStorage) SubscribeChannels() *redis.PubSub {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}

func (m *MockStorage) AddMemberToQueue(memberID int64) error {
	args := m.Called(memberID)
	return args.Error(0)
}

func (m *MockStorage) RemoveMemberFromQueue(memberID int64) error {
	args := m.Called(memberID)
	return args.Error(0)
}

func (m *MockStorage) CountSearchingMembers() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// mockClient is a test double for the Client interface. Frames the hub sends
// land on recv; the buffer keeps the hub from blocking in tests.
type mockClient struct {
	memberID int64
	recv     chan models.Frame
}

func newMockClient(id int64) *mockClient {
	return &mockClient{memberID: id, recv: make(chan models.Frame, 10)}
}

// newSlowClient has no buffer, so any delivery attempt hits the hub's
// slow-client path.
func newSlowClient(id int64) *mockClient {
	return &mockClient{memberID: id, recv: make(chan models.Frame)}
}

func (c *mockClient) GetMemberID() int64                  { return c.memberID }
func (c *mockClient) GetSendChannel() chan<- models.Frame { return c.recv }
func (c *mockClient) Run()                                {}
func (c *mockClient) Close()                              {}
