package chathub

import (
	"time"

	"amoura/backend/internal/config"
	"amoura/backend/internal/models"
	"amoura/backend/internal/storage"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// MatcherService відповідає за збирання незнайомців у кімнати.
type MatcherService struct {
	Hub     *ManagerService
	Storage storage.Storage

	// Queue — учасники, які чекають на кімнату.
	// Ключ: MemberID, значення: його SearchRequest.
	Queue map[int64]models.SearchRequest
}

// NewMatcherService створює новий Matcher.
func NewMatcherService(hub *ManagerService, s storage.Storage) *MatcherService {
	return &MatcherService{
		Hub:     hub,
		Storage: s,
		Queue:   make(map[int64]models.SearchRequest),
	}
}

// Run запускає основну goroutine Matcher'а.
func (m *MatcherService) Run() {
	zap.L().Info("matcher service started", zap.Int("capacity", config.RoomCapacity))

	for {
		select {
		case req := <-m.Hub.MatchRequestCh:
			m.enqueue(req)
			m.tryAssemble()

		default:
			if len(m.Queue) >= config.RoomCapacity {
				m.tryAssemble()
			}
			// Пауза, щоб не перевантажувати процесор при порожній черзі
			time.Sleep(100 * time.Millisecond)
		}
	}
}

func (m *MatcherService) enqueue(req models.SearchRequest) {
	if _, waiting := m.Queue[req.MemberID]; waiting {
		// Повторний запит того самого учасника не подвоює місце в черзі
		return
	}
	m.Queue[req.MemberID] = req
	if err := m.Storage.AddMemberToQueue(req.MemberID); err != nil {
		zap.L().Error("failed to persist queue entry", zap.Int64("memberId", req.MemberID), zap.Error(err))
	}
	m.publishStatus("", 0)
	zap.L().Info("match request queued", zap.Int64("memberId", req.MemberID), zap.Int("waiting", len(m.Queue)))
}

// tryAssemble збирає кімнату, щойно в черзі достатньо учасників.
func (m *MatcherService) tryAssemble() {
	if len(m.Queue) < config.RoomCapacity {
		return
	}

	members := make([]int64, 0, config.RoomCapacity)
	requests := make([]models.SearchRequest, 0, config.RoomCapacity)
	for id, req := range m.Queue {
		members = append(members, id)
		requests = append(requests, req)
		if len(members) == config.RoomCapacity {
			break
		}
	}

	room := &models.ChatRoom{
		MemberIDs: pq.Int64Array(members),
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := m.Storage.SaveRoom(room); err != nil {
		zap.L().Error("failed to save assembled room", zap.Error(err))
		return
	}

	for _, req := range requests {
		delete(m.Queue, req.MemberID)
		if err := m.Storage.RemoveMemberFromQueue(req.MemberID); err != nil {
			zap.L().Error("failed to clear queue entry", zap.Int64("memberId", req.MemberID), zap.Error(err))
		}
		if req.ResultCh != nil {
			select {
			case req.ResultCh <- room.ID:
			default:
				// Той, хто чекав, уже пішов; дізнається з лобі-топіка
			}
		}
	}

	m.publishStatus("match_found", room.ID)
	zap.L().Info("room assembled", zap.Int64("roomId", room.ID), zap.Int64s("members", members))
}

func (m *MatcherService) publishStatus(message string, roomID int64) {
	status := models.QueueStatus{
		Waiting:    len(m.Queue),
		Capacity:   config.RoomCapacity,
		Message:    message,
		ChatRoomID: roomID,
	}
	if err := m.Storage.PublishQueueStatus(status); err != nil {
		zap.L().Error("failed to publish queue status", zap.Error(err))
	}
}
