package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"amoura/backend/internal/config"
	"amoura/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrRoomNotFound повертається, коли кімната не існує.
var ErrRoomNotFound = errors.New("chat room not found")

// Storage — межа персистентності, яку споживають hub, matcher та хендлери.
type Storage interface {
	// Members
	SaveMember(member *models.Member) error
	GetMemberByID(id int64) (*models.Member, error)
	GetOrCreateMemberByDevice(deviceID, nickname, gender string) (*models.Member, error)
	UpdateMember(member *models.Member) error
	UpdateMemberReputation(id int64, delta int) error
	IsMemberBanned(id int64) (bool, error)
	SetMemberBan(id int64, duration time.Duration) error

	// Rooms
	SaveRoom(room *models.ChatRoom) error
	GetRoomByID(roomID int64) (*models.ChatRoom, error)
	GetActiveRoomIDs() ([]int64, error)
	GetActiveRoomIDForMember(memberID int64) (int64, error)
	CloseRoom(roomID int64) error

	// Messages
	SaveMessage(msg *models.ChatHistory) error
	GetChatHistory(roomID int64) ([]models.ChatHistory, error)
	MarkMessageDeleted(chatID, senderID int64) (roomID int64, err error)

	// Room events
	SaveRoomEvent(event *models.RoomEvent) error
	GetRoomEvents(roomID int64) ([]models.RoomEvent, error)
	HasPickEvent(roomID, senderID int64) (bool, error)

	// Reports
	SaveReport(report *models.Report) error
	GetReportByID(id int64) (*models.Report, error)
	GetReportsForMember(targetID int64, since time.Time) ([]models.Report, error)

	// Pub/Sub та черга підбору
	PublishToRoom(roomID int64, body any) error
	PublishQueueStatus(status models.QueueStatus) error
	SubscribeChannels() *redis.PubSub
	AddMemberToQueue(memberID int64) error
	RemoveMemberFromQueue(memberID int64) error
	CountSearchingMembers() (int64, error)
}

// Service реалізує Storage поверх PostgreSQL (gorm) та Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Members ---

// SaveMember зберігає учасника в PostgreSQL.
func (s *Service) SaveMember(member *models.Member) error {
	return s.DB.Save(member).Error
}

func (s *Service) GetMemberByID(id int64) (*models.Member, error) {
	var member models.Member
	if err := s.DB.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// GetOrCreateMemberByDevice шукає учасника за DeviceID або створює нового.
func (s *Service) GetOrCreateMemberByDevice(deviceID, nickname, gender string) (*models.Member, error) {
	var member models.Member
	defaults := models.Member{
		DeviceID:        deviceID,
		Nickname:        nickname,
		Gender:          gender,
		ReputationScore: config.InitialReputation,
	}

	result := s.DB.Where("device_id = ?", deviceID).FirstOrCreate(&member, defaults)
	if result.Error != nil {
		zap.L().Error("failed to get or create member", zap.String("deviceId", deviceID), zap.Error(result.Error))
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		zap.L().Info("new member registered", zap.Int64("memberId", member.ID))
	}
	return &member, nil
}

func (s *Service) UpdateMember(member *models.Member) error {
	return s.DB.Save(member).Error
}

// UpdateMemberReputation зсуває репутацію учасника на delta (може бути від'ємною).
func (s *Service) UpdateMemberReputation(id int64, delta int) error {
	return s.DB.Model(&models.Member{}).
		Where("id = ?", id).
		UpdateColumn("reputation_score", gorm.Expr("reputation_score + ?", delta)).Error
}

// IsMemberBanned перевіряє статус бану в Redis (швидка перевірка).
func (s *Service) IsMemberBanned(id int64) (bool, error) {
	key := fmt.Sprintf("ban:%d", id)
	status, err := s.Redis.Get(s.Ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// SetMemberBan ставить ключ бану з TTL, що дорівнює тривалості бану.
func (s *Service) SetMemberBan(id int64, duration time.Duration) error {
	key := fmt.Sprintf("ban:%d", id)
	return s.Redis.Set(s.Ctx, key, "active", duration).Err()
}

// --- Rooms ---

// SaveRoom зберігає кімнату; ID присвоює база.
func (s *Service) SaveRoom(room *models.ChatRoom) error {
	return s.DB.Save(room).Error
}

func (s *Service) GetRoomByID(roomID int64) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		zap.L().Error("failed to get room", zap.Int64("roomId", roomID), zap.Error(err))
		return nil, err
	}
	return &room, nil
}

// GetActiveRoomIDs повертає ідентифікатори всіх активних кімнат.
func (s *Service) GetActiveRoomIDs() ([]int64, error) {
	var roomIDs []int64
	if err := s.DB.Model(&models.ChatRoom{}).
		Where("is_active = ?", true).
		Pluck("id", &roomIDs).Error; err != nil {
		zap.L().Error("failed to retrieve active room ids", zap.Error(err))
		return nil, err
	}
	return roomIDs, nil
}

// GetActiveRoomIDForMember знаходить активну кімнату, в якій бере участь учасник.
func (s *Service) GetActiveRoomIDForMember(memberID int64) (int64, error) {
	var room models.ChatRoom
	err := s.DB.Where("is_active = ?", true).
		Where("? = ANY(member_ids)", memberID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil // учасник не перебуває в активній кімнаті
	}
	if err != nil {
		return 0, err
	}
	return room.ID, nil
}

// CloseRoom закриває кімнату, встановлюючи IsActive = false та EndedAt = NOW().
func (s *Service) CloseRoom(roomID int64) error {
	return s.DB.Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  gorm.Expr("NOW()"),
		}).Error
}

// --- Messages ---

// SaveMessage зберігає повідомлення; msg.ID (chatId) заповнює GORM.
func (s *Service) SaveMessage(msg *models.ChatHistory) error {
	if err := s.DB.Create(msg).Error; err != nil {
		zap.L().Error("failed to save message", zap.Int64("roomId", msg.ChatRoomID), zap.Error(err))
		return err
	}
	return nil
}

// GetChatHistory отримує історію повідомлень кімнати у порядку створення.
func (s *Service) GetChatHistory(roomID int64) ([]models.ChatHistory, error) {
	var history []models.ChatHistory
	err := s.DB.Where("chat_room_id = ? AND deleted = ?", roomID, false).
		Order("id asc").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// MarkMessageDeleted позначає повідомлення видаленим і повертає кімнату,
// в якій воно було. Рядок лишається, щоб chatId не перевикористовувався.
// Видаляти може лише відправник.
func (s *Service) MarkMessageDeleted(chatID, senderID int64) (int64, error) {
	var msg models.ChatHistory
	if err := s.DB.First(&msg, chatID).Error; err != nil {
		return 0, err
	}
	if msg.SenderID != senderID {
		return 0, gorm.ErrRecordNotFound
	}
	if err := s.DB.Model(&msg).UpdateColumn("deleted", true).Error; err != nil {
		return 0, err
	}
	return msg.ChatRoomID, nil
}

// --- Room events ---

func (s *Service) SaveRoomEvent(event *models.RoomEvent) error {
	return s.DB.Create(event).Error
}

func (s *Service) GetRoomEvents(roomID int64) ([]models.RoomEvent, error) {
	var events []models.RoomEvent
	err := s.DB.Where("chat_room_id = ?", roomID).
		Order("id asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// HasPickEvent перевіряє, чи учасник уже зробив вибір у цій кімнаті.
func (s *Service) HasPickEvent(roomID, senderID int64) (bool, error) {
	var count int64
	err := s.DB.Model(&models.RoomEvent{}).
		Where("chat_room_id = ? AND sender_id = ? AND room_event_type = ?",
			roomID, senderID, models.RoomEventPickMessage).
		Count(&count).Error
	return count > 0, err
}

// --- Reports ---

// SaveReport створює скаргу або оновлює наявну (ненульовий ID), як SaveMember.
func (s *Service) SaveReport(report *models.Report) error {
	if report.Status == "" {
		report.Status = "new"
	}
	if err := s.DB.Save(report).Error; err != nil {
		zap.L().Error("failed to save report", zap.Int64("roomId", report.ChatRoomID), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) GetReportByID(id int64) (*models.Report, error) {
	var report models.Report
	if err := s.DB.First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Service) GetReportsForMember(targetID int64, since time.Time) ([]models.Report, error) {
	var reports []models.Report
	err := s.DB.Where("target_id = ? AND created_at > ?", targetID, since).
		Find(&reports).Error
	return reports, err
}

// --- Pub/Sub та черга підбору ---

// roomChannel — ім'я Redis-каналу для широкомовлення в кімнату.
func roomChannel(roomID int64) string {
	return fmt.Sprintf("chat:%d", roomID)
}

const matchingStatusChannel = "matching:status"

// PublishToRoom публікує тіло повідомлення в Redis-канал кімнати.
func (s *Service) PublishToRoom(roomID int64, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, roomChannel(roomID), payload).Err()
}

// PublishQueueStatus публікує стан черги підбору в лобі-канал.
func (s *Service) PublishQueueStatus(status models.QueueStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, matchingStatusChannel, payload).Err()
}

// SubscribeChannels підписується на всі канали кімнат та лобі-канал.
func (s *Service) SubscribeChannels() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, "chat:*", matchingStatusChannel)
}

// AddMemberToQueue додає учасника до черги підбору в Redis.
func (s *Service) AddMemberToQueue(memberID int64) error {
	return s.Redis.SAdd(s.Ctx, "matching_queue", memberID).Err()
}

// RemoveMemberFromQueue видаляє учасника з черги підбору.
func (s *Service) RemoveMemberFromQueue(memberID int64) error {
	return s.Redis.SRem(s.Ctx, "matching_queue", memberID).Err()
}

// CountSearchingMembers повертає кількість учасників у черзі.
func (s *Service) CountSearchingMembers() (int64, error) {
	return s.Redis.SCard(s.Ctx, "matching_queue").Result()
}
