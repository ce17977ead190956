package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq" // потрібен для pq.StringArray
	"gorm.io/gorm"
)

// Member представляє учасника в системі.
// Містить ідентифікацію пристрою, профіль та поля репутації/бану.
type Member struct {
	ID        int64          `gorm:"primaryKey" json:"memberId"`
	DeviceID  string         `gorm:"uniqueIndex" json:"deviceId"` // UUID пристрою
	Nickname  string         `json:"nickname"`
	Gender    string         `json:"gender"`
	BirthYear int            `json:"birthYear"`
	Interests pq.StringArray `gorm:"type:text[]" json:"interests"` // теги для підбору

	ReputationScore int   `json:"-"`
	IsBlocked       bool  `json:"-"`
	BlockLevel      int   `json:"-"`
	BlockEndTime    int64 `json:"-"` // unix seconds
	LastBanDate     int64 `json:"-"` // unix seconds
}

// BeforeCreate — хук GORM, який викликається перед створенням запису.
// Генерує DeviceID, якщо клієнт його не надіслав.
func (m *Member) BeforeCreate(tx *gorm.DB) (err error) {
	if m.DeviceID == "" {
		m.DeviceID = uuid.New().String()
	}
	return
}
