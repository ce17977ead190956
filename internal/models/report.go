package models

import "time"

// Report — скарга одного учасника кімнати на іншого.
type Report struct {
	ID         int64  `gorm:"primaryKey" json:"reportId"`
	ChatRoomID int64  `gorm:"not null;index" json:"chatRoomId"`
	ReporterID int64  `gorm:"not null" json:"reporterId"`
	TargetID   int64  `gorm:"not null;index" json:"targetId"`
	ReportType string `gorm:"type:text;not null" json:"reportType"` // "Low", "Medium", "Critical"
	Reason     string `gorm:"type:text" json:"reason"`
	Status     string `gorm:"type:text;not null" json:"status"` // "new", "confirmed", "dismissed"
	CreatedAt  time.Time
}
