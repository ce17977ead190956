package handler

import (
	"errors"
	"net/http"

	"amoura/backend/internal/models"
	"amoura/backend/internal/report"
	"amoura/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

type reportRequest struct {
	ChatRoomID int64  `json:"chatRoomId"`
	TargetID   int64  `json:"targetId"`
	ReportType string `json:"reportType"`
	Reason     string `json:"reason"`
}

// CreateReport приймає скаргу на учасника спільної кімнати.
func (h *Handler) CreateReport(c *gin.Context) {
	id := memberID(c)

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.TargetID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot report yourself"})
		return
	}
	if report.Weight(req.ReportType) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown report type"})
		return
	}

	room, err := h.Storage.GetRoomByID(req.ChatRoomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room"})
		return
	}
	// Скаржитися можна лише на співмешканця по кімнаті
	if !room.HasMember(id) || !room.HasMember(req.TargetID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this room"})
		return
	}

	rec := models.Report{
		ChatRoomID: req.ChatRoomID,
		ReporterID: id,
		TargetID:   req.TargetID,
		ReportType: req.ReportType,
		Reason:     req.Reason,
		Status:     "new",
	}
	if err := h.Reports.HandleReport(&rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save report"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"reportId": rec.ID, "status": rec.Status})
}
