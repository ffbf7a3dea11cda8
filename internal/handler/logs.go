package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/middleware"
	"github.com/guji3/ping/pkg/response"
)

// History returns the caller's alert records, newest first.
func (h *Handlers) History(c *gin.Context) {
	var logs []models.EmergencyLog
	err := h.db.Where("user_id = ?", middleware.UserID(c)).
		Order("created_at desc").Find(&logs).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to load history")
		return
	}
	response.Success(c, "emergency history", logs)
}

// LogDetail returns one of the caller's alert records.
func (h *Handlers) LogDetail(c *gin.Context) {
	var record models.EmergencyLog
	err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), middleware.UserID(c)).
		First(&record).Error
	if err != nil {
		response.Error(c, http.StatusNotFound, http.StatusNotFound, "record not found")
		return
	}
	response.Success(c, "emergency record", record)
}

// RecentCount reports how many of the caller's alerts fired in the
// trailing 24 hours.
func (h *Handlers) RecentCount(c *gin.Context) {
	var count int64
	since := time.Now().Add(-24 * time.Hour)
	err := h.db.Model(&models.EmergencyLog{}).
		Where("user_id = ? AND created_at >= ?", middleware.UserID(c), since).
		Count(&count).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to count records")
		return
	}
	response.Success(c, "recent emergency count", gin.H{"count": count, "since": since})
}
