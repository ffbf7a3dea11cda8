package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/middleware"
	"github.com/guji3/ping/pkg/response"
)

// Me returns the authenticated user's profile.
func (h *Handlers) Me(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, middleware.UserID(c)).Error; err != nil {
		response.Error(c, http.StatusNotFound, http.StatusNotFound, "user not found")
		return
	}
	response.Success(c, "profile", user)
}

type updateDeviceRequest struct {
	DeviceSerial string `json:"deviceSerial" binding:"required"`
}

// UpdateDevice binds or replaces the caller's device serial. A serial held
// by another account is rejected.
func (h *Handlers) UpdateDevice(c *gin.Context) {
	var req updateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}

	userID := middleware.UserID(c)
	var other models.User
	err := h.db.Where("device_serial = ? AND id <> ?", req.DeviceSerial, userID).First(&other).Error
	if err == nil {
		response.Error(c, http.StatusConflict, http.StatusConflict, "device already registered to another user")
		return
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).
		Update("device_serial", req.DeviceSerial).Error; err != nil {
		h.log.Errorw("device update failed", "err", err, "user", userID)
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to update device")
		return
	}

	h.log.Infow("device bound", "user", userID, "serial", req.DeviceSerial)
	response.Success(c, "device updated", gin.H{"deviceSerial": req.DeviceSerial})
}
