package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guji3/ping/internal/emergency"
	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/response"
)

// maxAudioBytes bounds the uploaded recording.
const maxAudioBytes = 10 << 20

// Alert receives an SOS from a wearable device and runs the full
// response pipeline. The device authenticates by serial number, not JWT.
func (h *Handlers) Alert(c *gin.Context) {
	serial := c.PostForm("deviceSerial")
	if serial == "" {
		response.Fail(c, "deviceSerial is required", nil)
		return
	}
	lat, err := strconv.ParseFloat(c.PostForm("latitude"), 64)
	if err != nil {
		response.Fail(c, "latitude must be a number", nil)
		return
	}
	lon, err := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if err != nil {
		response.Fail(c, "longitude must be a number", nil)
		return
	}

	fileHeader, err := c.FormFile("audioFile")
	if err != nil {
		response.Fail(c, "audioFile is required", nil)
		return
	}
	if fileHeader.Size > maxAudioBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "audio file exceeds 10MB")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, "could not read audio file", nil)
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		response.Fail(c, "could not read audio file", nil)
		return
	}

	req := emergency.AlertRequest{
		DeviceSerial: serial,
		Latitude:     lat,
		Longitude:    lon,
		Audio:        audio,
		AudioName:    fileHeader.Filename,
	}

	resp, err := h.pipeline.Process(c.Request.Context(), req)
	if err != nil {
		h.writePipelineError(c, err)
		return
	}
	response.Success(c, "alert processed", resp)
}

type testAlertRequest struct {
	DeviceSerial string  `json:"deviceSerial" binding:"required"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// TestAlert exercises the pipeline without audio. The analyzer is
// skipped, contacts still receive a message and the run is audited.
func (h *Handlers) TestAlert(c *gin.Context) {
	var req testAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}

	resp, err := h.pipeline.Process(c.Request.Context(), emergency.AlertRequest{
		DeviceSerial: req.DeviceSerial,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Test:         true,
	})
	if err != nil {
		h.writePipelineError(c, err)
		return
	}
	response.Success(c, "test alert processed", resp)
}

// Status lets a device poll one of its own alert records. The record is
// matched by log id plus the serial that raised it.
func (h *Handlers) Status(c *gin.Context) {
	serial := c.Query("deviceSerial")
	if serial == "" {
		response.Fail(c, "deviceSerial is required", nil)
		return
	}
	var record models.EmergencyLog
	err := h.db.Where("id = ? AND device_serial = ?", c.Param("logId"), serial).
		First(&record).Error
	if err != nil {
		response.Error(c, http.StatusNotFound, http.StatusNotFound, "alert not found")
		return
	}
	response.Success(c, "alert status", record)
}

func (h *Handlers) writePipelineError(c *gin.Context, err error) {
	switch {
	case emergency.IsDeviceNotRegistered(err):
		response.Error(c, http.StatusNotFound, emergency.CodeDeviceNotRegistered, "device is not registered")
	case emergency.IsNoContactsConfigured(err):
		response.Error(c, http.StatusConflict, emergency.CodeNoContactsConfigured, "no emergency contacts configured")
	case emergency.IsTranscriptionFailed(err):
		response.Error(c, http.StatusBadGateway, emergency.CodeTranscriptionFailed, "audio transcription failed")
	case emergency.IsAuditPersistFailed(err):
		response.Error(c, http.StatusInternalServerError, emergency.CodeAuditPersistFailed, "failed to persist alert record")
	default:
		h.log.Errorw("alert processing failed", "err", err)
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "alert processing failed")
	}
}
