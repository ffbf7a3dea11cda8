package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/response"
)

type registerRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	DeviceSerial string `json:"deviceSerial"`
}

// Register creates a user account, optionally binding a device serial.
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}

	var count int64
	h.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		response.Fail(c, "email already in use", nil)
		return
	}
	if req.DeviceSerial != "" {
		h.db.Model(&models.User{}).Where("device_serial = ?", req.DeviceSerial).Count(&count)
		if count > 0 {
			response.Fail(c, "device already registered", nil)
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Email:    req.Email,
		Password: string(hash),
		Name:     req.Name,
		Phone:    req.Phone,
	}
	if req.DeviceSerial != "" {
		user.DeviceSerial = &req.DeviceSerial
	}
	if err := h.db.Create(&user).Error; err != nil {
		h.log.Errorw("user create failed", "err", err)
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.log.Infow("user registered", "email", user.Email, "id", user.ID)
	response.Created(c, "registered", gin.H{
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a JWT.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}

	var user models.User
	err := h.db.Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusUnauthorized, http.StatusUnauthorized, "email or password does not match")
			return
		}
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "login failed")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		response.Error(c, http.StatusUnauthorized, http.StatusUnauthorized, "email or password does not match")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email)
	if err != nil {
		h.log.Errorw("token generation failed", "err", err)
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "login failed")
		return
	}

	h.log.Infow("login ok", "email", user.Email, "id", user.ID)
	response.Success(c, "login ok", gin.H{
		"token":        token,
		"userId":       user.ID,
		"email":        user.Email,
		"name":         user.Name,
		"phone":        user.Phone,
		"deviceSerial": user.DeviceSerial,
	})
}
