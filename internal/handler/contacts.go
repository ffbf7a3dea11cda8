package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/guji3/ping/internal/models"
	"github.com/guji3/ping/pkg/middleware"
	"github.com/guji3/ping/pkg/response"
)

type contactRequest struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email"`
	Priority int    `json:"priority" binding:"required,min=1"`
	Active   *bool  `json:"active"`
}

// AddContact registers one emergency contact for the caller.
func (h *Handlers) AddContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}

	userID := middleware.UserID(c)
	var count int64
	h.db.Model(&models.EmergencyContact{}).Where("user_id = ?", userID).Count(&count)
	if count >= models.MaxContactsPerUser {
		response.Fail(c, "at most 5 emergency contacts may be registered", nil)
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	contact := models.EmergencyContact{
		UserID:   userID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Priority: req.Priority,
		Active:   active,
	}
	if err := h.db.Create(&contact).Error; err != nil {
		h.log.Errorw("contact create failed", "err", err, "user", userID)
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to create contact")
		return
	}

	h.log.Infow("contact added", "user", userID, "contact", contact.Name, "phone", contact.Phone)
	response.Created(c, "contact added", contact)
}

// ListContacts returns all of the caller's contacts, priority ascending.
func (h *Handlers) ListContacts(c *gin.Context) {
	var contacts []models.EmergencyContact
	err := h.db.Where("user_id = ?", middleware.UserID(c)).
		Order("priority asc").Find(&contacts).Error
	if err != nil {
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	response.Success(c, "contacts", contacts)
}

// UpdateContact edits one of the caller's contacts.
func (h *Handlers) UpdateContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}

	var contact models.EmergencyContact
	err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), middleware.UserID(c)).
		First(&contact).Error
	if err != nil {
		response.Error(c, http.StatusNotFound, http.StatusNotFound, "contact not found")
		return
	}

	contact.Name = req.Name
	contact.Phone = req.Phone
	contact.Email = req.Email
	contact.Priority = req.Priority
	if req.Active != nil {
		contact.Active = *req.Active
	}
	if err := h.db.Save(&contact).Error; err != nil {
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to update contact")
		return
	}
	response.Success(c, "contact updated", contact)
}

// DeleteContact removes one of the caller's contacts.
func (h *Handlers) DeleteContact(c *gin.Context) {
	res := h.db.Where("id = ? AND user_id = ?", c.Param("id"), middleware.UserID(c)).
		Delete(&models.EmergencyContact{})
	if res.Error != nil {
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to delete contact")
		return
	}
	if res.RowsAffected == 0 {
		response.Error(c, http.StatusNotFound, http.StatusNotFound, "contact not found")
		return
	}
	response.Success(c, "contact deleted", nil)
}

var errContactNotOwned = errors.New("contact not owned by caller")

type reorderRequest struct {
	ContactIDs []uint `json:"contactIds" binding:"required,min=1"`
}

// ReorderContacts rewrites priorities 1..n following the submitted order.
// Contacts not owned by the caller abort the whole operation.
func (h *Handlers) ReorderContacts(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, err.Error(), nil)
		return
	}

	userID := middleware.UserID(c)
	err := h.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range req.ContactIDs {
			res := tx.Model(&models.EmergencyContact{}).
				Where("id = ? AND user_id = ?", id, userID).
				Update("priority", i+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errContactNotOwned
			}
		}
		return nil
	})
	if err != nil {
		if err == errContactNotOwned {
			response.Error(c, http.StatusForbidden, http.StatusForbidden, "contact does not belong to the caller")
			return
		}
		response.Error(c, http.StatusInternalServerError, http.StatusInternalServerError, "failed to reorder contacts")
		return
	}

	h.log.Infow("contacts reordered", "user", userID, "count", len(req.ContactIDs))
	response.Success(c, "priorities updated", nil)
}
