package handlers

import (
	"errors"
	"net/http"
	"time"

	"townhall/models"
	"townhall/services/appointment"
	"townhall/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler serves the appointment CRUD surface. Role gating lives
// in the route registration; mayors additionally only see what is assigned
// to them.
type AppointmentHandler struct {
	Service appointment.AppointmentService
}

func NewAppointmentHandler(svc appointment.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Service: svc}
}

type createAppointmentRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description"`
	When          time.Time `json:"when" binding:"required"`
	AssignedToUID string    `json:"assignedToUid" binding:"required"`
}

func (h *AppointmentHandler) CreateHandler(c *gin.Context) {
	logger := getLogger(c)

	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	appt := &models.Appointment{
		Title:         req.Title,
		Description:   req.Description,
		When:          req.When,
		CreatedByUID:  uid,
		AssignedToUID: req.AssignedToUID,
	}

	created, err := h.Service.Create(c.Request.Context(), appt)
	if err != nil {
		logger.Error("failed to create appointment", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to create appointment", "")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *AppointmentHandler) ListHandler(c *gin.Context) {
	logger := getLogger(c)

	uid, _ := currentUserID(c)

	var (
		appts []models.Appointment
		err   error
	)
	if currentUserRole(c) == models.RoleMayor {
		appts, err = h.Service.ListByAssignee(c.Request.Context(), uid)
	} else {
		appts, err = h.Service.List(c.Request.Context())
	}
	if err != nil {
		logger.Error("failed to list appointments", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list appointments", "")
		return
	}

	c.JSON(http.StatusOK, appts)
}

func (h *AppointmentHandler) GetHandler(c *gin.Context) {
	logger := getLogger(c)

	appt, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Appointment not found", "")
			return
		}
		logger.Error("failed to fetch appointment", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch appointment", "")
		return
	}

	uid, _ := currentUserID(c)
	if currentUserRole(c) == models.RoleMayor && appt.AssignedToUID != uid {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions for this action"})
		return
	}

	c.JSON(http.StatusOK, appt)
}

type updateAppointmentRequest struct {
	Title         string    `json:"title" binding:"required"`
	Description   string    `json:"description"`
	When          time.Time `json:"when" binding:"required"`
	Status        string    `json:"status" binding:"required"`
	AssignedToUID string    `json:"assignedToUid" binding:"required"`
}

func (h *AppointmentHandler) UpdateHandler(c *gin.Context) {
	logger := getLogger(c)

	var req updateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	appt := &models.Appointment{
		ID:            c.Param("id"),
		Title:         req.Title,
		Description:   req.Description,
		When:          req.When,
		Status:        req.Status,
		AssignedToUID: req.AssignedToUID,
	}

	updated, err := h.Service.Update(c.Request.Context(), appt)
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Appointment not found", "")
			return
		}
		logger.Error("failed to update appointment", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update appointment", "")
		return
	}

	c.JSON(http.StatusOK, updated)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AppointmentHandler) UpdateStatusHandler(c *gin.Context) {
	logger := getLogger(c)

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	updated, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Appointment not found", "")
			return
		}
		logger.Error("failed to update appointment status", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update status", "")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *AppointmentHandler) DeleteHandler(c *gin.Context) {
	logger := getLogger(c)

	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, appointment.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Appointment not found", "")
			return
		}
		logger.Error("failed to delete appointment", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete appointment", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted"})
}
