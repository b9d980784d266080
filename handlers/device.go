package handlers

import (
	"net/http"

	deviceRepo "townhall/database/repository/device"
	"townhall/services/notification"
	"townhall/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceHandler serves the device-token registry. Registration goes through
// the controller's push-enrollment stages so the push-enabled flag stays in
// step with the registry.
type DeviceHandler struct {
	Devices     deviceRepo.DeviceTokenRepository
	Controllers *notification.Registry
}

func NewDeviceHandler(devices deviceRepo.DeviceTokenRepository, controllers *notification.Registry) *DeviceHandler {
	return &DeviceHandler{Devices: devices, Controllers: controllers}
}

type registerDeviceRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"`
}

func (h *DeviceHandler) RegisterHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	ctrl := h.Controllers.ForUser(uid)
	enabled := ctrl.SetupPushNotifications(c.Request.Context(), req.Token, req.Platform)

	c.JSON(http.StatusOK, gin.H{"pushEnabled": enabled})
}

func (h *DeviceHandler) ListHandler(c *gin.Context) {
	logger := getLogger(c)

	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tokens, err := h.Devices.GetByUser(uid)
	if err != nil {
		logger.Error("failed to list device tokens", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list devices", "")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

func (h *DeviceHandler) DeleteHandler(c *gin.Context) {
	logger := getLogger(c)

	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.Devices.Delete(uid, c.Param("token")); err != nil {
		logger.Warn("failed to delete device token", zap.Error(err))
		utils.JSONError(c, http.StatusNotFound, "Device token not found", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device token removed"})
}
