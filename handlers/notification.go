package handlers

import (
	"net/http"

	"townhall/models"
	"townhall/services/notification"
	"townhall/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the identity's live notification view and its
// mutation operations.
type NotificationHandler struct {
	Controllers *notification.Registry
}

func NewNotificationHandler(controllers *notification.Registry) *NotificationHandler {
	return &NotificationHandler{Controllers: controllers}
}

// ListHandler returns the current live view plus derived state. The last
// operation error is included as a field rather than a failure status, so
// the panel can render it inline.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctrl := h.Controllers.ForUser(uid)
	c.JSON(http.StatusOK, gin.H{
		"notifications": ctrl.Notifications(),
		"unreadCount":   ctrl.UnreadCount(),
		"pushEnabled":   ctrl.PushEnabled(),
		"loading":       ctrl.Loading(),
		"error":         ctrl.LastError(),
	})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctrl := h.Controllers.ForUser(uid)
	if err := ctrl.MarkAsRead(c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to mark notification as read", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unreadCount": ctrl.UnreadCount()})
}

func (h *NotificationHandler) DeleteHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctrl := h.Controllers.ForUser(uid)
	if err := ctrl.DeleteNotification(c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete notification", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unreadCount": ctrl.UnreadCount()})
}

func (h *NotificationHandler) ClearHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctrl := h.Controllers.ForUser(uid)
	if err := ctrl.ClearAll(); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to clear notifications", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications cleared"})
}

type testNotificationRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// SendTestHandler writes a diagnostic notification through the client-side
// insert path.
func (h *NotificationHandler) SendTestHandler(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req testNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	ctrl := h.Controllers.ForUser(uid)
	n := &models.Notification{
		UserID:  uid,
		Title:   req.Title,
		Message: req.Message,
		Type:    models.NotificationTypeTest,
	}
	if err := ctrl.SendNotification(n); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to send test notification", "")
		return
	}

	c.JSON(http.StatusCreated, n)
}
