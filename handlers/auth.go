package handlers

import (
	"errors"
	"net/http"

	"townhall/services/notification"
	"townhall/services/user"
	"townhall/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves login/logout. Login is also the notification session
// start: the identity's controller is constructed and subscribed here.
type AuthHandler struct {
	Users       user.UserService
	Controllers *notification.Registry
}

func NewAuthHandler(users user.UserService, controllers *notification.Registry) *AuthHandler {
	return &AuthHandler{Users: users, Controllers: controllers}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) LoginHandler(c *gin.Context) {
	logger := getLogger(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	u, token, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid email or password", "")
			return
		}
		logger.Error("login failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Login failed", "")
		return
	}

	h.Controllers.ForUser(u.ID)

	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	logger := getLogger(c)

	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if tokenVal, exists := c.Get("authToken"); exists {
		if token, ok := tokenVal.(string); ok && token != "" {
			if err := h.Users.SignOut(c.Request.Context(), token); err != nil {
				logger.Warn("token revocation failed", zap.Error(err))
			}
		}
	}

	// Session end: tear down the live notification subscription.
	h.Controllers.Release(uid)

	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
