package handlers

import (
	"net/http"

	"townhall/models"
	"townhall/services/user"
	"townhall/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the admin user-management surface plus the signed-in
// profile endpoint.
type UserHandler struct {
	Users user.UserService
}

func NewUserHandler(users user.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// GetProfileHandler returns the authenticated user's profile.
func (h *UserHandler) GetProfileHandler(c *gin.Context) {
	logger := getLogger(c)

	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.Users.GetByID(c.Request.Context(), uid)
	if err != nil || profile == nil {
		logger.Error("failed to get user profile", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to retrieve profile", "")
		return
	}

	c.JSON(http.StatusOK, profile)
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) CreateUserHandler(c *gin.Context) {
	logger := getLogger(c)

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	u := &models.User{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
	created, err := h.Users.Create(c.Request.Context(), u, req.Password)
	if err != nil {
		logger.Error("failed to create user", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Failed to create user", err.Error())
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *UserHandler) ListUsersHandler(c *gin.Context) {
	logger := getLogger(c)

	users, err := h.Users.GetAll(c.Request.Context())
	if err != nil {
		logger.Error("failed to list users", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to list users", "")
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUserHandler(c *gin.Context) {
	logger := getLogger(c)

	u, err := h.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		logger.Error("failed to fetch user", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch user", "")
		return
	}
	if u == nil {
		utils.JSONError(c, http.StatusNotFound, "User not found", "")
		return
	}

	c.JSON(http.StatusOK, u)
}

type updateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	logger := getLogger(c)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	u := &models.User{
		ID:       c.Param("id"),
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
	updated, err := h.Users.Update(c.Request.Context(), u)
	if err != nil {
		logger.Error("failed to update user", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update user", "")
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) DeleteUserHandler(c *gin.Context) {
	logger := getLogger(c)

	if err := h.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		logger.Error("failed to delete user", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to delete user", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
