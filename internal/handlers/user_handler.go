package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"powerpay-gateway/internal/middleware"
	"powerpay-gateway/internal/services"
	"powerpay-gateway/pkg/common"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes account administration. All routes are ADMIN-gated.
type UserHandler struct {
	Users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdBy := c.GetUint(middleware.ContextUserID)
	user, err := h.Users.Create(services.CreateUserDTO{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Role:      req.Role,
		CreatedBy: &createdBy,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUser) {
			c.JSON(http.StatusConflict, gin.H{"error": "Username or email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) List(c *gin.Context) {
	limit := intQuery(c, "limit", 0)
	offset := intQuery(c, "offset", 0)

	users, err := h.Users.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(users, "Users retrieved"))
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	user, err := h.Users.FindByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE SUSPENDED"`
}

func (h *UserHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Users.SetStatus(uint(id), req.Status); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Status updated"})
}
