package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/internal/utils"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

// UserHandler provides admin user management endpoints.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// List returns all users.
func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("created_at ASC").Find(&users).Error; err != nil {
		response.ServerError(c, "could not list users")
		return
	}
	response.Success(c, users)
}

type updateUserRequest struct {
	Nickname *string `json:"nickname"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// Update edits a user's profile, role or active flag.
func (h *UserHandler) Update(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}

	updates := map[string]interface{}{}
	if req.Nickname != nil {
		updates["nickname"] = *req.Nickname
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		if *req.Role != models.RoleSiteAdmin && *req.Role != models.RoleSiteUser {
			response.BadRequest(c, "role must be admin or user")
			return
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := utils.HashPassword(*req.Password)
		if err != nil {
			response.ServerError(c, "could not update password")
			return
		}
		updates["password"] = hashed
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			response.ServerError(c, "could not update user")
			return
		}
	}

	response.Success(c, user)
}

// Delete soft-deletes a user account.
func (h *UserHandler) Delete(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.db.Delete(&models.User{}, userID).Error; err != nil {
		response.ServerError(c, "could not delete user")
		return
	}
	response.Success(c, gin.H{"message": "user deleted"})
}
