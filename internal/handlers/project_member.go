package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/middleware"
	"github.com/lucaswan/paperdesk/internal/services"
	"github.com/lucaswan/paperdesk/pkg/response"
)

// ProjectMemberHandler provides membership endpoints. Members join through
// invitations only; this handler lists, removes and designates the primary
// client.
type ProjectMemberHandler struct {
	members *services.MemberService
}

func NewProjectMemberHandler(members *services.MemberService) *ProjectMemberHandler {
	return &ProjectMemberHandler{members: members}
}

// List returns all members of a project.
func (h *ProjectMemberHandler) List(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	members, err := h.members.List(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, members)
}

// Remove removes a member from a project.
func (h *ProjectMemberHandler) Remove(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userID")
	if !ok {
		return
	}

	if err := h.members.Remove(middleware.GetUserID(c), projectID, userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "member removed"})
}

type setPrimaryClientRequest struct {
	UserID *uint `json:"user_id"` // null clears the designation
}

// SetPrimaryClient sets or clears the project's primary client.
func (h *ProjectMemberHandler) SetPrimaryClient(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req setPrimaryClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.members.SetPrimaryClient(middleware.GetUserID(c), projectID, req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}
