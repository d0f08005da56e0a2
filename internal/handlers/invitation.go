package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/middleware"
	"github.com/lucaswan/paperdesk/internal/services"
	"github.com/lucaswan/paperdesk/pkg/response"
)

// InvitationHandler provides invitation lifecycle endpoints.
type InvitationHandler struct {
	invitations *services.InvitationService
}

func NewInvitationHandler(invitations *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// Create issues an invitation for a project.
func (h *InvitationHandler) Create(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	invitation, err := h.invitations.Create(middleware.GetUserID(c), projectID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invitation)
}

// ListForProject returns a project's pending invitations.
func (h *InvitationHandler) ListForProject(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	invitations, err := h.invitations.ListForProject(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invitations)
}

// ListMine returns the caller's pending invitations.
func (h *InvitationHandler) ListMine(c *gin.Context) {
	invitations, err := h.invitations.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, invitations)
}

type acceptRequest struct {
	Token string `json:"token" binding:"required"`
}

// Accept redeems an invitation token for the authenticated caller.
func (h *InvitationHandler) Accept(c *gin.Context) {
	var req acceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.invitations.Accept(req.Token, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel resolves a pending invitation to cancelled.
func (h *InvitationHandler) Cancel(c *gin.Context) {
	invitationID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.invitations.Cancel(middleware.GetUserID(c), invitationID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "invitation cancelled"})
}
