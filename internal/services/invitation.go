package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/logger"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

const (
	// Invitations are acceptable for seven days from creation.
	invitationTTL = 7 * 24 * time.Hour
	// 32 random bytes: tokens carry 256 bits of entropy and are only ever
	// transmitted in the invitation email, never logged.
	invitationTokenBytes = 32
	// A duplicate token is a transient collision, not a domain error.
	tokenCollisionRetries = 3
)

// InvitationService owns the invitation state machine: create, accept and
// cancel, plus the pending listings. Transitions are pending → accepted and
// pending → cancelled; both end states are final and rows are never deleted.
type InvitationService struct {
	db            *gorm.DB
	access        *AccessService
	emails        *EmailService
	mail          MailQueue
	notifications *NotificationService
	views         *ViewCache
}

func NewInvitationService(db *gorm.DB, access *AccessService, emails *EmailService, mail MailQueue, notifications *NotificationService, views *ViewCache) *InvitationService {
	return &InvitationService{
		db:            db,
		access:        access,
		emails:        emails,
		mail:          mail,
		notifications: notifications,
		views:         views,
	}
}

type CreateInvitationRequest struct {
	Email    string `json:"email" binding:"required"`
	UserType string `json:"user_type" binding:"required"` // client, contractor, employee, legal
}

// Create issues an invitation to join the project.
//
// When the project has no primary client yet, the invited type is client and
// an account with the email already exists, the pending state is bypassed
// entirely: the membership is created, the user becomes primary client and
// the invitation row is stored pre-accepted for audit continuity.
func (s *InvitationService) Create(inviterID, projectID uint, req *CreateInvitationRequest) (*models.Invitation, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, response.NewBadRequest("a valid email address is required")
	}
	if !models.ValidUserType(req.UserType) {
		return nil, response.NewBadRequest("user type must be client, contractor, employee or legal")
	}

	if err := s.access.RequirePermission(inviterID, projectID, PermUsersInvite); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}

	var invitee models.User
	inviteeExists := s.db.Where("email = ?", email).First(&invitee).Error == nil

	if inviteeExists {
		if project.OwnerUserID == invitee.ID {
			return nil, response.NewConflict("this user already owns the project")
		}
		var memberCount int64
		s.db.Model(&models.ProjectMembership{}).
			Where("project_id = ? AND user_id = ?", projectID, invitee.ID).
			Count(&memberCount)
		if memberCount > 0 {
			return nil, response.NewConflict("this user is already a member of the project")
		}
	}

	var pendingCount int64
	s.db.Model(&models.Invitation{}).
		Where("project_id = ? AND email = ? AND status = ? AND expires_at > ?",
			projectID, email, models.InvitationPending, time.Now()).
		Count(&pendingCount)
	if pendingCount > 0 {
		return nil, response.NewConflict("an invitation for this email is already pending")
	}

	if project.PrimaryClientID == nil && req.UserType == models.UserTypeClient && inviteeExists {
		return s.addAndDesignatePrimaryClient(&project, &invitee, inviterID, email)
	}

	invitation, err := s.createPending(&project, inviterID, email, req.UserType, inviteeExists, invitee.ID)
	if err != nil {
		return nil, err
	}

	s.sendInvitationMail(&project, invitation, inviterID)
	if inviteeExists {
		s.notifications.Notify(invitee.ID, "Project invitation", project.Name,
			fmt.Sprintf("You have been invited to join %s as %s.", project.Name, invitation.UserType),
			"/invitations")
	}
	s.invalidateViews(projectID, email)

	return invitation, nil
}

// addAndDesignatePrimaryClient is the one-step shortcut: membership,
// primary-client designation and an already-accepted invitation row are
// written in a single transaction; there is never a pending state to race.
func (s *InvitationService) addAndDesignatePrimaryClient(project *models.Project, invitee *models.User, inviterID uint, email string) (*models.Invitation, error) {
	token, err := generateInvitationToken()
	if err != nil {
		return nil, response.NewServerError("could not create invitation")
	}

	now := time.Now()
	invitation := models.Invitation{
		ProjectID:   project.ID,
		Email:       email,
		UserID:      &invitee.ID,
		UserType:    models.UserTypeClient,
		Token:       token,
		Status:      models.InvitationAccepted,
		ExpiresAt:   now.Add(invitationTTL),
		InvitedByID: inviterID,
		AcceptedAt:  &now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		membership := models.ProjectMembership{
			ProjectID: project.ID,
			UserID:    invitee.ID,
			UserType:  models.UserTypeClient,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("primary_client_id", invitee.ID).Error; err != nil {
			return err
		}
		return tx.Create(&invitation).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflict("this user is already a member of the project")
		}
		logger.Error().Err(err).Uint("project_id", project.ID).Msg("primary client shortcut failed")
		return nil, response.NewServerError("could not add the user to the project")
	}

	s.notifications.Notify(invitee.ID, "Added to project", project.Name,
		fmt.Sprintf("You were added to %s as its primary client.", project.Name),
		fmt.Sprintf("/projects/%d", project.ID))
	s.invalidateViews(project.ID, email)

	return &invitation, nil
}

func (s *InvitationService) createPending(project *models.Project, inviterID uint, email, userType string, inviteeExists bool, inviteeID uint) (*models.Invitation, error) {
	for attempt := 0; attempt < tokenCollisionRetries; attempt++ {
		token, err := generateInvitationToken()
		if err != nil {
			return nil, response.NewServerError("could not create invitation")
		}

		invitation := models.Invitation{
			ProjectID:   project.ID,
			Email:       email,
			UserType:    userType,
			Token:       token,
			Status:      models.InvitationPending,
			ExpiresAt:   time.Now().Add(invitationTTL),
			InvitedByID: inviterID,
		}
		if inviteeExists {
			invitation.UserID = &inviteeID
		}

		err = s.db.Create(&invitation).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		if err != nil {
			logger.Error().Err(err).Uint("project_id", project.ID).Msg("invitation insert failed")
			return nil, response.NewServerError("could not create invitation")
		}
		return &invitation, nil
	}
	return nil, response.NewServerError("could not create invitation")
}

func (s *InvitationService) sendInvitationMail(project *models.Project, invitation *models.Invitation, inviterID uint) {
	var inviter models.User
	s.db.First(&inviter, inviterID)

	subject, body := s.emails.BuildInvitationMail(project, &inviter, invitation)
	if err := s.mail.Enqueue(&MailTask{To: []string{invitation.Email}, Subject: subject, Body: body}); err != nil {
		logger.Error().Err(err).Uint("invitation_id", invitation.ID).Msg("failed to enqueue invitation mail")
	}
}

// AcceptResult is returned on successful acceptance. AlreadyMember marks the
// idempotent path: the caller was a member before this call, no membership
// was created and the outcome is still success.
type AcceptResult struct {
	Project       *models.Project    `json:"project"`
	Invitation    *models.Invitation `json:"invitation"`
	AlreadyMember bool               `json:"already_member"`
}

var errInvitationResolved = response.NewConflict("This invitation has already been used.")

// Accept redeems an invitation token for the authenticated user. The token
// lookup, the membership-create-or-skip and the status transition are
// applied as one transaction so two concurrent accepts of the same token
// cannot both succeed.
func (s *InvitationService) Accept(token string, userID uint) (*AcceptResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, response.NewBadRequest("invitation token is required")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, response.NewUnauthorized("authentication required")
	}

	var result AcceptResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		if err := tx.Where("token = ?", token).First(&invitation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("invitation not found")
			}
			return err
		}

		now := time.Now()

		if invitation.Status != models.InvitationPending {
			// A user retrying their own accepted invitation gets the
			// idempotent success, not an error: the caller may simply not
			// know whether their earlier request committed.
			if invitation.Status == models.InvitationAccepted &&
				invitation.UserID != nil && *invitation.UserID == user.ID {
				var project models.Project
				if err := tx.First(&project, invitation.ProjectID).Error; err != nil {
					return err
				}
				result = AcceptResult{Project: &project, Invitation: &invitation, AlreadyMember: true}
				return nil
			}
			return errInvitationResolved
		}

		if invitation.Expired(now) {
			return response.NewGone("This invitation has expired.")
		}

		if invitation.Email != "" && invitation.Email != user.Email {
			return response.NewForbidden("this invitation was issued for a different email address")
		}

		var existing int64
		tx.Model(&models.ProjectMembership{}).
			Where("project_id = ? AND user_id = ?", invitation.ProjectID, user.ID).
			Count(&existing)
		alreadyMember := existing > 0

		if !alreadyMember {
			membership := models.ProjectMembership{
				ProjectID: invitation.ProjectID,
				UserID:    user.ID,
				UserType:  invitation.UserType,
			}
			if err := tx.Create(&membership).Error; err != nil {
				return err
			}
		}

		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
			Updates(map[string]interface{}{
				"status":      models.InvitationAccepted,
				"user_id":     user.ID,
				"accepted_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race against a concurrent accept or cancel.
			return errInvitationResolved
		}

		invitation.Status = models.InvitationAccepted
		invitation.UserID = &user.ID
		invitation.AcceptedAt = &now

		var project models.Project
		if err := tx.First(&project, invitation.ProjectID).Error; err != nil {
			return err
		}

		result = AcceptResult{Project: &project, Invitation: &invitation, AlreadyMember: alreadyMember}
		return nil
	})
	if err != nil {
		if appErr := asAppError(err); appErr != nil {
			return nil, appErr
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent accept created the membership first; treat as resolved.
			return nil, errInvitationResolved
		}
		logger.Error().Err(err).Uint("user_id", userID).Msg("invitation accept failed")
		return nil, response.NewServerError("could not accept invitation")
	}

	s.notifyOwnerAccepted(&result, &user)
	s.invalidateViews(result.Project.ID, user.Email)

	return &result, nil
}

func (s *InvitationService) notifyOwnerAccepted(result *AcceptResult, user *models.User) {
	name := user.Nickname
	if name == "" {
		name = user.Username
	}

	var detail string
	if result.AlreadyMember {
		detail = fmt.Sprintf("%s accepted an invitation to %s (already a member).", name, result.Project.Name)
	} else {
		detail = fmt.Sprintf("%s joined %s as %s.", name, result.Project.Name, result.Invitation.UserType)
	}

	s.notifications.Notify(result.Project.OwnerUserID, "Invitation accepted", result.Project.Name,
		detail, fmt.Sprintf("/projects/%d/members", result.Project.ID))
}

// Cancel resolves a pending invitation to cancelled. Only the project owner
// (or a site admin) may cancel; anyone else sees the invitation as missing.
// No notification is sent to the invitee.
func (s *InvitationService) Cancel(requesterID, invitationID uint) error {
	var invitation models.Invitation
	if err := s.db.First(&invitation, invitationID).Error; err != nil {
		return response.NewNotFound("invitation not found")
	}

	role, err := s.access.EffectiveRole(requesterID, invitation.ProjectID)
	if err != nil {
		if appErr := asAppError(err); appErr != nil {
			return appErr
		}
		return response.NewServerError("authorization check failed")
	}
	if role != RoleOwner {
		return response.NewNotFound("invitation not found")
	}

	if invitation.Status != models.InvitationPending {
		return errInvitationResolved
	}

	res := s.db.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", invitationID, models.InvitationPending).
		Update("status", models.InvitationCancelled)
	if res.Error != nil {
		logger.Error().Err(res.Error).Uint("invitation_id", invitationID).Msg("invitation cancel failed")
		return response.NewServerError("could not cancel invitation")
	}
	if res.RowsAffected == 0 {
		return errInvitationResolved
	}

	s.invalidateViews(invitation.ProjectID, invitation.Email)
	return nil
}

// ListForProject returns the project's pending, unexpired invitations.
// Expired pending rows are filtered out, not mutated.
func (s *InvitationService) ListForProject(requesterID, projectID uint) ([]models.Invitation, error) {
	if err := s.access.RequirePermission(requesterID, projectID, PermUsersView); err != nil {
		return nil, err
	}

	var invitations []models.Invitation
	if err := s.db.
		Where("project_id = ? AND status = ? AND expires_at > ?",
			projectID, models.InvitationPending, time.Now()).
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, response.NewServerError("could not list invitations")
	}
	return invitations, nil
}

// ListForUser returns the caller's own pending, unexpired invitations,
// matched by email.
func (s *InvitationService) ListForUser(userID uint) ([]models.Invitation, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, response.NewUnauthorized("authentication required")
	}
	if user.Email == "" {
		return nil, nil
	}

	var invitations []models.Invitation
	if err := s.db.
		Where("email = ? AND status = ? AND expires_at > ?",
			user.Email, models.InvitationPending, time.Now()).
		Preload("Project").
		Order("created_at DESC").
		Find(&invitations).Error; err != nil {
		return nil, response.NewServerError("could not list invitations")
	}
	return invitations, nil
}

func (s *InvitationService) invalidateViews(projectID uint, email string) {
	s.views.InvalidateProjectUsers(projectID)
	s.views.InvalidateUserInvitations(email)
}

func generateInvitationToken() (string, error) {
	b := make([]byte, invitationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
