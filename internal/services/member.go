package services

import (
	"errors"
	"fmt"

	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/logger"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

// MemberService manages project memberships and the primary-client
// designation. Membership rows are created only through the invitation
// service; this service lists, removes and designates.
type MemberService struct {
	db            *gorm.DB
	access        *AccessService
	emails        *EmailService
	mail          MailQueue
	notifications *NotificationService
	views         *ViewCache
}

func NewMemberService(db *gorm.DB, access *AccessService, emails *EmailService, mail MailQueue, notifications *NotificationService, views *ViewCache) *MemberService {
	return &MemberService{
		db:            db,
		access:        access,
		emails:        emails,
		mail:          mail,
		notifications: notifications,
		views:         views,
	}
}

// List returns the project's memberships with their user records.
func (s *MemberService) List(requesterID, projectID uint) ([]models.ProjectMembership, error) {
	if err := s.access.RequirePermission(requesterID, projectID, PermUsersView); err != nil {
		return nil, err
	}

	var members []models.ProjectMembership
	if err := s.db.
		Where("project_id = ?", projectID).
		Preload("User").
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, response.NewServerError("could not list members")
	}
	return members, nil
}

// Remove hard-deletes a membership. If the removed user was the project's
// primary client the designation is cleared in the same transaction, so the
// invariant that the primary client is always a current member never breaks.
func (s *MemberService) Remove(requesterID, projectID, userID uint) error {
	if err := s.access.RequirePermission(requesterID, projectID, PermUsersRemove); err != nil {
		return err
	}

	var membership models.ProjectMembership
	if err := s.db.
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error; err != nil {
		return response.NewNotFound("member not found")
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return response.NewNotFound("project not found")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if project.PrimaryClientID != nil && *project.PrimaryClientID == userID {
			if err := tx.Model(&models.Project{}).
				Where("id = ?", projectID).
				Update("primary_client_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&membership).Error
	})
	if err != nil {
		logger.Error().Err(err).Uint("project_id", projectID).Uint("user_id", userID).Msg("member removal failed")
		return response.NewServerError("could not remove member")
	}

	s.notifyRemoved(&project, userID)
	s.views.InvalidateProjectUsers(projectID)

	return nil
}

func (s *MemberService) notifyRemoved(project *models.Project, userID uint) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return
	}

	s.notifications.Notify(user.ID, "Removed from project", project.Name,
		fmt.Sprintf("You are no longer a member of %s.", project.Name), "")

	if user.Email == "" {
		return
	}
	subject, body := s.emails.BuildRemovalMail(project, &user)
	if err := s.mail.Enqueue(&MailTask{To: []string{user.Email}, Subject: subject, Body: body}); err != nil {
		logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to enqueue removal mail")
	}
}

// SetPrimaryClient updates the project's primary-client designation.
// Passing a nil userID clears it, which is always legal. Setting it requires
// the target to hold a client-type membership on the project.
func (s *MemberService) SetPrimaryClient(requesterID, projectID uint, userID *uint) (*models.Project, error) {
	if err := s.access.RequirePermission(requesterID, projectID, PermDetailsUpdate); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}

	if userID != nil {
		var membership models.ProjectMembership
		err := s.db.
			Where("project_id = ? AND user_id = ?", projectID, *userID).
			First(&membership).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, response.NewNotFound("member not found")
			}
			return nil, response.NewServerError("could not look up member")
		}
		if membership.UserType != models.UserTypeClient {
			return nil, response.NewUnprocessable("only a client member can be designated as primary client")
		}
	}

	if err := s.db.Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("primary_client_id", userID).Error; err != nil {
		logger.Error().Err(err).Uint("project_id", projectID).Msg("primary client update failed")
		return nil, response.NewServerError("could not update primary client")
	}

	project.PrimaryClientID = userID
	s.views.InvalidateProjectUsers(projectID)

	return &project, nil
}
