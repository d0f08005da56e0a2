package services

import (
	"errors"
	"time"

	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

// AccessService derives project roles from persisted state and authorizes
// operations against the permission table.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// ResolveRole derives the user's role on a project. First match wins:
// missing project, owner, membership row, pending unexpired invitation for
// the user's email, none. The result is computed fresh on every call — role
// can change between any two actions and staleness here is a security
// defect, so there is no caching layer in front of this.
func (s *AccessService) ResolveRole(userID, projectID uint) Role {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return RoleNone
	}

	if project.OwnerUserID == userID {
		return RoleOwner
	}

	var memberships int64
	s.db.Model(&models.ProjectMembership{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&memberships)
	if memberships > 0 {
		return RoleMember
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil || user.Email == "" {
		return RoleNone
	}

	var pending int64
	s.db.Model(&models.Invitation{}).
		Where("project_id = ? AND email = ? AND status = ? AND expires_at > ?",
			projectID, user.Email, models.InvitationPending, time.Now()).
		Count(&pending)
	if pending > 0 {
		return RoleInvited
	}

	return RoleNone
}

// isSiteAdmin reports whether the user holds the global manage-all-projects
// capability. This is checked before the fine-grained resolver runs.
func (s *AccessService) isSiteAdmin(userID uint) (bool, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, response.NewUnauthorized("authentication required")
		}
		return false, err
	}
	if !user.IsActive {
		return false, response.NewUnauthorized("account is disabled")
	}
	return user.Role == models.RoleSiteAdmin, nil
}

// EffectiveRole is ResolveRole with the site-admin override applied: admins
// act as owner-equivalent for the call without any membership or ownership
// state being created.
func (s *AccessService) EffectiveRole(userID, projectID uint) (Role, error) {
	admin, err := s.isSiteAdmin(userID)
	if err != nil {
		return RoleNone, err
	}
	if admin {
		return RoleOwner, nil
	}
	return s.ResolveRole(userID, projectID), nil
}

// RequirePermission succeeds iff the caller holds at least one of the
// requested permissions on the project (or is a site admin). On denial the
// error is a 404 when every requested permission is member-tier or above,
// masking the project's existence; otherwise a 403.
func (s *AccessService) RequirePermission(userID, projectID uint, perms ...Permission) error {
	admin, err := s.isSiteAdmin(userID)
	if err != nil {
		if appErr := asAppError(err); appErr != nil {
			return appErr
		}
		return response.NewServerError("authorization check failed")
	}
	if admin {
		return nil
	}

	role := s.ResolveRole(userID, projectID)
	for _, p := range perms {
		if RoleHas(role, p) {
			return nil
		}
	}

	if masksAsNotFound(perms) {
		return response.NewNotFound("project not found")
	}
	return response.NewForbidden("you do not have permission to perform this action")
}

// asAppError unwraps err to an *response.AppError, or nil.
func asAppError(err error) *response.AppError {
	var appErr *response.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
