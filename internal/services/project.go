package services

import (
	"strings"

	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/logger"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

// ProjectService manages project records. Ownership is set at creation and
// never changes; member administration lives in MemberService and
// InvitationService.
type ProjectService struct {
	db     *gorm.DB
	access *AccessService
}

func NewProjectService(db *gorm.DB, access *AccessService) *ProjectService {
	return &ProjectService{db: db, access: access}
}

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Create creates a project owned by the caller.
func (s *ProjectService) Create(ownerID uint, req *CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("project name is required")
	}

	project := models.Project{
		Name:        name,
		Description: req.Description,
		OwnerUserID: ownerID,
	}
	if err := s.db.Create(&project).Error; err != nil {
		logger.Error().Err(err).Msg("project create failed")
		return nil, response.NewServerError("could not create project")
	}
	return &project, nil
}

// Get returns a project the caller may view. Outsiders get a 404, not a 403.
func (s *ProjectService) Get(requesterID, projectID uint) (*models.Project, error) {
	if err := s.access.RequirePermission(requesterID, projectID, PermDetailsView); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.Preload("Owner").First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}
	return &project, nil
}

// Update edits the project's name and description.
func (s *ProjectService) Update(requesterID, projectID uint, req *UpdateProjectRequest) (*models.Project, error) {
	if err := s.access.RequirePermission(requesterID, projectID, PermDetailsUpdate); err != nil {
		return nil, err
	}

	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, response.NewNotFound("project not found")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, response.NewBadRequest("project name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return &project, nil
	}

	if err := s.db.Model(&project).Updates(updates).Error; err != nil {
		logger.Error().Err(err).Uint("project_id", projectID).Msg("project update failed")
		return nil, response.NewServerError("could not update project")
	}
	return &project, nil
}

// Delete soft-deletes a project. Owner only.
func (s *ProjectService) Delete(requesterID, projectID uint) error {
	if err := s.access.RequirePermission(requesterID, projectID, PermProjectDelete); err != nil {
		return err
	}

	if err := s.db.Delete(&models.Project{}, projectID).Error; err != nil {
		logger.Error().Err(err).Uint("project_id", projectID).Msg("project delete failed")
		return response.NewServerError("could not delete project")
	}
	return nil
}

// List returns the projects the caller owns or is a member of. Site admins
// see every project.
func (s *ProjectService) List(requesterID uint) ([]models.Project, error) {
	admin, err := s.access.isSiteAdmin(requesterID)
	if err != nil {
		if appErr := asAppError(err); appErr != nil {
			return nil, appErr
		}
		return nil, response.NewServerError("could not list projects")
	}

	var projects []models.Project
	q := s.db.Preload("Owner").Order("created_at DESC")
	if !admin {
		q = q.Where(
			"owner_user_id = ? OR id IN (?)",
			requesterID,
			s.db.Model(&models.ProjectMembership{}).Select("project_id").Where("user_id = ?", requesterID),
		)
	}
	if err := q.Find(&projects).Error; err != nil {
		return nil, response.NewServerError("could not list projects")
	}
	return projects, nil
}
