package services

import (
	"errors"
	"strings"

	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

// FolderService manages a user's private folder tree.
type FolderService struct {
	db *gorm.DB
}

func NewFolderService(db *gorm.DB) *FolderService {
	return &FolderService{db: db}
}

type FolderRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

func (s *FolderService) Create(userID uint, req *FolderRequest) (*models.Folder, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("folder name is required")
	}

	if req.ParentID != nil {
		if _, err := s.findOwned(userID, *req.ParentID); err != nil {
			return nil, response.NewBadRequest("parent folder not found")
		}
	}

	folder := models.Folder{UserID: userID, ParentID: req.ParentID, Name: name}
	if err := s.db.Create(&folder).Error; err != nil {
		return nil, response.NewServerError("could not create folder")
	}
	return &folder, nil
}

func (s *FolderService) Rename(userID, folderID uint, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, response.NewBadRequest("folder name is required")
	}

	folder, err := s.findOwned(userID, folderID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(folder).Update("name", name).Error; err != nil {
		return nil, response.NewServerError("could not rename folder")
	}
	return folder, nil
}

// Delete removes a folder. Notes inside are detached, children are lifted to
// the deleted folder's parent.
func (s *FolderService) Delete(userID, folderID uint) error {
	folder, err := s.findOwned(userID, folderID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Note{}).
			Where("user_id = ? AND folder_id = ?", userID, folderID).
			Update("folder_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Folder{}).
			Where("user_id = ? AND parent_id = ?", userID, folderID).
			Update("parent_id", folder.ParentID).Error; err != nil {
			return err
		}
		return tx.Delete(folder).Error
	})
}

func (s *FolderService) List(userID uint) ([]models.Folder, error) {
	var folders []models.Folder
	if err := s.db.
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&folders).Error; err != nil {
		return nil, response.NewServerError("could not list folders")
	}
	return folders, nil
}

func (s *FolderService) findOwned(userID, folderID uint) (*models.Folder, error) {
	var folder models.Folder
	err := s.db.Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("folder not found")
		}
		return nil, response.NewServerError("could not load folder")
	}
	return &folder, nil
}
