package services

import (
	"errors"
	"strings"

	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

// CategoryService manages a user's note categories.
type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

type CategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

func (s *CategoryService) Create(userID uint, req *CategoryRequest) (*models.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("category name is required")
	}

	var count int64
	s.db.Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict("a category with this name already exists")
	}

	category := models.Category{UserID: userID, Name: name, Color: req.Color}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, response.NewServerError("could not create category")
	}
	return &category, nil
}

func (s *CategoryService) Update(userID, categoryID uint, req *CategoryRequest) (*models.Category, error) {
	category, err := s.findOwned(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.Color != "" {
		updates["color"] = req.Color
	}
	if len(updates) == 0 {
		return category, nil
	}

	if err := s.db.Model(category).Updates(updates).Error; err != nil {
		return nil, response.NewServerError("could not update category")
	}
	return category, nil
}

// Delete removes a category and detaches its notes.
func (s *CategoryService) Delete(userID, categoryID uint) error {
	category, err := s.findOwned(userID, categoryID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Note{}).
			Where("user_id = ? AND category_id = ?", userID, categoryID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
}

func (s *CategoryService) List(userID uint) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, response.NewServerError("could not list categories")
	}
	return categories, nil
}

func (s *CategoryService) findOwned(userID, categoryID uint) (*models.Category, error) {
	var category models.Category
	err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("category not found")
		}
		return nil, response.NewServerError("could not load category")
	}
	return &category, nil
}
