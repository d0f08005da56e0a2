package services

import (
	"errors"
	"strings"

	"github.com/lucaswan/paperdesk/internal/models"
	"github.com/lucaswan/paperdesk/pkg/logger"
	"github.com/lucaswan/paperdesk/pkg/response"
	"gorm.io/gorm"
)

// NoteService manages notes. A note without a project is private to its
// author; a project-attached note is visible and editable through the
// project permission table.
type NoteService struct {
	db     *gorm.DB
	access *AccessService
}

func NewNoteService(db *gorm.DB, access *AccessService) *NoteService {
	return &NoteService{db: db, access: access}
}

type CreateNoteRequest struct {
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content"`
	ProjectID  *uint  `json:"project_id"`
	FolderID   *uint  `json:"folder_id"`
	CategoryID *uint  `json:"category_id"`
}

type UpdateNoteRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	FolderID   *uint   `json:"folder_id"`
	CategoryID *uint   `json:"category_id"`
	Pinned     *bool   `json:"pinned"`
}

func (s *NoteService) Create(userID uint, req *CreateNoteRequest) (*models.Note, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, response.NewBadRequest("note title is required")
	}

	if req.ProjectID != nil {
		if err := s.access.RequirePermission(userID, *req.ProjectID, PermNotesEdit); err != nil {
			return nil, err
		}
	}

	note := models.Note{
		UserID:     userID,
		ProjectID:  req.ProjectID,
		FolderID:   req.FolderID,
		CategoryID: req.CategoryID,
		Title:      title,
		Content:    req.Content,
	}
	if err := s.db.Create(&note).Error; err != nil {
		logger.Error().Err(err).Msg("note create failed")
		return nil, response.NewServerError("could not create note")
	}
	return &note, nil
}

// Get returns a note if the caller authored it or holds notes.view on its
// project. Either way the failure mode is a 404.
func (s *NoteService) Get(userID, noteID uint) (*models.Note, error) {
	note, err := s.find(noteID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(userID, note, PermNotesView); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Update(userID, noteID uint, req *UpdateNoteRequest) (*models.Note, error) {
	note, err := s.find(noteID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(userID, note, PermNotesEdit); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, response.NewBadRequest("note title cannot be empty")
		}
		updates["title"] = title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.FolderID != nil {
		updates["folder_id"] = *req.FolderID
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Pinned != nil {
		updates["pinned"] = *req.Pinned
	}
	if len(updates) == 0 {
		return note, nil
	}

	if err := s.db.Model(note).Updates(updates).Error; err != nil {
		logger.Error().Err(err).Uint("note_id", noteID).Msg("note update failed")
		return nil, response.NewServerError("could not update note")
	}
	return note, nil
}

func (s *NoteService) Delete(userID, noteID uint) error {
	note, err := s.find(noteID)
	if err != nil {
		return err
	}
	if err := s.authorize(userID, note, PermNotesEdit); err != nil {
		return err
	}

	if err := s.db.Delete(note).Error; err != nil {
		logger.Error().Err(err).Uint("note_id", noteID).Msg("note delete failed")
		return response.NewServerError("could not delete note")
	}
	return nil
}

// ListPersonal returns the caller's own notes, optionally filtered by folder
// or category.
func (s *NoteService) ListPersonal(userID uint, folderID, categoryID *uint) ([]models.Note, error) {
	q := s.db.Where("user_id = ?", userID)
	if folderID != nil {
		q = q.Where("folder_id = ?", *folderID)
	}
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}

	var notes []models.Note
	if err := q.Order("pinned DESC, updated_at DESC").Find(&notes).Error; err != nil {
		return nil, response.NewServerError("could not list notes")
	}
	return notes, nil
}

// ListForProject returns a project's shared notes.
func (s *NoteService) ListForProject(userID, projectID uint) ([]models.Note, error) {
	if err := s.access.RequirePermission(userID, projectID, PermNotesView); err != nil {
		return nil, err
	}

	var notes []models.Note
	if err := s.db.
		Where("project_id = ?", projectID).
		Order("pinned DESC, updated_at DESC").
		Find(&notes).Error; err != nil {
		return nil, response.NewServerError("could not list notes")
	}
	return notes, nil
}

func (s *NoteService) find(noteID uint) (*models.Note, error) {
	var note models.Note
	if err := s.db.First(&note, noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("note not found")
		}
		return nil, response.NewServerError("could not load note")
	}
	return &note, nil
}

// authorize gates access to a note. The author always passes; everyone else
// needs the project permission, and a non-project note has no one else.
func (s *NoteService) authorize(userID uint, note *models.Note, perm Permission) error {
	if note.UserID == userID {
		return nil
	}
	if note.ProjectID == nil {
		return response.NewNotFound("note not found")
	}
	if err := s.access.RequirePermission(userID, *note.ProjectID, perm); err != nil {
		if appErr := asAppError(err); appErr != nil && appErr.HTTPStatus == 404 {
			// Do not reveal that the note exists on a hidden project.
			return response.NewNotFound("note not found")
		}
		return err
	}
	return nil
}
