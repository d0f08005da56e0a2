package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/middleware"
	"github.com/lucaswan/paperdesk/internal/services"
	"github.com/lucaswan/paperdesk/pkg/response"
)

// NoteHandler provides note endpoints.
type NoteHandler struct {
	notes *services.NoteService
}

func NewNoteHandler(notes *services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// List returns the caller's own notes, optionally filtered by folder or
// category query parameters.
func (h *NoteHandler) List(c *gin.Context) {
	var folderID, categoryID *uint
	if v := c.Query("folder_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			u := uint(id)
			folderID = &u
		}
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			u := uint(id)
			categoryID = &u
		}
	}

	notes, err := h.notes.ListPersonal(middleware.GetUserID(c), folderID, categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, notes)
}

// ListForProject returns a project's shared notes.
func (h *NoteHandler) ListForProject(c *gin.Context) {
	projectID, ok := paramID(c, "id")
	if !ok {
		return
	}

	notes, err := h.notes.ListForProject(middleware.GetUserID(c), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, notes)
}

// Create creates a note.
func (h *NoteHandler) Create(c *gin.Context) {
	var req services.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.notes.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Get returns a single note.
func (h *NoteHandler) Get(c *gin.Context) {
	noteID, ok := paramID(c, "id")
	if !ok {
		return
	}

	note, err := h.notes.Get(middleware.GetUserID(c), noteID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, note)
}

// Update edits a note.
func (h *NoteHandler) Update(c *gin.Context) {
	noteID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.notes.Update(middleware.GetUserID(c), noteID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, note)
}

// Delete removes a note.
func (h *NoteHandler) Delete(c *gin.Context) {
	noteID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.notes.Delete(middleware.GetUserID(c), noteID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "note deleted"})
}
