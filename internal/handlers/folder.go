package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/middleware"
	"github.com/lucaswan/paperdesk/internal/services"
	"github.com/lucaswan/paperdesk/pkg/response"
)

// FolderHandler provides folder endpoints.
type FolderHandler struct {
	folders *services.FolderService
}

func NewFolderHandler(folders *services.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

func (h *FolderHandler) List(c *gin.Context) {
	folders, err := h.folders.List(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, folders)
}

func (h *FolderHandler) Create(c *gin.Context) {
	var req services.FolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	folder, err := h.folders.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, folder)
}

type renameFolderRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *FolderHandler) Rename(c *gin.Context) {
	folderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req renameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	folder, err := h.folders.Rename(middleware.GetUserID(c), folderID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, folder)
}

func (h *FolderHandler) Delete(c *gin.Context) {
	folderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.folders.Delete(middleware.GetUserID(c), folderID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "folder deleted"})
}
