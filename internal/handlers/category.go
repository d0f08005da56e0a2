package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/middleware"
	"github.com/lucaswan/paperdesk/internal/services"
	"github.com/lucaswan/paperdesk/pkg/response"
)

// CategoryHandler provides category endpoints.
type CategoryHandler struct {
	categories *services.CategoryService
}

func NewCategoryHandler(categories *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, categories)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.categories.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.categories.Update(middleware.GetUserID(c), categoryID, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	categoryID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(middleware.GetUserID(c), categoryID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "category deleted"})
}
