package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/services"
	"github.com/lucaswan/paperdesk/pkg/response"
)

// SystemLogHandler exposes the audit/operation log to admins.
type SystemLogHandler struct {
	logs *services.SystemLogService
}

func NewSystemLogHandler(logs *services.SystemLogService) *SystemLogHandler {
	return &SystemLogHandler{logs: logs}
}

// List returns a filtered, paginated page of system logs.
func (h *SystemLogHandler) List(c *gin.Context) {
	var req services.SystemLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.logs.List(&req)
	if err != nil {
		response.ServerError(c, "could not list logs")
		return
	}
	response.Success(c, result)
}

// Modules returns the distinct module names present in the log.
func (h *SystemLogHandler) Modules(c *gin.Context) {
	modules, err := h.logs.GetModules()
	if err != nil {
		response.ServerError(c, "could not list modules")
		return
	}
	response.Success(c, modules)
}
