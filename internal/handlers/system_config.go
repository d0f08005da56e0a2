package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/lucaswan/paperdesk/internal/services"
	"github.com/lucaswan/paperdesk/pkg/response"
)

// SystemConfigHandler exposes system config groups to admins.
type SystemConfigHandler struct {
	configs *services.SystemConfigService
}

func NewSystemConfigHandler(configs *services.SystemConfigService) *SystemConfigHandler {
	return &SystemConfigHandler{configs: configs}
}

// GetGroup returns every config entry in a group. Secret values are blanked.
func (h *SystemConfigHandler) GetGroup(c *gin.Context) {
	group := c.Param("group")

	configs, err := h.configs.GetByGroup(group)
	if err != nil {
		response.ServerError(c, "could not load configs")
		return
	}

	for i := range configs {
		if configs[i].Key == "email_password" {
			configs[i].Value = ""
		}
	}

	response.Success(c, configs)
}

// UpdateGroup applies a key/value map to a config group.
func (h *SystemConfigHandler) UpdateGroup(c *gin.Context) {
	group := c.Param("group")

	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.configs.UpdateGroup(group, values); err != nil {
		response.ServerError(c, "could not update configs")
		return
	}
	response.Success(c, gin.H{"message": "config updated"})
}
