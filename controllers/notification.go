package controllers

import (
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TemplateInput defines the expected JSON structure for the "order finalized" message
type TemplateInput struct {
	tenantBody
	Message  string `json:"mensagem" binding:"required"`
	IsActive *bool  `json:"ativo"`
}

type NotificationController struct {
	notifications *services.NotificationService
	log           *zap.Logger
}

func NewNotificationController(notifications *services.NotificationService, log *zap.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, log: log}
}

func (nc *NotificationController) GetTemplate(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	tmpl, err := nc.notifications.Template(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, nc.log, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (nc *NotificationController) UpdateTemplate(c *gin.Context) {
	var input TemplateInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	tmpl, err := nc.notifications.SaveTemplate(c.Request.Context(), input.WorkshopID, input.Message, active)
	if err != nil {
		utils.RespondWithAppError(c, nc.log, err)
		return
	}
	c.JSON(http.StatusOK, tmpl)
}
