package controllers

import (
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ServiceInput defines the expected JSON structure for a catalog service
type ServiceInput struct {
	tenantBody
	Name             string          `json:"nome" binding:"required,max=120"`
	Category         string          `json:"categoria"`
	EstimatedMinutes *int            `json:"tempo_estimado" binding:"omitempty,min=0"`
	BasePrice        decimal.Decimal `json:"preco_base"`
	Status           string          `json:"status"`
}

func (in ServiceInput) toService() services.ServiceInput {
	return services.ServiceInput{
		Name:             in.Name,
		Category:         in.Category,
		EstimatedMinutes: in.EstimatedMinutes,
		BasePrice:        in.BasePrice,
		Status:           in.Status,
	}
}

type ServiceController struct {
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewServiceController(catalog *services.CatalogService, log *zap.Logger) *ServiceController {
	return &ServiceController{catalog: catalog, log: log}
}

// GetServiceOptions returns the short listing used by the order form
func (sc *ServiceController) GetServiceOptions(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	options, err := sc.catalog.Options(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, sc.log, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (sc *ServiceController) GetServices(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	list, err := sc.catalog.List(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, sc.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (sc *ServiceController) CreateService(c *gin.Context) {
	var input ServiceInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	service, err := sc.catalog.Create(c.Request.Context(), input.WorkshopID, input.toService())
	if err != nil {
		utils.RespondWithAppError(c, sc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "Service created successfully", service.ID)
}

func (sc *ServiceController) UpdateService(c *gin.Context) {
	id, ok := pathID(c, "service")
	if !ok {
		return
	}
	var input ServiceInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	if _, err := sc.catalog.Update(c.Request.Context(), input.WorkshopID, id, input.toService()); err != nil {
		utils.RespondWithAppError(c, sc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Service updated successfully", nil)
}

func (sc *ServiceController) DeleteService(c *gin.Context) {
	id, ok := pathID(c, "service")
	if !ok {
		return
	}
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	if err := sc.catalog.Delete(c.Request.Context(), tenantID, id); err != nil {
		utils.RespondWithAppError(c, sc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Service deleted successfully", nil)
}
