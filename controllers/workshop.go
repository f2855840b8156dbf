package controllers

import (
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WorkshopInput struct {
	Name    string `json:"nome" binding:"required"`
	TaxID   string `json:"cnpj"`
	Phone   string `json:"telefone" binding:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"endereco"`
}

func (in WorkshopInput) toService() services.WorkshopInput {
	return services.WorkshopInput{Name: in.Name, TaxID: in.TaxID, Phone: in.Phone, Email: in.Email, Address: in.Address}
}

// WorkshopController manages the tenants themselves, so none of its routes
// take an oficina_id.
type WorkshopController struct {
	workshops *services.WorkshopService
	log       *zap.Logger
}

func NewWorkshopController(workshops *services.WorkshopService, log *zap.Logger) *WorkshopController {
	return &WorkshopController{workshops: workshops, log: log}
}

func (wc *WorkshopController) GetWorkshops(c *gin.Context) {
	list, err := wc.workshops.List(c.Request.Context())
	if err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (wc *WorkshopController) GetWorkshop(c *gin.Context) {
	id, ok := pathID(c, "workshop")
	if !ok || !allowedTenant(c, id) {
		return
	}
	workshop, err := wc.workshops.Get(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	c.JSON(http.StatusOK, workshop)
}

func (wc *WorkshopController) CreateWorkshop(c *gin.Context) {
	var input WorkshopInput
	if !bindJSON(c, &input) {
		return
	}
	workshop, err := wc.workshops.Create(c.Request.Context(), input.toService())
	if err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "Workshop created successfully", workshop.ID)
}

func (wc *WorkshopController) UpdateWorkshop(c *gin.Context) {
	id, ok := pathID(c, "workshop")
	if !ok || !allowedTenant(c, id) {
		return
	}
	var input WorkshopInput
	if !bindJSON(c, &input) {
		return
	}
	if _, err := wc.workshops.Update(c.Request.Context(), id, input.toService()); err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Workshop updated successfully", nil)
}
