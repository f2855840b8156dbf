package controllers

import (
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PartInput struct {
	tenantBody
	Name      string          `json:"nome" binding:"required"`
	Code      string          `json:"codigo" binding:"required"`
	Quantity  int             `json:"quantidade" binding:"min=0"`
	Minimum   int             `json:"minimo" binding:"min=0"`
	UnitPrice decimal.Decimal `json:"preco_unitario"`
}

func (in PartInput) toService() services.PartInput {
	return services.PartInput{
		Name:      in.Name,
		Code:      in.Code,
		Quantity:  in.Quantity,
		Minimum:   in.Minimum,
		UnitPrice: in.UnitPrice,
	}
}

type PartController struct {
	parts *services.PartService
	log   *zap.Logger
}

func NewPartController(parts *services.PartService, log *zap.Logger) *PartController {
	return &PartController{parts: parts, log: log}
}

func (pc *PartController) GetParts(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	parts, err := pc.parts.List(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, parts)
}

func (pc *PartController) CreatePart(c *gin.Context) {
	var input PartInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	part, err := pc.parts.Create(c.Request.Context(), input.WorkshopID, input.toService())
	if err != nil {
		utils.RespondWithAppError(c, pc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "Part created successfully", part.ID)
}

// UpdatePart replaces the part and recomputes its stock status
func (pc *PartController) UpdatePart(c *gin.Context) {
	id, ok := pathID(c, "part")
	if !ok {
		return
	}
	var input PartInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	part, err := pc.parts.Update(c.Request.Context(), input.WorkshopID, id, input.toService())
	if err != nil {
		utils.RespondWithAppError(c, pc.log, err)
		return
	}
	c.JSON(http.StatusOK, part)
}

func (pc *PartController) DeletePart(c *gin.Context) {
	id, ok := pathID(c, "part")
	if !ok {
		return
	}
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	if err := pc.parts.Delete(c.Request.Context(), tenantID, id); err != nil {
		utils.RespondWithAppError(c, pc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Part deleted successfully", nil)
}
