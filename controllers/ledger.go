package controllers

import (
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateLedgerInput struct {
	tenantBody
	Type        string          `json:"tipo" binding:"required,ledgertype"`
	Amount      decimal.Decimal `json:"valor"`
	WorkOrderID *uuid.UUID      `json:"ordem_servico_id"`
	Description string          `json:"descricao"`
}

// UpdateLedgerInput leaves absent fields untouched, except
// ordem_servico_id: omitting it unlinks the entry.
type UpdateLedgerInput struct {
	tenantBody
	Type        *string          `json:"tipo" binding:"omitempty,ledgertype"`
	Amount      *decimal.Decimal `json:"valor"`
	WorkOrderID *uuid.UUID       `json:"ordem_servico_id"`
	Description *string          `json:"descricao"`
}

type LedgerController struct {
	ledger *services.LedgerService
	log    *zap.Logger
}

func NewLedgerController(ledger *services.LedgerService, log *zap.Logger) *LedgerController {
	return &LedgerController{ledger: ledger, log: log}
}

func (lc *LedgerController) GetEntries(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	rows, err := lc.ledger.List(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, lc.log, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (lc *LedgerController) GetSummary(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	summary, err := lc.ledger.Summary(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, lc.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (lc *LedgerController) CreateEntry(c *gin.Context) {
	var input CreateLedgerInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	entry, err := lc.ledger.Create(c.Request.Context(), input.WorkshopID, services.LedgerInput{
		Type:        input.Type,
		Amount:      input.Amount,
		WorkOrderID: input.WorkOrderID,
		Description: input.Description,
	})
	if err != nil {
		utils.RespondWithAppError(c, lc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "Ledger entry created successfully", entry.ID)
}

func (lc *LedgerController) UpdateEntry(c *gin.Context) {
	id, ok := pathID(c, "ledger entry")
	if !ok {
		return
	}
	var input UpdateLedgerInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	entry, err := lc.ledger.Update(c.Request.Context(), input.WorkshopID, id, services.LedgerUpdate{
		Type:        input.Type,
		Amount:      input.Amount,
		WorkOrderID: input.WorkOrderID,
		Description: input.Description,
	})
	if err != nil {
		utils.RespondWithAppError(c, lc.log, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (lc *LedgerController) DeleteEntry(c *gin.Context) {
	id, ok := pathID(c, "ledger entry")
	if !ok {
		return
	}
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	if err := lc.ledger.Delete(c.Request.Context(), tenantID, id); err != nil {
		utils.RespondWithAppError(c, lc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Ledger entry deleted successfully", nil)
}
