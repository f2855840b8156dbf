package controllers

import (
	"fmt"
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateWorkOrderInput defines the expected JSON structure for opening a work order
type CreateWorkOrderInput struct {
	tenantBody
	CustomerID uuid.UUID        `json:"cliente_id"`
	VehicleID  uuid.UUID        `json:"veiculo_id"`
	ServiceIDs []uuid.UUID      `json:"servico_ids"`
	Status     string           `json:"status" binding:"max=40"`
	Total      *decimal.Decimal `json:"total"`
	Note       string           `json:"observacao"`
}

// UpdateWorkOrderInput replaces status, total and note. The ledger follows.
type UpdateWorkOrderInput struct {
	tenantBody
	Status string           `json:"status" binding:"required,max=40"`
	Total  *decimal.Decimal `json:"total" binding:"required"`
	Note   string           `json:"observacao"`
}

type WorkOrderController struct {
	orders *services.WorkOrderService
	docs   *services.OrderDocument
	log    *zap.Logger
}

func NewWorkOrderController(orders *services.WorkOrderService, docs *services.OrderDocument, log *zap.Logger) *WorkOrderController {
	return &WorkOrderController{orders: orders, docs: docs, log: log}
}

func (wc *WorkOrderController) GetWorkOrders(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	list, err := wc.orders.List(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (wc *WorkOrderController) CreateWorkOrder(c *gin.Context) {
	var input CreateWorkOrderInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	order, err := wc.orders.Create(c.Request.Context(), input.WorkshopID, services.CreateOrderInput{
		CustomerID: input.CustomerID,
		VehicleID:  input.VehicleID,
		ServiceIDs: input.ServiceIDs,
		Status:     input.Status,
		Total:      input.Total,
		Note:       input.Note,
	})
	if err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "Work order created successfully", order.ID)
}

func (wc *WorkOrderController) UpdateWorkOrder(c *gin.Context) {
	id, ok := pathID(c, "work order")
	if !ok {
		return
	}
	var input UpdateWorkOrderInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	err := wc.orders.Update(c.Request.Context(), input.WorkshopID, id, services.UpdateOrderInput{
		Status: input.Status,
		Total:  input.Total,
		Note:   input.Note,
	})
	if err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Work order updated successfully", nil)
}

func (wc *WorkOrderController) DeleteWorkOrder(c *gin.Context) {
	id, ok := pathID(c, "work order")
	if !ok {
		return
	}
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	if err := wc.orders.Delete(c.Request.Context(), tenantID, id); err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Work order deleted successfully", nil)
}

// GetWorkOrderPDF streams the printable order sheet
func (wc *WorkOrderController) GetWorkOrderPDF(c *gin.Context) {
	id, ok := pathID(c, "work order")
	if !ok {
		return
	}
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	pdf, err := wc.docs.Render(c.Request.Context(), tenantID, id)
	if err != nil {
		utils.RespondWithAppError(c, wc.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="ordem-%s.pdf"`, id.String()[:8]))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
