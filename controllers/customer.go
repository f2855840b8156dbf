package controllers

import (
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CustomerInput defines the expected JSON structure for creating or replacing a customer
type CustomerInput struct {
	tenantBody
	Name   string `json:"nome" binding:"required,max=120"`
	Phone  string `json:"telefone" binding:"phone"`
	Email  string `json:"email" binding:"omitempty,email"`
	City   string `json:"cidade" binding:"max=80"`
	Status string `json:"status"`
}

func (in CustomerInput) toService() services.CustomerInput {
	return services.CustomerInput{Name: in.Name, Phone: in.Phone, Email: in.Email, City: in.City, Status: in.Status}
}

type CustomerController struct {
	customers *services.CustomerService
	log       *zap.Logger
}

func NewCustomerController(customers *services.CustomerService, log *zap.Logger) *CustomerController {
	return &CustomerController{customers: customers, log: log}
}

// GetCustomers lists the workshop's customers with their work order count
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	rows, err := cc.customers.List(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, cc.log, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var input CustomerInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	customer, err := cc.customers.Create(c.Request.Context(), input.WorkshopID, input.toService())
	if err != nil {
		utils.RespondWithAppError(c, cc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "Customer created successfully", customer.ID)
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}
	var input CustomerInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	if _, err := cc.customers.Update(c.Request.Context(), input.WorkshopID, id, input.toService()); err != nil {
		utils.RespondWithAppError(c, cc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Customer updated successfully", nil)
}

func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	if err := cc.customers.Delete(c.Request.Context(), tenantID, id); err != nil {
		utils.RespondWithAppError(c, cc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Customer deleted successfully", nil)
}
