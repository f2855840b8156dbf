package controllers

import (
	"net/http"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VehicleInput struct {
	tenantBody
	Plate      string     `json:"placa" binding:"required,max=10"`
	Model      string     `json:"modelo" binding:"required"`
	Make       string     `json:"marca" binding:"required"`
	Year       *int       `json:"ano"`
	Mileage    *int       `json:"km"`
	CustomerID *uuid.UUID `json:"cliente_id"`
}

func (in VehicleInput) toService() services.VehicleInput {
	return services.VehicleInput{
		Plate:      in.Plate,
		Model:      in.Model,
		Make:       in.Make,
		Year:       in.Year,
		Mileage:    in.Mileage,
		CustomerID: in.CustomerID,
	}
}

type VehicleController struct {
	vehicles *services.VehicleService
	log      *zap.Logger
}

func NewVehicleController(vehicles *services.VehicleService, log *zap.Logger) *VehicleController {
	return &VehicleController{vehicles: vehicles, log: log}
}

func (vc *VehicleController) GetVehicles(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	rows, err := vc.vehicles.List(c.Request.Context(), tenantID)
	if err != nil {
		utils.RespondWithAppError(c, vc.log, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (vc *VehicleController) CreateVehicle(c *gin.Context) {
	var input VehicleInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	vehicle, err := vc.vehicles.Create(c.Request.Context(), input.WorkshopID, input.toService())
	if err != nil {
		utils.RespondWithAppError(c, vc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "Vehicle created successfully", vehicle.ID)
}

func (vc *VehicleController) UpdateVehicle(c *gin.Context) {
	id, ok := pathID(c, "vehicle")
	if !ok {
		return
	}
	var input VehicleInput
	if !bindJSON(c, &input) || !bodyTenant(c, input.WorkshopID) {
		return
	}
	if _, err := vc.vehicles.Update(c.Request.Context(), input.WorkshopID, id, input.toService()); err != nil {
		utils.RespondWithAppError(c, vc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Vehicle updated successfully", nil)
}

func (vc *VehicleController) DeleteVehicle(c *gin.Context) {
	id, ok := pathID(c, "vehicle")
	if !ok {
		return
	}
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	if err := vc.vehicles.Delete(c.Request.Context(), tenantID, id); err != nil {
		utils.RespondWithAppError(c, vc.log, err)
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Vehicle deleted successfully", nil)
}
