package controllers

import (
	"net/http"
	"strconv"

	"oficina-backend/services"
	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardController struct {
	dashboard *services.DashboardService
	log       *zap.Logger
}

func NewDashboardController(dashboard *services.DashboardService, log *zap.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, log: log}
}

// GetDashboard builds the overview for ?mes=&ano=, defaulting to the
// current month when both are absent
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	tenantID, ok := queryTenant(c)
	if !ok {
		return
	}
	month, err := optionalInt(c.Query("mes"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid mes")
		return
	}
	year, err := optionalInt(c.Query("ano"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid ano")
		return
	}
	if (month == 0) != (year == 0) {
		utils.RespondWithError(c, http.StatusBadRequest, "mes and ano must be given together")
		return
	}

	dashboard, err := dc.dashboard.Build(c.Request.Context(), tenantID, month, year)
	if err != nil {
		utils.RespondWithAppError(c, dc.log, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
