package controllers

import (
	"net/http"

	"oficina-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// tenantBody is embedded by write payloads.
type tenantBody struct {
	WorkshopID uuid.UUID `json:"oficina_id"`
}

// queryTenant reads oficina_id from the query string.
func queryTenant(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("oficina_id")
	if raw == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "oficina_id is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid oficina_id format")
		return uuid.Nil, false
	}
	return id, allowedTenant(c, id)
}

// bodyTenant checks the oficina_id taken from a bound payload.
func bodyTenant(c *gin.Context, id uuid.UUID) bool {
	if id == uuid.Nil {
		utils.RespondWithError(c, http.StatusBadRequest, "oficina_id is required")
		return false
	}
	return allowedTenant(c, id)
}

// allowedTenant rejects requests whose token belongs to another workshop.
// Without a token in context every workshop is reachable.
func allowedTenant(c *gin.Context, id uuid.UUID) bool {
	claimed := c.GetString(utils.ContextWorkshopID)
	if claimed == "" || claimed == id.String() {
		return true
	}
	utils.RespondWithError(c, http.StatusForbidden, "oficina_id does not match the session")
	return false
}

func pathID(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+what+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}
