// utils/response.go
package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondWithError writes {"error": message} with the given status.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// RespondWithAppError translates err into a response. Business errors keep
// their message; anything else is logged and hidden behind a 500.
func RespondWithAppError(c *gin.Context, log *zap.Logger, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondWithError(c, StatusFor(err), appErr.Message)
		return
	}
	_ = c.Error(err)
	log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	RespondWithError(c, http.StatusInternalServerError, "internal server error")
}

// RespondWithMessage writes the {"message": ..., "id": ...} envelope used by
// write endpoints. id is omitted when nil.
func RespondWithMessage(c *gin.Context, status int, message string, id any) {
	body := gin.H{"message": message}
	if id != nil {
		body["id"] = id
	}
	c.JSON(status, body)
}
