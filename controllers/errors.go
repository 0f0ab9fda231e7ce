package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/garcom-app/services"
	"github.com/yeremiapane/garcom-app/utils"
)

var errInternal = errors.New("internal error, try again")

// respondServiceError maps service errors to HTTP status codes. Storage
// failures are logged and hidden behind a generic message.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidImport):
		utils.RespondError(c, http.StatusUnprocessableEntity, services.ErrInvalidImport)
	case errors.Is(err, services.ErrCommitFailed):
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, services.ErrCommitFailed)
	default:
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
	}
}
