package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribe/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any `json:"data"`
}

// RespondWithError writes err as an ErrorResponse. Errors that are not an
// AppError become a 500.
func RespondWithError(c *gin.Context, err error) {
	appErr := errors.From(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}
