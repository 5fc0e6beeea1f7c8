package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tehtaankatu/tasting/internal/errors"
)

// respondOK wraps data in the success envelope.
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().Unix(),
	})
}

// respondError maps an error onto its HTTP status and the error envelope.
func respondError(c *gin.Context, err error) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrUnknown)
	}
	c.JSON(appErr.HTTPStatus(), errors.NewErrorResponse(appErr))
}
