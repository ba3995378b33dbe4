package ginserver

import (
	"context"
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"pucisca/internal/app/commands"
	bookingapp "pucisca/internal/app/handlers/booking"
	"pucisca/internal/app/middleware"
	"pucisca/internal/app/queries"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

// writeError maps application errors to HTTP responses. Stay rejections are
// 422 with their reason; malformed input is 400.
func writeError(c *gin.Context, err error) {
	var rejected *bookingapp.RejectedError
	switch {
	case errors.As(err, &rejected):
		body := gin.H{"error": rejected.Message, "reason": string(rejected.Reason)}
		if rejected.FirstBlocked != nil {
			body["first_blocked"] = rejected.FirstBlocked.String()
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, property.ErrUnknownProperty):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, middleware.ErrValidation),
		errors.Is(err, errBadParam):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, middleware.ErrIdempotencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	case errors.Is(err, queries.ErrHandlerNotFound), errors.Is(err, commands.ErrHandlerNotFound):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
