package api

import (
	"errors"
	"net/http"

	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/gin-gonic/gin"
)

// RespondError maps a domain error to its HTTP status and writes the
// failure envelope. Forbidden deliberately carries no detail about
// which check failed.
func RespondError(c *gin.Context, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		ValidationFailed(c, ve.Fields)
	case errors.Is(err, model.ErrNotFound):
		Error(c, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrForbidden):
		Error(c, http.StatusForbidden, "forbidden")
	case errors.Is(err, model.ErrInvalidTransition):
		Error(c, http.StatusUnprocessableEntity, "invalid transition")
	case errors.Is(err, model.ErrConflict):
		Error(c, http.StatusConflict, "conflict, please retry")
	default:
		GetLogger().WithField("error", err.Error()).Error("unhandled service error")
		Error(c, http.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandlerMiddleware converts errors attached to the context into
// envelope responses, as a safety net for handlers that return early.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			RespondError(c, c.Errors.Last().Err)
		}
	}
}
