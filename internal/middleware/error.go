package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/records-api/internal/handler"
	"github.com/clinicore/records-api/internal/repository"
	apperrors "github.com/clinicore/records-api/pkg/errors"
)

// ErrorHandler translates errors attached via c.Error into the response
// envelope. Handlers call c.Error(err) and return; status mapping lives
// here in one place.
func ErrorHandler(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status, message := classify(err, production)
		if status >= 500 {
			log.Error().
				Err(err).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString("request_id")).
				Msg("request failed")
		}
		c.JSON(status, handler.NewErrorResponse(message))
	}
}

func classify(err error, production bool) (int, string) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.StatusCode(), appErr.Message
	}

	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound, "resource not found"
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return http.StatusConflict, "resource already exists"
		case "23503":
			return http.StatusBadRequest, "referenced resource does not exist"
		}
	}

	if production {
		return http.StatusInternalServerError, "internal server error"
	}
	return http.StatusInternalServerError, err.Error()
}
