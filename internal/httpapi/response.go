package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/engine"
)

// APIError is the body of every failed request.
type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ErrorEnvelope wraps APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondEngineError maps engine and economy errors to HTTP statuses.
func (s *Server) respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, engine.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, engine.ErrNoCourse):
		respondError(c, http.StatusNotFound, "no_active_course", err)
	case errors.Is(err, engine.ErrLocked):
		respondError(c, http.StatusForbidden, "drill_locked", err)
	case errors.Is(err, engine.ErrNotTimed):
		respondError(c, http.StatusConflict, "not_timed", err)
	case errors.Is(err, engine.ErrConflict):
		respondError(c, http.StatusConflict, "attempt_conflict", err)
	case errors.Is(err, economy.ErrInsufficientPoints):
		respondError(c, http.StatusConflict, "insufficient_points", err)
	case errors.Is(err, economy.ErrAlreadyFull):
		respondError(c, http.StatusConflict, "gems_full", err)
	case engine.IsRetryable(err):
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorEnvelope{Error: APIError{
			Message:   "temporarily unavailable",
			Code:      "persistence",
			Retryable: true,
		}})
	default:
		s.log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}
