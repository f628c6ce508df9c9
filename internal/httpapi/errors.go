package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/pathwise/internal/learning"
	"github.com/abhisek/pathwise/internal/pathgen"
	"github.com/abhisek/pathwise/internal/store"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{Error: errorBody{Message: message, Code: code}})
}

// writeError maps service errors onto statuses. Generation failures keep
// their user-safe message; internal detail only goes to the log.
func (s *Server) writeError(c *gin.Context, err error) {
	var gf *pathgen.GenerationFailed
	switch {
	case errors.As(err, &gf):
		s.log.Warn("generation failed", "path", c.FullPath(), "op", gf.Op, "cause", errString(gf.Err))
		abort(c, http.StatusBadGateway, "generation_failed", gf.Message)
	case errors.Is(err, learning.ErrInvalid):
		abort(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, store.ErrNotFound):
		abort(c, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, learning.ErrLocked):
		abort(c, http.StatusForbidden, "locked", "complete the previous lesson first")
	case errors.Is(err, learning.ErrForbidden):
		abort(c, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, learning.ErrConflict):
		abort(c, http.StatusConflict, "conflict", err.Error())
	default:
		s.log.Error("request failed", "path", c.FullPath(), "error", err.Error())
		abort(c, http.StatusInternalServerError, "internal", "something went wrong, please try again")
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
