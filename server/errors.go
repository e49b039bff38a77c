package server

import (
	"errors"
	"net/http"

	"github.com/Desarso/companion/archive"
	"github.com/Desarso/companion/calls"
	"github.com/Desarso/companion/sessions"
	"github.com/Desarso/companion/thread"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, thread.ErrNotFound),
		errors.Is(err, archive.ErrNotFound),
		errors.Is(err, calls.ErrNotFound),
		errors.Is(err, sessions.ErrNoMedia):
		return http.StatusNotFound
	case errors.Is(err, sessions.ErrTurnInProgress),
		errors.Is(err, sessions.ErrNothingToRegenerate),
		errors.Is(err, calls.ErrCallActive),
		errors.Is(err, calls.ErrNoCall):
		return http.StatusConflict
	case errors.Is(err, sessions.ErrEmptyTurn),
		errors.Is(err, sessions.ErrEmptyEdit),
		errors.Is(err, sessions.ErrInvalidMode),
		errors.Is(err, sessions.ErrInvalidImage),
		errors.Is(err, sessions.ErrInvalidConfig):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
