package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blumie/wellcheck/internal/assessment"
	"github.com/blumie/wellcheck/internal/chat"
	"github.com/blumie/wellcheck/internal/checkin"
	"github.com/blumie/wellcheck/internal/session"
	"github.com/blumie/wellcheck/internal/store"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	var verr *assessment.ValidationError
	var aerr *assessment.AssessmentError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, chat.ErrInvalidConversation),
		errors.Is(err, session.ErrInvalidSession):
		return http.StatusBadRequest
	case errors.Is(err, checkin.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, checkin.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkin.ErrNoAnswers), errors.Is(err, checkin.ErrInProgress):
		return http.StatusConflict
	case errors.As(err, &aerr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}
