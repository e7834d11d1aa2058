package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/jambcoach/internal/apperr"
)

// APIError is the body of every error response.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:              http.StatusNotFound,
	apperr.KindInvalidInput:          http.StatusBadRequest,
	apperr.KindAccessDenied:          http.StatusForbidden,
	apperr.KindDependencyUnavailable: http.StatusServiceUnavailable,
	apperr.KindGenerationFailed:      http.StatusBadGateway,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Causes wrapped without a message stay in the log, not the response.
var kindMessage = map[apperr.Kind]string{
	apperr.KindDependencyUnavailable: "service temporarily unavailable",
	apperr.KindGenerationFailed:      "question generation failed",
	apperr.KindInternal:              "internal error",
}

func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	msg := kindMessage[kind]
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Msg != "" {
		msg = ae.Msg
	}
	if msg == "" {
		msg = string(kind)
	}
	_ = c.Error(err)
	abort(c, StatusFor(kind), string(kind), msg, apperr.IsRetryable(err))
}

func abort(c *gin.Context, status int, code, msg string, retryable bool) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{
		Code:      code,
		Message:   msg,
		Retryable: retryable,
	}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
