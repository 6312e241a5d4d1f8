package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"terraprime/internal/collections"
	"terraprime/internal/gateway"
	"terraprime/internal/leads"
	"terraprime/internal/payments"
	"terraprime/internal/projects"
	"terraprime/internal/sales"
	"terraprime/internal/users"
	"terraprime/internal/wizard"
)

// statusFor maps service errors to HTTP statuses. Backend statuses are
// relayed as they came.
func statusFor(err error) int {
	if code := gateway.StatusOf(err); code != 0 {
		return code
	}

	switch {
	case errors.Is(err, gateway.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, gateway.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, gateway.ErrUnreachable), errors.Is(err, gateway.ErrInvalidResponse):
		return http.StatusBadGateway

	case errors.Is(err, sales.ErrInvalidStatus),
		errors.Is(err, sales.ErrInvalidAmount),
		errors.Is(err, sales.ErrInvalidFinancing),
		errors.Is(err, payments.ErrInvalidStatus),
		errors.Is(err, payments.ErrEmptySubmission),
		errors.Is(err, payments.ErrFileMismatch),
		errors.Is(err, payments.ErrMissingReason),
		errors.Is(err, projects.ErrInvalidStatus),
		errors.Is(err, collections.ErrInvalidAmount),
		errors.Is(err, collections.ErrMissingReceipt),
		errors.Is(err, users.ErrUnknownView):
		return http.StatusBadRequest

	case errors.Is(err, sales.ErrInvalidTransition),
		errors.Is(err, projects.ErrInvalidTransition),
		errors.Is(err, leads.ErrAlreadyInOffice),
		errors.Is(err, leads.ErrNotInOffice),
		errors.Is(err, users.ErrSelfDelete),
		errors.Is(err, wizard.ErrNothingToCollect),
		errors.Is(err, wizard.ErrSubmissionInProgress),
		errors.Is(err, wizard.ErrAlreadySubmitted):
		return http.StatusConflict

	case errors.Is(err, wizard.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, wizard.ErrNotFound), errors.Is(err, wizard.ErrIndexOutOfRange):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": msg}. Internal failures are logged and
// hidden from the caller.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()

	var gwErr *gateway.Error
	switch {
	case errors.As(err, &gwErr):
		msg = gwErr.Message
		if msg == "" {
			msg = http.StatusText(gwErr.StatusCode)
		}
	case status == http.StatusInternalServerError:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		msg = "internal error"
	case status == http.StatusBadGateway || status == http.StatusGatewayTimeout:
		logger.Warn("backend failure", zap.String("path", c.FullPath()), zap.Error(err))
		msg = http.StatusText(status)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("failed to bind request", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
}
