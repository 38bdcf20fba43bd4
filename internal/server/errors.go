package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ledgerdomain "github.com/lordsbespoke/atelier/internal/ledger/domain"
	orderdomain "github.com/lordsbespoke/atelier/internal/order/domain"
	ratedomain "github.com/lordsbespoke/atelier/internal/rate/domain"
	requestdomain "github.com/lordsbespoke/atelier/internal/request/domain"
	userdomain "github.com/lordsbespoke/atelier/internal/user/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, orderdomain.ErrInvalidTransition),
		errors.Is(err, requestdomain.ErrAlreadyResolved),
		errors.Is(err, ledgerdomain.ErrDuplicateTransaction),
		errors.Is(err, orderdomain.ErrLocked):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, ledgerdomain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "insufficient_funds",
			Message: err.Error(),
		}
	case errors.Is(err, requestdomain.ErrWithdrawalDisabled):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidWalletType),
		errors.Is(err, ledgerdomain.ErrInvalidDirection),
		errors.Is(err, userdomain.ErrInvalidName),
		errors.Is(err, userdomain.ErrInvalidMobile),
		errors.Is(err, userdomain.ErrInvalidRole),
		errors.Is(err, userdomain.ErrUnknownUpline),
		errors.Is(err, orderdomain.ErrInvalidOrder),
		errors.Is(err, orderdomain.ErrInvalidStage),
		errors.Is(err, orderdomain.ErrInvalidFolder),
		errors.Is(err, orderdomain.ErrUnknownWorker),
		errors.Is(err, ratedomain.ErrInvalidRate),
		errors.Is(err, requestdomain.ErrInvalidType),
		errors.Is(err, requestdomain.ErrUnknownUser):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, requestdomain.ErrNotFound),
		errors.Is(err, ratedomain.ErrRateNotFound):
		return true
	default:
		return false
	}
}
