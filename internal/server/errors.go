package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/smallbiznis/telcox/internal/account/domain"
	authdomain "github.com/smallbiznis/telcox/internal/auth/domain"
	balancedomain "github.com/smallbiznis/telcox/internal/balance/domain"
	dashboarddomain "github.com/smallbiznis/telcox/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/telcox/internal/invoice/domain"
	plandomain "github.com/smallbiznis/telcox/internal/plan/domain"
	usagedomain "github.com/smallbiznis/telcox/internal/usage/domain"
	"gorm.io/gorm"
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

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// validationSentinels are reported as 400 with a single field error derived
// from the sentinel code.
var validationSentinels = []error{
	ErrInvalidRequest,
	authdomain.ErrInvalidName,
	authdomain.ErrInvalidEmail,
	authdomain.ErrWeakPassword,
	accountdomain.ErrInvalidName,
	accountdomain.ErrInvalidPhone,
	dashboarddomain.ErrInvalidWindow,
	usagedomain.ErrInvalidService,
	usagedomain.ErrInvalidClass,
	usagedomain.ErrInvalidQuantity,
	usagedomain.ErrInvalidCost,
	usagedomain.ErrInvalidRange,
	invoicedomain.ErrInvalidID,
	invoicedomain.ErrInvalidStatus,
	invoicedomain.ErrInvalidAmount,
	invoicedomain.ErrInvalidDueDate,
	invoicedomain.ErrInvalidMethod,
	plandomain.ErrInvalidID,
	plandomain.ErrInvalidName,
	plandomain.ErrInvalidCode,
	plandomain.ErrInvalidPrice,
	plandomain.ErrInactive,
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

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if code, ok := validationErrorCode(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrExpiredToken),
		errors.Is(err, authdomain.ErrRevokedToken),
		errors.Is(err, accountdomain.ErrInvalidAccount),
		errors.Is(err, balancedomain.ErrInvalidAccount),
		errors.Is(err, dashboarddomain.ErrInvalidAccount),
		errors.Is(err, usagedomain.ErrInvalidAccount),
		errors.Is(err, invoicedomain.ErrInvalidAccount):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: unauthorizedMessage(err),
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authdomain.ErrInactiveAccount),
		errors.Is(err, usagedomain.ErrForeignAccount):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrEmailTaken),
		errors.Is(err, plandomain.ErrDuplicate),
		errors.Is(err, invoicedomain.ErrNotPayable):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, dashboarddomain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog reports the response type and code for the request log.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if code := sentinelCode(err); code != "" {
		return payload.Type, code
	}
	return payload.Type, payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationErrorCode(err error) (string, bool) {
	for _, target := range validationSentinels {
		if errors.Is(err, target) {
			return target.Error(), true
		}
	}
	return "", false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, balancedomain.ErrNotFound),
		errors.Is(err, dashboarddomain.ErrAccountNotFound),
		errors.Is(err, dashboarddomain.ErrBalanceNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, balancedomain.ErrNotFound),
		errors.Is(err, dashboarddomain.ErrBalanceNotFound):
		return "balance not found"
	case errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, dashboarddomain.ErrAccountNotFound):
		return "account not found"
	case errors.Is(err, invoicedomain.ErrNotFound):
		return "invoice not found"
	case errors.Is(err, plandomain.ErrNotFound):
		return "plan not found"
	default:
		return "not found"
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, authdomain.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, authdomain.ErrExpiredToken):
		return "token expired"
	default:
		return "unauthorized"
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, authdomain.ErrEmailTaken):
		return "email already registered"
	case errors.Is(err, plandomain.ErrDuplicate):
		return "plan code already exists"
	case errors.Is(err, invoicedomain.ErrNotPayable):
		return "invoice is not payable"
	default:
		return "conflict"
	}
}

func sentinelCode(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	if err == nil {
		return ""
	}
	code := err.Error()
	if strings.ContainsAny(code, " :") {
		return ""
	}
	return code
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "password_too_short":
		return "password"
	case "invalid_window":
		return "window"
	case "invalid_plan_code", "plan_inactive":
		return "plan_code"
	case "invalid_payment_method":
		return "payment_method"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "password_too_short":
		return "password is too short"
	case "plan_inactive":
		return "plan is not active"
	default:
		return strings.ReplaceAll(code, "_", " ")
	}
}
