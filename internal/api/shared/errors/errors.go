package errors

import (
	"errors"
	"net/http"

	"github.com/0xHoneyJar/loa-freeside-sub004/internal/domain"
)

// ErrorCode is the machine-readable kind carried in every error body.
type ErrorCode string

const (
	ErrCodeAuth                ErrorCode = "auth"
	ErrCodeRateLimited         ErrorCode = "rate_limited"
	ErrCodeBudgetExceeded      ErrorCode = "budget_exceeded"
	ErrCodeConflict            ErrorCode = "conflict"
	ErrCodeValidation          ErrorCode = "validation"
	ErrCodePolicyEscalation    ErrorCode = "policy_escalation"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeQuotaExceeded       ErrorCode = "quota_exceeded"
	ErrCodeForbidden           ErrorCode = "forbidden"
	ErrCodeNotFound            ErrorCode = "not_found"
	ErrCodeInternal            ErrorCode = "internal_error"
)

// Response is the wire shape of every error body.
type Response struct {
	Error Detail `json:"error"`
}

// Detail carries the code and a terse operator-facing message. Internal
// error text never leaks into it.
type Detail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Classify maps a domain error to its HTTP status and wire code.
// Unrecognized errors are internal: the caller logs them and the client
// sees only a generic body.
func Classify(err error) (int, ErrorCode, string) {
	switch {
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized, ErrCodeAuth, "authentication failed"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, ErrCodeRateLimited, "rate limited"
	case errors.Is(err, domain.ErrBudgetExceeded):
		return http.StatusPaymentRequired, ErrCodeBudgetExceeded, "tenant budget exceeded"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusPaymentRequired, ErrCodeBudgetExceeded, "insufficient balance"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrCodeConflict, "conflict"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrCodeValidation, "validation failed"
	case errors.Is(err, domain.ErrPolicyEscalation):
		return http.StatusForbidden, ErrCodePolicyEscalation, "access escalation rejected"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return http.StatusTooManyRequests, ErrCodeQuotaExceeded, "daily quota exceeded"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrCodeForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "not found"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, "upstream unavailable"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "internal error"
	}
}

// NewResponse builds the wire body for a classified error.
func NewResponse(code ErrorCode, message string) Response {
	return Response{Error: Detail{Code: code, Message: message}}
}
