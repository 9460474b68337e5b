package domain

import "errors"

// Sentinel errors for the machine-distinguishable failure kinds. Specific
// call sites wrap these with context; the API layer maps them to status
// codes with errors.Is.
var (
	// ErrAuth is returned for bad, expired, or forged tokens
	ErrAuth = errors.New("authentication failed")

	// ErrRateLimited is returned when any rate-limit dimension is over threshold
	ErrRateLimited = errors.New("rate limited")

	// ErrBudgetExceeded is returned when a reservation would breach the tenant limit
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrConflict is returned for duplicate jti, duplicate proposal/vote,
	// and payload-mismatched idempotency retries
	ErrConflict = errors.New("conflict")

	// ErrValidation is returned for malformed requests
	ErrValidation = errors.New("validation failed")

	// ErrPolicyEscalation is returned when the recomputed access set is
	// stricter than what the token claims request
	ErrPolicyEscalation = errors.New("policy escalation")

	// ErrUpstreamUnavailable is returned when the shared store or the
	// inference service is unreachable; callers fail closed
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrForbidden is returned when a non-agent account attempts a
	// governance operation
	ErrForbidden = errors.New("forbidden")

	// ErrQuotaExceeded is returned when a tenant's BYOK daily quota is spent
	ErrQuotaExceeded = errors.New("daily quota exceeded")

	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrInsufficientBalance is returned when a tenant's lots cannot cover
	// a debit or transfer
	ErrInsufficientBalance = errors.New("insufficient balance")
)
