package domain

import "fmt"

// Error types for consistent error handling across the dashboard core.

// ErrUnauthorized indicates the platform rejected the credential (401).
// The gateway tears down the matching session channel before raising it.
type ErrUnauthorized struct {
	Namespace string // "user" or "admin"
	Message   string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unauthorized (%s)", e.Namespace)
}

// ErrRemote indicates a non-2xx platform response other than 401.
// Message carries the server-supplied message when the body parsed.
type ErrRemote struct {
	Status  int
	Message string
}

func (e *ErrRemote) Error() string {
	return fmt.Sprintf("platform returned status %d: %s", e.Status, e.Message)
}

// ErrValidation indicates a local rule-evaluator rejection (bad input).
// These never reach the gateway.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInsufficientFunds indicates the selected wallet cannot cover the amount.
type ErrInsufficientFunds struct {
	Available int64
	Required  int64
}

func (e *ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("insufficient funds: available=%d required=%d", e.Available, e.Required)
}

// ErrLimitExceeded indicates a withdrawal bound was crossed.
type ErrLimitExceeded struct {
	LimitType string
	Limit     int64
	Amount    int64
}

func (e *ErrLimitExceeded) Error() string {
	return fmt.Sprintf("limit exceeded [%s]: limit=%d amount=%d", e.LimitType, e.Limit, e.Amount)
}

// ErrWithdrawalDay indicates the request fell outside the designated
// withdrawal weekday.
type ErrWithdrawalDay struct {
	Allowed string
}

func (e *ErrWithdrawalDay) Error() string {
	return fmt.Sprintf("withdrawals are only allowed on %ss", e.Allowed)
}

// ErrExternalService wraps a transport-level failure talking to the platform.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}
