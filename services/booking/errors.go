package booking

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session id resolves to nothing,
// either because it never existed or its cache TTL lapsed.
var ErrSessionNotFound = errors.New("booking session not found or expired")

// FlowError is a typed error for booking flow failures.
type FlowError struct {
	Code    string
	Message string
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSlotLockError(msg string) error {
	return &FlowError{Code: "slotLockError", Message: msg}
}

func NewTransitionError(msg string) error {
	return &FlowError{Code: "transitionBlocked", Message: msg}
}

func NewPaymentError(msg string) error {
	return &FlowError{Code: "paymentError", Message: msg}
}
