package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a concurrent mutation was detected, e.g.
	// a conditional stock update that matched the row but lost the guard.
	ErrConflict = errors.New("conflict")

	// ErrDatabaseUnavailable is returned when the tenant handle fails a
	// basic connectivity check. Treated as fatal by callers, never retried.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

// InsufficientStockError is returned when a subtract would drive the stock of
// an inventory-tracked product below zero. The mutation does not happen.
type InsufficientStockError struct {
	ProductID int64
	Product   string
	Available int
	Required  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, required %d", e.Product, e.Available, e.Required)
}

// ValidationError rejects malformed input before any write happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
