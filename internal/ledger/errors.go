package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrLotNotFound  = errors.New("lot not found")
	ErrDuplicateLot = errors.New("lot already exists")
	ErrSKUNotFound  = errors.New("sku not found")
	ErrDuplicateSKU = errors.New("sku already exists")
)

// ValidationError reports a field that failed a precondition before any mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError is returned when a lot cannot cover a requested quantity.
type InsufficientStockError struct {
	LotID       string
	RequestedKg float64
	RemainingKg float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("lot %s has %.3f kg remaining, %.3f kg requested", e.LotID, e.RemainingKg, e.RequestedKg)
}
