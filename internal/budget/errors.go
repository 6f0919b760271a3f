package budget

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine. Typed errors below wrap them so
// callers can match with errors.Is and still reach the detail with errors.As.
var (
	ErrInvalidExpense          = errors.New("invalid expense")
	ErrAllocationTotalMismatch = errors.New("allocation percentages must total 100")
	ErrInvalidAllocation       = errors.New("invalid allocation")
	ErrMissingCategory         = errors.New("no budget category matches expense")
	ErrInvalidThresholds       = errors.New("invalid alert thresholds")
	ErrAlertNotFound           = errors.New("alert not found")
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInvalidTheme            = errors.New("invalid theme mode")
)

// InvalidExpenseError names the expense field that failed validation.
type InvalidExpenseError struct {
	Field  string
	Reason string
}

func (e *InvalidExpenseError) Error() string {
	return fmt.Sprintf("invalid expense: %s %s", e.Field, e.Reason)
}

func (e *InvalidExpenseError) Unwrap() error { return ErrInvalidExpense }

// AllocationTotalMismatchError carries the percentage total that was rejected.
type AllocationTotalMismatchError struct {
	Total int
}

func (e *AllocationTotalMismatchError) Error() string {
	return fmt.Sprintf("allocation percentages total %d%%, must be 100%%", e.Total)
}

func (e *AllocationTotalMismatchError) Unwrap() error { return ErrAllocationTotalMismatch }

// MissingCategoryError is a notice: the expense was recorded but no category
// absorbed it.
type MissingCategoryError struct {
	Category string
}

func (e *MissingCategoryError) Error() string {
	return fmt.Sprintf("no budget category named %q", e.Category)
}

func (e *MissingCategoryError) Unwrap() error { return ErrMissingCategory }
