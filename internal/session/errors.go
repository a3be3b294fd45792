package session

import (
	"errors"
	"fmt"

	"github.com/payrecon-dev/payrecon/internal/model"
)

// ErrNoValidData reports input that produced no usable records. It is an
// informational outcome, not a failure.
var ErrNoValidData = errors.New("no valid data found")

// ErrNoLedger is returned when a section runs before a ledger was loaded.
var ErrNoLedger = errors.New("no ledger loaded")

// ComputationError wraps an unexpected failure inside grouping or joining.
// Session state from earlier runs is left as it was.
type ComputationError struct {
	Op       string
	Category model.Category
	Err      error
}

func (e ComputationError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Category, e.Err)
}

func (e ComputationError) Unwrap() error { return e.Err }

// compute runs fn and turns a panic into a ComputationError.
func compute[T any](op string, category model.Category, fn func() T) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = ComputationError{Op: op, Category: category, Err: cause}
		}
	}()
	return fn(), nil
}
