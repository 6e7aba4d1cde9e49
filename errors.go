package facture

import (
	"errors"
	"fmt"

	"github.com/xraph/facture/param"
	"github.com/xraph/facture/sequence"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("facture: not found")
	ErrAlreadyExists = errors.New("facture: already exists")
	ErrInvalidInput  = errors.New("facture: invalid input")

	// Reference data errors
	ErrCustomerNotFound  = errors.New("facture: customer not found")
	ErrCustomerExists    = errors.New("facture: customer already exists")
	ErrProductNotFound   = errors.New("facture: product not found")
	ErrProductExists     = errors.New("facture: product already exists")
	ErrParameterNotFound = param.ErrNotFound

	// Invoice errors
	ErrInvoiceNotFound  = errors.New("facture: invoice not found")
	ErrAlreadyFinalized = errors.New("facture: invoice already finalized")
	ErrEmptyInvoice     = errors.New("facture: invoice has no line items")
	ErrMissingCustomer  = errors.New("facture: invoice has no customer")

	// Numbering errors
	ErrCorruptCounter = sequence.ErrCorruptCounter
	ErrCommitTimeout  = errors.New("facture: timed out waiting for commit lock")

	// State errors
	ErrCorruptState = errors.New("facture: corrupt stored state")

	// Store errors
	ErrStoreNotReady   = errors.New("facture: store not ready")
	ErrStoreClosed     = errors.New("facture: store is closed")
	ErrMigrationFailed = errors.New("facture: migration failed")
)

// ValidationError represents a validation failure with details.
// It matches errors.Is(err, ErrInvalidInput).
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("facture: validation failed for %s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "facture: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("facture: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrParameterNotFound) ||
		errors.Is(err, ErrInvoiceNotFound)
}

// IsValidation returns true if the error is a caller input error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsPrecondition returns true if the error is an invoice lifecycle
// violation rather than bad input or infrastructure failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrAlreadyFinalized) ||
		errors.Is(err, ErrEmptyInvoice) ||
		errors.Is(err, ErrMissingCustomer)
}

// IsCorruptState returns true if the error indicates stored state that no
// longer parses, e.g. a broken counter or tax rate parameter.
func IsCorruptState(err error) bool {
	return errors.Is(err, ErrCorruptState) ||
		errors.Is(err, ErrCorruptCounter)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCommitTimeout) ||
		errors.Is(err, ErrStoreNotReady)
}
