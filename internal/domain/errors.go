package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrIllegalTransition    = errors.New("illegal rental transition")
	ErrCarUnavailable       = errors.New("car is not available")
	ErrCarHasActiveRental   = errors.New("car has an active rental")
	ErrConfirmationRequired = errors.New("action requires confirmation")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrLoginNotSupported    = errors.New("password login is not supported by this auth provider")
	ErrRentalCarMismatch    = errors.New("rental does not belong to car")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NewNotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// PersistenceError wraps a failure reported by the System of Record. Its message
// is the transport's message, unchanged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

type FieldViolation struct {
	Field   string
	Rule    string
	Message string
}

type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the distinct fields that failed, in order of first violation.
func (e *ValidationError) Fields() []string {
	seen := make(map[string]bool, len(e.Violations))
	var out []string
	for _, v := range e.Violations {
		if !seen[v.Field] {
			seen[v.Field] = true
			out = append(out, v.Field)
		}
	}
	return out
}

type TransitionError struct {
	RentalID string
	From     RentalStatus
	To       RentalStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("rental %s cannot move from %s to %s", e.RentalID, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrIllegalTransition
}
