package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors. These indicate a caller or registry-data bug, never a
	// route-infeasibility outcome.
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidInput     = errors.New("invalid input")

	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrRouteNotFound      = fmt.Errorf("%w: route", ErrNotFound)
	ErrEvaluationNotFound = fmt.Errorf("%w: evaluation", ErrNotFound)

	// Solver errors
	ErrStepBudgetExceeded = errors.New("integration step budget exceeded")
)

// NewParameterError reports a numeric argument outside its physical domain.
func NewParameterError(name string, value float64, constraint string) error {
	return fmt.Errorf("%w: %s=%g (must be %s)", ErrInvalidParameter, name, value, constraint)
}

// NewInputError reports a structurally malformed input (shape, enum, missing field).
func NewInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// NewRouteNotFoundError reports a registry miss.
func NewRouteNotFoundError(key string) error {
	return fmt.Errorf("%w with key %s", ErrRouteNotFound, key)
}

// NewEvaluationNotFoundError reports a result-store miss.
func NewEvaluationNotFoundError(id string) error {
	return fmt.Errorf("%w with id %s", ErrEvaluationNotFound, id)
}

// Error checking helpers
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCallerError reports whether err is one of the fail-fast input classes.
func IsCallerError(err error) bool {
	return IsInvalidParameter(err) || IsInvalidInput(err)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
