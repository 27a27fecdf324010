package manager

import (
	"errors"
	"fmt"
)

// modelNotFoundError: the id does not resolve to a catalog spec.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// modelNotAvailableError: known id, weights absent locally.
type modelNotAvailableError struct{ id, path string }

func (e modelNotAvailableError) Error() string {
	return fmt.Sprintf("model not available: %s (no weights at %s)", e.id, e.path)
}

func ErrModelNotAvailable(id, path string) error { return modelNotAvailableError{id: id, path: path} }

func IsModelNotAvailable(err error) bool {
	var e modelNotAvailableError
	return errors.As(err, &e)
}

// insufficientMemoryError: admitting the load would exceed the budget.
type insufficientMemoryError struct {
	id                         string
	requiredMB, usedMB, budget int
}

func (e insufficientMemoryError) Error() string {
	return fmt.Sprintf("insufficient memory for %s: need %dMB, %d/%dMB in use (unload a model first)",
		e.id, e.requiredMB, e.usedMB, e.budget)
}

func ErrInsufficientMemory(id string, requiredMB, usedMB, budget int) error {
	return insufficientMemoryError{id: id, requiredMB: requiredMB, usedMB: usedMB, budget: budget}
}

func IsInsufficientMemory(err error) bool {
	var e insufficientMemoryError
	return errors.As(err, &e)
}

// loadFailedError wraps an engine error raised during weight loading.
type loadFailedError struct {
	id  string
	err error
}

func (e loadFailedError) Error() string { return "load failed: " + e.id + ": " + e.err.Error() }
func (e loadFailedError) Unwrap() error { return e.err }

func ErrLoadFailed(id string, err error) error { return loadFailedError{id: id, err: err} }

func IsLoadFailed(err error) bool {
	var e loadFailedError
	return errors.As(err, &e)
}

// modelUnloadedError: a borrowed handle was invalidated mid-use.
type modelUnloadedError struct{ id string }

func (e modelUnloadedError) Error() string { return "model unloaded: " + e.id }

func ErrModelUnloaded(id string) error { return modelUnloadedError{id: id} }

func IsModelUnloaded(err error) bool {
	var e modelUnloadedError
	return errors.As(err, &e)
}

// notResidentError: unload/use of a model that is not currently resident.
type notResidentError struct{ id, phase string }

func (e notResidentError) Error() string { return "model not resident: " + e.id + " (" + e.phase + ")" }

func ErrNotResident(id, phase string) error { return notResidentError{id: id, phase: phase} }

func IsNotResident(err error) bool {
	var e notResidentError
	return errors.As(err, &e)
}
