package pipeline

import "errors"

// emptyInputError: the request text is empty after trimming.
type emptyInputError struct{}

func (emptyInputError) Error() string { return "empty input: nothing to summarize" }

func ErrEmptyInput() error { return emptyInputError{} }

func IsEmptyInput(err error) bool {
	var e emptyInputError
	return errors.As(err, &e)
}

// invalidParameterError: out-of-range temperature/top-p/max-tokens.
type invalidParameterError struct{ msg string }

func (e invalidParameterError) Error() string { return "invalid parameter: " + e.msg }

func ErrInvalidParameter(msg string) error { return invalidParameterError{msg: msg} }

func IsInvalidParameter(err error) bool {
	var e invalidParameterError
	return errors.As(err, &e)
}

// modelNotResidentError: pipeline construction against a stale handle.
type modelNotResidentError struct{ id string }

func (e modelNotResidentError) Error() string { return "model not resident: " + e.id }

func ErrModelNotResident(id string) error { return modelNotResidentError{id: id} }

func IsModelNotResident(err error) bool {
	var e modelNotResidentError
	return errors.As(err, &e)
}

// generationFailedError wraps an engine inference error, uninterpreted.
type generationFailedError struct {
	id  string
	err error
}

func (e generationFailedError) Error() string {
	return "generation failed: " + e.id + ": " + e.err.Error()
}
func (e generationFailedError) Unwrap() error { return e.err }

func ErrGenerationFailed(id string, err error) error { return generationFailedError{id: id, err: err} }

func IsGenerationFailed(err error) bool {
	var e generationFailedError
	return errors.As(err, &e)
}
