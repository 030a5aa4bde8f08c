package model

import (
	"github.com/pkg/errors"
)

var (
	// ValidationError is the cause of all configuration validation failures.
	ValidationError = errors.New("validation failed")
	// InvalidArgumentError is the cause of errors caused by invalid
	// arguments passed to constructors.
	InvalidArgumentError = errors.New("invalid argument")
	maskAny              = errors.WithStack
)

// InvalidArgument creates a new error caused by InvalidArgumentError.
func InvalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(InvalidArgumentError, format, args...)
}

// IsInvalidArgument returns true if the cause of the given error
// is InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	return errors.Cause(err) == InvalidArgumentError
}

// IsValidation returns true if the cause of the given error
// is ValidationError.
func IsValidation(err error) bool {
	return errors.Cause(err) == ValidationError
}
