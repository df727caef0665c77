// Package apperr defines the error taxonomy of the attendance core.
// SecurityError and StateError are terminal for the attempted action and
// their messages are shown verbatim to the operator; InfraError means the
// store or an external service failed and the caller may retry manually.
package apperr

import (
	"errors"
	"fmt"
)

type SecurityError struct {
	Message string
}

func (e *SecurityError) Error() string { return e.Message }

func Securityf(format string, args ...interface{}) *SecurityError {
	return &SecurityError{Message: fmt.Sprintf(format, args...)}
}

type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

func Statef(format string, args ...interface{}) *StateError {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

type InfraError struct {
	Message string
	Err     error
}

func (e *InfraError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *InfraError) Unwrap() error { return e.Err }

func Infra(message string, err error) *InfraError {
	return &InfraError{Message: message, Err: err}
}

func IsSecurity(err error) bool {
	var target *SecurityError
	return errors.As(err, &target)
}

func IsState(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}

func IsInfra(err error) bool {
	var target *InfraError
	return errors.As(err, &target)
}
