package core

import (
	"errors"
	"fmt"
	"os"
)

// UsageError is a missing or invalid argument. It is reported before any
// network activity and exits with code 2.
type UsageError struct {
	Err error
}

func NewUsageError(err error) *UsageError {
	return &UsageError{Err: err}
}

func Usagef(format string, args ...any) *UsageError {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// OperationError names the operation that failed.
type OperationError struct {
	Operation string
	Err       error
}

// Failed wraps err with the operation name used when reporting it.
func Failed(operation string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, Err: err}
}

func (e *OperationError) Error() string {
	return e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// ReportError prints err the way its kind requires.
func ReportError(err error) {
	if err == nil {
		return
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "Error: %s\nRun 'tabrefresh --help' for usage.\n", usageErr.Error())
		return
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		PrintError(opErr.Operation, opErr.Err)
		return
	}
	PrintError("Command", err)
}
