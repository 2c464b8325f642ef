// Package errs holds the error classes shared by the filter, record and score packages.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument: invalid parameter value, unknown filter, subject mismatch, missing required column.
	ErrArgument = errors.New("argument error")
	// ErrProgramming: typed access against the wrong parameter type, unregistered filter.
	ErrProgramming = errors.New("programming error")
	// ErrNotImplemented: a filter was applied to a record kind it does not support.
	ErrNotImplemented = errors.New("not implemented")
	// ErrFileParse: malformed sub-field or line.
	ErrFileParse = errors.New("file parse error")
)

func Argument(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrArgument, fmt.Sprintf(format, a...))
}

func Programming(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrProgramming, fmt.Sprintf(format, a...))
}

func NotImplemented(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, fmt.Sprintf(format, a...))
}

func FileParse(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrFileParse, fmt.Sprintf(format, a...))
}
