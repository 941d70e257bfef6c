// Package errs defines the error taxonomy surfaced to CLI users.
//
// All three kinds are terminal for the current invocation: they signal
// malformed input or a legitimately missing object, never a transient
// condition, so nothing here is ever retried.
package errs

import (
	"errors"
	"fmt"
)

// UsageError reports missing or ambiguous required input, such as a failed
// natural-key lookup or an absent required option.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// Usagef builds a UsageError from a format string.
func Usagef(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports malformed attribute syntax. Token is the offending
// input token, echoed back to the user.
type ValidationError struct {
	Token string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError for the given token.
func Validationf(token, format string, args ...any) error {
	return &ValidationError{Token: token, Msg: fmt.Sprintf(format, args...)}
}

// FormatError reports a malformed bulk-file row. Line is 1-based, counting
// the header as line 1.
type FormatError struct {
	Line int
	Msg  string
}

func (e *FormatError) Error() string { return e.Msg }

// Formatf builds a FormatError for the given line.
func Formatf(line int, format string, args ...any) error {
	return &FormatError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// IsUsage reports whether err is a UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
