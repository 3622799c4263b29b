// Package ocrerr defines the error taxonomy shared by the OCR assembly stages.
//
// Two kinds of failure exist and both are deterministic functions of the
// input, so none of them is retryable:
//   - InvalidInput: malformed score matrices, empty alphabets, degenerate quads
//   - PipelineDesync: region, angle and text line sequences that are no
//     longer index-aligned (an external collaborator broke its contract)
//
// Callers test for a kind with errors.Is:
//
//	if errors.Is(err, ocrerr.ErrPipelineDesync) {
//	    // discard everything from this detect call
//	}
package ocrerr

import (
	"fmt"
)

// Code identifies the kind of failure.
type Code string

const (
	CodeInvalidInput   Code = "INVALID_INPUT"
	CodePipelineDesync Code = "PIPELINE_DESYNC"
)

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidInput   = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrPipelineDesync = &Error{Code: CodePipelineDesync, Message: "pipeline desync"}
)

// Error is a structured failure raised by one of the assembly stages.
type Error struct {
	Code    Code
	Op      string // operation that failed, e.g. "ctc.Decode"
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Code, which makes every
// InvalidInput error match ErrInvalidInput regardless of Op and Message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// InvalidInput builds an INVALID_INPUT error for op.
func InvalidInput(op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    CodeInvalidInput,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Desync builds a PIPELINE_DESYNC error for op.
func Desync(op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    CodePipelineDesync,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches cause to a new error of the given code.
func Wrap(code Code, op string, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}
