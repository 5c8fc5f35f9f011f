// Package errors provides coded errors for the board tooling.
//
// A code names the kind of failure, so the CLI exit status, the HTTP
// response status and the MCP tool result can all be derived from the same
// error value.
//
// # Error Codes
//
//   - INVALID_*: input that could not be accepted (selectors, payloads, config)
//   - NOT_FOUND / UNRESOLVED_REFERENCE: lookups that came back empty
//   - NETWORK_ERROR / TIMEOUT / RATE_LIMITED: remote resolver failures
//   - UNSUPPORTED / INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSelector, "bad fragment %q", target)
//	if errors.Is(err, errors.ErrCodeInvalidSelector) {
//	    // skip this entry
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
//
// [Is] and [GetCode] look through wrapped errors, so a coded error keeps its
// code after fmt.Errorf("...: %w", err).
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error kind.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidSelector Code = "INVALID_SELECTOR"
	ErrCodeInvalidPayload  Code = "INVALID_PAYLOAD"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	ErrCodeNotFound            Code = "NOT_FOUND"
	ErrCodeUnresolvedReference Code = "UNRESOLVED_REFERENCE"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

type codeInfo struct {
	status int
	input  bool
}

var codes = map[Code]codeInfo{
	ErrCodeInvalidInput:        {http.StatusBadRequest, true},
	ErrCodeInvalidFormat:       {http.StatusBadRequest, true},
	ErrCodeInvalidSelector:     {http.StatusBadRequest, true},
	ErrCodeInvalidPayload:      {http.StatusBadRequest, true},
	ErrCodeInvalidConfig:       {http.StatusInternalServerError, true},
	ErrCodeInvalidName:         {http.StatusBadRequest, true},
	ErrCodeNotFound:            {http.StatusNotFound, false},
	ErrCodeUnresolvedReference: {http.StatusNotFound, false},
	ErrCodeNetwork:             {http.StatusBadGateway, false},
	ErrCodeTimeout:             {http.StatusGatewayTimeout, false},
	ErrCodeRateLimited:         {http.StatusTooManyRequests, false},
	ErrCodeUnsupported:         {http.StatusNotImplemented, false},
	ErrCodeInternal:            {http.StatusInternalServerError, false},
}

// Input reports whether c blames the caller's input rather than the
// environment.
func (c Code) Input() bool { return codes[c].input }

// Error is an error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without the code prefix
// and cause, or err.Error() for any other error.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status the HTTP API answers with. Errors
// without a code are internal errors.
func HTTPStatus(err error) int {
	if info, ok := codes[GetCode(err)]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
