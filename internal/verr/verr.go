// internal/verr/verr.go
//
// Error taxonomy for the Verba backend.
// Every business/validation failure produced by the core carries one of
// the numeric codes below; the route layer serializes the code and
// message into the response envelope. Anything that is not a tagged
// *Error (driver failures, I/O, etc.) classifies as CodeInfrastructure.

package verr

import (
	"errors"
	"fmt"
)

// Code is a stable, caller-visible error code.
type Code int

const (
	CodeTimestamp              Code = 1
	CodeTeamSize               Code = 2
	CodeNotFound               Code = 3
	CodeValidation             Code = 4
	CodeActiveGame             Code = 5
	CodeExpiredGame            Code = 6
	CodeTooManyWords           Code = 7
	CodeInvalidGameToken       Code = 8
	CodeInvalidLoginOrPassword Code = 9
	CodeInfrastructure         Code = 1000
)

// name returns the symbolic tag used in error messages.
func (c Code) name() string {
	switch c {
	case CodeTimestamp:
		return "Timestamp"
	case CodeTeamSize:
		return "TeamSize"
	case CodeNotFound:
		return "NotFound"
	case CodeValidation:
		return "Validation"
	case CodeActiveGame:
		return "ActiveGame"
	case CodeExpiredGame:
		return "ExpiredGame"
	case CodeTooManyWords:
		return "TooManyWords"
	case CodeInvalidGameToken:
		return "InvalidGameToken"
	case CodeInvalidLoginOrPassword:
		return "InvalidLoginOrPassword"
	case CodeInfrastructure:
		return "Infrastructure"
	}
	return "Unknown"
}

// Error is a tagged failure. All core operations return either a nil
// error or one of these; nothing else crosses the service boundary.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code.name(), e.Message)
}

// New builds a tagged error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Infra wraps an underlying infrastructure failure so it classifies as
// CodeInfrastructure while keeping the cause in the message.
func Infra(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: CodeInfrastructure, Message: err.Error()}
}

// CodeOf extracts the taxonomy code from err. Untagged errors map to
// CodeInfrastructure.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInfrastructure
}

// MessageOf returns the caller-visible message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
