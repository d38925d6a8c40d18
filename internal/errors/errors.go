package errors

import (
	"errors"
	"fmt"
)

// Code is the stable, caller-visible classification of a failure. Raw vendor
// status codes never travel past this package; FromVendor maps them onto the
// taxonomy as soon as a response is decoded.
type Code string

const (
	CodeNoCompanySelected   Code = "no_company_selected"
	CodeUpstreamAuthFailed  Code = "upstream_auth_failed"
	CodeUpstreamBadRequest  Code = "upstream_bad_request"
	CodeUpstreamNotFound    Code = "upstream_not_found"
	CodeUpstreamServerError Code = "upstream_server_error"
	CodeTransportError      Code = "transport_error"
	CodeConfigurationError  Code = "configuration_error"
)

// Error carries a stable code plus a human-readable message. The message may
// come verbatim from the vendor; it never contains internal URLs or stack
// traces.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a taxonomy error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a taxonomy error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the taxonomy code from anywhere in err's chain. Errors that
// never passed through this package report as upstream_server_error, the safe
// default for an unclassified failure.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUpstreamServerError
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// FromVendor normalizes a vendor status code/message pair. "200" means
// success and yields nil. The vendor's msg field is carried through verbatim
// as the human-readable detail.
func FromVendor(code, msg string) error {
	if code == "200" {
		return nil
	}
	numeric, ok := parseVendorCode(code)
	switch {
	case !ok:
		// Absence of a clear code is itself an error.
		return &Error{Code: CodeUpstreamServerError, Message: msg}
	case numeric == 404:
		return &Error{Code: CodeUpstreamNotFound, Message: msg}
	case numeric >= 400 && numeric <= 499:
		return &Error{Code: CodeUpstreamBadRequest, Message: msg}
	default:
		return &Error{Code: CodeUpstreamServerError, Message: msg}
	}
}

func parseVendorCode(code string) (int, bool) {
	if code == "" {
		return 0, false
	}
	n := 0
	for _, r := range code {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
