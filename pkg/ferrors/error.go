package ferrors

import (
	"fmt"
)

// Kind discriminates the handful of semantically distinct raise sites this
// module needs, collapsed onto a single concrete Error type instead of a
// subclass per kind.
type Kind int

const (
	KindModule Kind = iota
	KindClient
	KindService
	KindValue
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "ClientError"
	case KindService:
		return "ServiceError"
	case KindValue:
		return "ValueError"
	case KindAuthentication:
		return "AuthenticationError"
	default:
		return "ModuleError"
	}
}

// Error is the one error type every package in this module raises. It
// carries enough context to reconstruct the canonical message, serialize
// to a map for logging/API responses, and unwrap to an underlying cause.
type Error struct {
	Kind        Kind
	Code        Code
	Message     string
	Origin      string
	Status      int
	Reason      string
	Details     any
	RequestCurl string
	Errors      []string
	cause       error
}

// Option configures optional fields on a newly constructed Error.
type Option func(*Error)

func WithCause(err error) Option        { return func(e *Error) { e.cause = err } }
func WithStatus(status int) Option      { return func(e *Error) { e.Status = status } }
func WithReason(reason string) Option   { return func(e *Error) { e.Reason = reason } }
func WithDetails(details any) Option    { return func(e *Error) { e.Details = details } }
func WithRequestCurl(curl string) Option {
	return func(e *Error) { e.RequestCurl = curl }
}
func WithOrigin(origin string) Option { return func(e *Error) { e.Origin = origin } }

// WithErrors attaches a list of sub-error messages alongside the
// primary Message, for call sites that fail on more than one
// independent problem at once (e.g. several invalid form fields) rather
// than a single nested cause.
func WithErrors(errs []string) Option { return func(e *Error) { e.Errors = errs } }

// New builds an Error of the given kind/code with the canonical message
// format "<code>: <code-description>: '<msg>'".
func New(kind Kind, code Code, msg string, opts ...Option) *Error {
	e := &Error{
		Kind:    kind,
		Code:    code,
		Message: canonicalMessage(code, msg),
		Origin:  "fortifiedhttp",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func canonicalMessage(code Code, msg string) string {
	return fmt.Sprintf("%d: %s: '%s'", int(code), Desc(code), msg)
}

// Module, Client, Service, Value, Authentication are thin constructors
// mirroring the original taxonomy's distinct raise sites.
func Module(code Code, msg string, opts ...Option) *Error {
	return New(KindModule, code, msg, opts...)
}

func Client(code Code, msg string, opts ...Option) *Error {
	return New(KindClient, code, msg, opts...)
}

func Service(code Code, msg string, opts ...Option) *Error {
	return New(KindService, code, msg, opts...)
}

func Value(msg string, opts ...Option) *Error {
	return New(KindValue, CodeArgument, msg, opts...)
}

func Authentication(msg string, opts ...Option) *Error {
	return New(KindAuthentication, CodeAuthError, msg, opts...)
}

// Gone builds the 410 Gone client error, ported from the original
// taxonomy's RequestsFortifiedClientGoneError: an HTTP status code passed
// through as the error_code, matching §4.2's "codes >= 400 reuse the HTTP
// phrase/description dictionaries" rule rather than a module-range code.
func Gone(msg string, opts ...Option) *Error {
	e := New(KindClient, Code(410), msg, opts...)
	e.Status = 410
	return e
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// ToMap implements the omit-if-null serialization shape: origin, exit
// code/desc/name are always present; message, status, reason, details and
// the originating curl command are present only when set.
func (e *Error) ToMap() map[string]any {
	m := map[string]any{
		"error_origin": e.Origin,
		"exit_code":    int(e.Code),
		"exit_desc":    Desc(e.Code),
		"exit_name":    Name(e.Code),
	}
	if e.Message != "" {
		m["error_message"] = e.Message
	}
	if e.Status != 0 {
		m["error_status"] = e.Status
	}
	if e.Reason != "" {
		m["error_reason"] = e.Reason
	}
	if e.Details != nil {
		m["error_details"] = e.Details
	}
	if e.RequestCurl != "" {
		m["error_request_curl"] = e.RequestCurl
	}
	if len(e.Errors) > 0 {
		m["errors"] = e.Errors
	}
	return m
}
