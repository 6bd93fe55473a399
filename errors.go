package smtpclient

import (
	"fmt"

	"blitiri.com.ar/go/smtpclient/internal/response"
)

// ErrorCode identifies a member of this package's closed error
// taxonomy, distinct from the server-code mappings in ServerCode.
type ErrorCode int

const (
	_ ErrorCode = iota

	// InvalidServerGreetings means the initial server line's code was
	// not 220.
	InvalidServerGreetings
	// InvalidTlsHandshakeResponse means the STARTTLS reply code was
	// not 220.
	InvalidTlsHandshakeResponse
	// HandshakeOversize means the lines of one server reply (such as
	// the EHLO reply) added up to more than 64 KiB.
	HandshakeOversize
	// ExpectToAddress means Send was called with no "to" recipients.
	ExpectToAddress
	// TlsRequiredForAuth means credentials were supplied but the
	// connection is not TLS.
	TlsRequiredForAuth
	// UnsupportedAuthHandshake means credentials were supplied but
	// the server offered no mechanism this client supports.
	UnsupportedAuthHandshake
	// UnexpectedServerResponse wraps transport failures (dial, read,
	// write, the smtps handshake), unparseable reply lines, and
	// malformed AUTH LOGIN challenge payloads. A reply whose code is
	// outside the set valid for the current step is reported as
	// ServerCodeError instead.
	UnexpectedServerResponse
	// ServerCodeError means the reply code mapped to one of the
	// named server-code variants in ServerCode.
	ServerCodeError
	// ExpectedEmailDomain means Message.From.Address has no "@".
	ExpectedEmailDomain
	// UriMissingHost means a server URL had an empty host.
	UriMissingHost
	// InvalidSmtpScheme means a server URL's scheme was neither
	// "smtp" nor "smtps".
	InvalidSmtpScheme
)

var errorCodeNames = map[ErrorCode]string{
	InvalidServerGreetings:      "InvalidServerGreetings",
	InvalidTlsHandshakeResponse: "InvalidTlsHandshakeResponse",
	HandshakeOversize:           "HandshakeOversize",
	ExpectToAddress:             "ExpectToAddress",
	TlsRequiredForAuth:          "TlsRequiredForAuth",
	UnsupportedAuthHandshake:    "UnsupportedAuthHandshake",
	UnexpectedServerResponse:    "UnexpectedServerResponse",
	ServerCodeError:             "ServerCodeError",
	ExpectedEmailDomain:         "ExpectedEmailDomain",
	UriMissingHost:              "UriMissingHost",
	InvalidSmtpScheme:           "InvalidSmtpScheme",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return "UnknownErrorCode"
}

// Error is the single error type this package returns. Transport and
// TLS failures are wrapped unchanged (Unwrap exposes the underlying
// error); protocol and composition failures carry a Code, and server
// responses the classifier recognized additionally carry a ServerCode.
type Error struct {
	Code       ErrorCode
	ServerCode response.ServerCode
	Line       response.Line
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Code == ServerCodeError:
		return fmt.Sprintf("smtpclient: %d %s: %s", e.Line.Code, e.ServerCode, e.Line.Payload)
	case e.Err != nil:
		return fmt.Sprintf("smtpclient: %s: %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("smtpclient: %s", e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func protocolError(code ErrorCode) error {
	return &Error{Code: code}
}

func wrapError(code ErrorCode, err error) error {
	return &Error{Code: code, Err: err}
}

// classifyResponse converts an unexpected server reply into an Error,
// preferring the named ServerCode mapping when one exists.
func classifyResponse(line response.Line) error {
	sc := response.Classify(line.Code)
	return &Error{Code: ServerCodeError, ServerCode: sc, Line: line}
}
