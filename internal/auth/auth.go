// Package auth implements the client side of the SMTP AUTH mechanisms
// this module supports: PLAIN, LOGIN and XOAUTH2.
package auth

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/text/secure/precis"
)

// Mechanism identifies a supported SMTP AUTH mechanism.
type Mechanism int

const (
	// None means the server offered no mechanism we support.
	None Mechanism = iota
	Plain
	Login
	Xoauth2
)

func (m Mechanism) String() string {
	switch m {
	case Plain:
		return "PLAIN"
	case Login:
		return "LOGIN"
	case Xoauth2:
		return "XOAUTH2"
	default:
		return "NONE"
	}
}

// Select reduces a server's offered AUTH sub-tokens to the single
// highest-precedence mechanism this client supports. Precedence is
// XOAUTH2 > LOGIN > PLAIN; unknown tokens are ignored.
func Select(offered []string) Mechanism {
	have := map[string]bool{}
	for _, tok := range offered {
		have[tok] = true
	}

	switch {
	case have["XOAUTH2"]:
		return Xoauth2
	case have["LOGIN"]:
		return Login
	case have["PLAIN"]:
		return Plain
	default:
		return None
	}
}

// NormalizeUsername applies PRECIS case-mapped profile normalization to a
// username before it is used in an AUTH exchange, the same treatment the
// teacher applies to usernames it receives over the wire.
//
// On error, the original username is returned to simplify callers.
func NormalizeUsername(user string) (string, error) {
	norm, err := precis.UsernameCaseMapped.String(user)
	if err != nil {
		return user, err
	}
	return norm, nil
}

// PlainInitialResponse builds the base64 payload for "AUTH PLAIN <payload>":
// \0 + username + \0 + password.
func PlainInitialResponse(user, password string) string {
	raw := "\x00" + user + "\x00" + password
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// LoginUsernameResponse and LoginPasswordResponse build the base64 payloads
// for the two challenge/response round trips of "AUTH LOGIN".
func LoginUsernameResponse(user string) string {
	return base64.StdEncoding.EncodeToString([]byte(user))
}

func LoginPasswordResponse(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(password))
}

// Expected LOGIN challenge payloads, after base64 decoding; any other
// payload is a protocol violation.
const (
	loginUsernamePrompt = "Username:"
	loginPasswordPrompt = "Password:"
)

// CheckLoginChallenge verifies a decoded LOGIN challenge payload matches
// what RFC 4954's common implementation sends ("Username:" or "Password:").
func CheckLoginChallenge(decoded []byte, wantPassword bool) error {
	want := loginUsernamePrompt
	if wantPassword {
		want = loginPasswordPrompt
	}
	if string(decoded) != want {
		return fmt.Errorf("unexpected LOGIN challenge %q, expected %q", decoded, want)
	}
	return nil
}

// Xoauth2InitialResponse builds the base64 payload for "AUTH XOAUTH2
// <payload>": user=<username>\x01auth=Bearer <token>\x01\x01.
func Xoauth2InitialResponse(user, token string) string {
	raw := "user=" + user + "\x01auth=Bearer " + token + "\x01\x01"
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeChallenge base64-decodes a server AUTH challenge payload.
func DecodeChallenge(payload string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(payload)
}
