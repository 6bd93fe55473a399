// Package response parses SMTP server reply lines and classifies their
// numeric codes into a closed error taxonomy.
//
// It plays the role the teacher's internal/smtp package delegates to
// net/textproto: here the parsing is done by hand, since the session
// driver needs to distinguish continuation lines from terminal ones
// itself (net/textproto.ReadResponse already assumes the multi-line
// draining policy we want to control explicitly).
package response

import (
	"fmt"
)

// Line is one parsed server reply line.
type Line struct {
	Code         int
	Continuation bool
	Payload      string
}

// Parse splits a single server reply line (without its trailing CRLF)
// into a 3-digit code, a continuation marker, and a payload.
//
// The first three bytes must be decimal digits. Byte 4, if present,
// distinguishes '-' (continuation: more lines follow) from ' '
// (terminal line). Any other byte 4 is treated as the start of the
// payload, per spec. Lines shorter than 4 bytes are a protocol
// violation.
func Parse(line string) (Line, error) {
	if len(line) < 4 {
		return Line{}, fmt.Errorf("response: line too short: %q", line)
	}

	code := 0
	for i := 0; i < 3; i++ {
		c := line[i]
		if c < '0' || c > '9' {
			return Line{}, fmt.Errorf("response: malformed code: %q", line)
		}
		code = code*10 + int(c-'0')
	}

	switch line[3] {
	case '-':
		return Line{Code: code, Continuation: true, Payload: line[4:]}, nil
	case ' ':
		return Line{Code: code, Continuation: false, Payload: line[4:]}, nil
	default:
		// Not a recognized separator: treat the rest, including byte 4,
		// as payload, and the line as terminal.
		return Line{Code: code, Continuation: false, Payload: line[3:]}, nil
	}
}
