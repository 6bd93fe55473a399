package smtpclient

import (
	"strings"

	"blitiri.com.ar/go/smtpclient/internal/auth"
)

// ClientExtensions records the capabilities negotiated during the most
// recent EHLO exchange.
type ClientExtensions struct {
	SmtpUtf8        bool
	EightBitMime    bool
	StarttlsOffered bool
	Auth            auth.Mechanism
}

// parseExtensions reduces the payload lines of a 250 EHLO reply (the
// continuation lines, without the leading "250-"/"250 ") to a
// ClientExtensions value. Unknown first tokens are ignored.
func parseExtensions(lines []string) *ClientExtensions {
	ext := &ClientExtensions{}
	var authTokens []string

	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "AUTH":
			authTokens = append(authTokens, fields[1:]...)
		case "SMTPUTF8":
			ext.SmtpUtf8 = true
		case "8BITMIME":
			ext.EightBitMime = true
		case "STARTTLS":
			ext.StarttlsOffered = true
		}
	}

	if len(authTokens) > 0 {
		upper := make([]string, len(authTokens))
		for i, t := range authTokens {
			upper[i] = strings.ToUpper(t)
		}
		ext.Auth = auth.Select(upper)
	}

	return ext
}

// hexBoundary renders n random bytes as lowercase hex. message.go uses
// it for MIME boundaries, Message-IDs and Content-IDs.
func hexBoundary(randomBytes []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(randomBytes)*2)
	for i, b := range randomBytes {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0f]
	}
	return string(out)
}
