// Package tlsconst renders TLS version and cipher suite identifiers for
// human-readable logging, e.g. when a session reports the parameters it
// negotiated after a STARTTLS or smtps handshake.
//
// The teacher's version of this package ships its own generated
// version/cipher name tables (go:generate ./generate-ciphers.py). Since
// Go 1.14 crypto/tls exposes CipherSuiteName directly, so CipherSuiteName
// here is a thin wrapper over it. VersionName keeps a small switch of its
// own over the crypto/tls version constants, to render names in this
// client's "TLS-1.2" style.
package tlsconst

import (
	"crypto/tls"
	"fmt"
	"strings"
)

// VersionName returns a human-readable TLS version name, e.g. "TLS-1.2"
// instead of crypto/tls's "TLS 1.2", to match this client's log style.
func VersionName(v uint16) string {
	switch v {
	case tls.VersionSSL30:
		return "SSL-3.0"
	case tls.VersionTLS10:
		return "TLS-1.0"
	case tls.VersionTLS11:
		return "TLS-1.1"
	case tls.VersionTLS12:
		return "TLS-1.2"
	case tls.VersionTLS13:
		return "TLS-1.3"
	default:
		return fmt.Sprintf("TLS-%#04x", v)
	}
}

// CipherSuiteName returns a human-readable cipher suite name, falling
// back to a placeholder for suites crypto/tls does not recognize.
func CipherSuiteName(s uint16) string {
	name := tls.CipherSuiteName(s)
	if strings.HasPrefix(name, "TLS_") {
		return name
	}
	return fmt.Sprintf("TLS_UNKNOWN_CIPHER_SUITE-%#04x", s)
}
