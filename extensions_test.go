package smtpclient

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"blitiri.com.ar/go/smtpclient/internal/auth"
)

func TestParseExtensions(t *testing.T) {
	lines := []string{
		"mail.example.org",
		"AUTH PLAIN LOGIN",
		"SMTPUTF8",
		"8BITMIME",
		"STARTTLS",
	}
	got := parseExtensions(lines)
	want := &ClientExtensions{
		SmtpUtf8:        true,
		EightBitMime:    true,
		StarttlsOffered: true,
		Auth:            auth.Login, // higher precedence than PLAIN
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseExtensions(%v) mismatch (-want +got):\n%s", lines, diff)
	}
}

func TestParseExtensionsNoAuth(t *testing.T) {
	got := parseExtensions([]string{"mail.example.org", "STARTTLS"})
	want := &ClientExtensions{StarttlsOffered: true, Auth: auth.None}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseExtensions mismatch (-want +got):\n%s", diff)
	}
}
