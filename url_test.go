package smtpclient

import (
	"errors"
	"testing"

	"blitiri.com.ar/go/smtpclient/internal/transport"
)

func TestParseServerURL(t *testing.T) {
	cases := []struct {
		url      string
		wantHost string
		wantPort string
		wantProt transport.Protocol
	}{
		{"smtp://mail.example.org", "mail.example.org", "1025", transport.SMTP},
		{"smtp://mail.example.org:2525", "mail.example.org", "2525", transport.SMTP},
		{"smtps://mail.example.org", "mail.example.org", "465", transport.SMTPS},
	}
	for _, c := range cases {
		addr, err := ParseServerURL(c.url)
		if err != nil {
			t.Fatalf("ParseServerURL(%q): %v", c.url, err)
		}
		if addr.Host != c.wantHost || addr.Port != c.wantPort || addr.Protocol != c.wantProt {
			t.Errorf("ParseServerURL(%q) = %+v, want host=%s port=%s proto=%v",
				c.url, addr, c.wantHost, c.wantPort, c.wantProt)
		}
	}
}

func TestParseServerURLErrors(t *testing.T) {
	cases := []struct {
		url      string
		wantCode ErrorCode
	}{
		{"smtp://", UriMissingHost},
		{"ftp://mail.example.org", InvalidSmtpScheme},
	}
	for _, c := range cases {
		_, err := ParseServerURL(c.url)
		var e *Error
		if !errors.As(err, &e) || e.Code != c.wantCode {
			t.Errorf("ParseServerURL(%q) error = %v, want code %v", c.url, err, c.wantCode)
		}
	}
}
