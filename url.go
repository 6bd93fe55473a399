package smtpclient

import (
	"net/url"
	"strconv"

	"golang.org/x/net/idna"

	"blitiri.com.ar/go/smtpclient/internal/transport"
)

// ServerAddr is the result of parsing a server URL: a resolved
// host/port pair and the transport it implies.
type ServerAddr struct {
	Host     string
	Port     string
	Protocol transport.Protocol
}

const (
	defaultSMTPPort  = "1025"
	defaultSMTPSPort = "465"
)

// ParseServerURL parses "smtp://host[:port]" or "smtps://host[:port]"
// into a ServerAddr, normalizing the host through IDNA so non-ASCII
// hostnames reach the dialer in their wire form.
func ParseServerURL(raw string) (*ServerAddr, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, wrapError(InvalidSmtpScheme, err)
	}

	var proto transport.Protocol
	var defaultPort string
	switch u.Scheme {
	case "smtp":
		proto = transport.SMTP
		defaultPort = defaultSMTPPort
	case "smtps":
		proto = transport.SMTPS
		defaultPort = defaultSMTPSPort
	default:
		return nil, protocolError(InvalidSmtpScheme)
	}

	host := u.Hostname()
	if host == "" {
		return nil, protocolError(UriMissingHost)
	}

	host, err = idna.ToASCII(host)
	if err != nil {
		return nil, wrapError(InvalidSmtpScheme, err)
	}

	port := u.Port()
	if port == "" {
		port = defaultPort
	} else if _, err := strconv.Atoi(port); err != nil {
		return nil, wrapError(InvalidSmtpScheme, err)
	}

	return &ServerAddr{Host: host, Port: port, Protocol: proto}, nil
}
