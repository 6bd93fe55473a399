// Package smtpclient implements an SMTP client: it dials a mail
// submission endpoint, negotiates capabilities, optionally upgrades to
// TLS, authenticates, and sends an RFC 5322/MIME message composed from
// a Message value.
package smtpclient

import (
	"context"
	"crypto/tls"
	"net"

	"blitiri.com.ar/go/smtpclient/internal/log"
	"blitiri.com.ar/go/smtpclient/internal/trace"
	"blitiri.com.ar/go/smtpclient/internal/transport"
)

// Credentials authenticates a session. Username/Password are used for
// PLAIN and LOGIN; Username/OAuthToken for XOAUTH2. Which mechanism
// actually runs is chosen by the server's offered AUTH capability, not
// by which fields are set here.
type Credentials struct {
	Username   string
	Password   string
	OAuthToken string
}

// Client holds configuration shared across calls to Dial: nothing
// here is connection state, so one Client may Dial many SmtpClients,
// including concurrent ones. The concurrency rules for a single
// session are on SmtpClient.
type Client struct {
	// LocalName is the hostname sent as the EHLO argument. Defaults
	// to "localhost" when empty.
	LocalName string

	// TLSConfig customizes the TLS handshake for smtps and STARTTLS
	// connections (e.g. to set RootCAs). May be nil.
	TLSConfig *tls.Config

	// VerifyConnection, if set, is installed as the handshake's
	// crypto/tls.Config.VerifyConnection: it runs during the handshake,
	// after Go's own certificate validation (which it does not
	// replace), and a non-nil error from it aborts the handshake.
	VerifyConnection func(tls.ConnectionState) error

	// Logger receives the session trace: a Debug line for every
	// command sent, every reply line received and a completed STARTTLS
	// upgrade, and an Error line when the dialog fails. Other state
	// transitions are not logged. Defaults to the package-level
	// log.Default when nil.
	Logger *log.Logger
}

// SmtpClient is a single, one-shot SMTP session. It owns one
// Connection and is not safe to use from more than one goroutine at a
// time; build a new SmtpClient (via Client.Dial) per concurrent send.
type SmtpClient struct {
	client *Client
	sess   *session
}

// New returns a Client with default configuration.
func New() *Client {
	return &Client{}
}

func (c *Client) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default
}

// Dial connects to the server identified by a "smtp://" or "smtps://"
// URL and returns an SmtpClient ready for Send. The context bounds
// only the initial TCP connect; reads and writes afterward are
// unbounded, per this package's declared no-timeouts policy.
func (c *Client) Dial(ctx context.Context, serverURL string) (*SmtpClient, error) {
	addr, err := ParseServerURL(serverURL)
	if err != nil {
		return nil, err
	}

	var d net.Dialer
	rawConn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr.Host, addr.Port))
	if err != nil {
		return nil, wrapError(UnexpectedServerResponse, err)
	}

	var conn *transport.Connection
	if addr.Protocol == transport.SMTPS {
		conf := c.tlsConfig(addr.Host)
		tlsConn := tls.Client(rawConn, conf)
		if err := tlsConn.Handshake(); err != nil {
			rawConn.Close()
			return nil, wrapError(UnexpectedServerResponse, err)
		}
		conn = transport.Wrap(tlsConn, addr.Host, addr.Port, transport.SMTPS)
	} else {
		conn = transport.Wrap(rawConn, addr.Host, addr.Port, transport.SMTP)
	}

	tr := trace.New("Session", addr.Host, c.logger())
	return &SmtpClient{client: c, sess: newSession(conn, c.logger(), tr)}, nil
}

func (c *Client) tlsConfig(host string) *tls.Config {
	conf := c.TLSConfig
	if conf == nil {
		conf = &tls.Config{}
	} else {
		conf = conf.Clone()
	}
	if conf.ServerName == "" {
		conf.ServerName = host
	}
	if c.VerifyConnection != nil {
		conf.VerifyConnection = c.VerifyConnection
	}
	return conf
}

// Send runs the full session dialog: greeting, EHLO, optional
// STARTTLS upgrade, optional authentication, envelope, and the
// composed message, then closes the connection. creds may be nil to
// skip authentication.
func (sc *SmtpClient) Send(msg *Message, creds *Credentials) error {
	defer sc.sess.tr.Finish()

	composed, err := Compose(msg)
	if err != nil {
		sc.sess.abort()
		return err
	}

	localName := sc.client.LocalName

	if err := sc.sess.greet(localName); err != nil {
		sc.sess.quit()
		return sc.sess.tr.Error(err)
	}
	if _, err := sc.sess.negotiate(); err != nil {
		sc.sess.quit()
		return sc.sess.tr.Error(err)
	}

	tlsConf := sc.client.TLSConfig
	if err := sc.sess.maybeUpgradeTLS(localName, tlsConf, sc.client.VerifyConnection); err != nil {
		sc.sess.quit()
		return sc.sess.tr.Error(err)
	}

	if creds != nil {
		if err := sc.sess.authenticate(creds); err != nil {
			sc.sess.quit()
			return sc.sess.tr.Error(err)
		}
	}

	if len(msg.To) == 0 {
		sc.sess.quit()
		return sc.sess.tr.Error(protocolError(ExpectToAddress))
	}

	to := make([]string, 0, len(msg.To)+len(msg.Cc)+len(msg.Bcc))
	for _, a := range msg.To {
		to = append(to, a.Address)
	}
	for _, a := range msg.Cc {
		to = append(to, a.Address)
	}
	for _, a := range msg.Bcc {
		to = append(to, a.Address)
	}

	if err := sc.sess.envelope(msg.From.Address, to); err != nil {
		sc.sess.quit()
		return sc.sess.tr.Error(err)
	}

	if err := sc.sess.sendData(composed); err != nil {
		sc.sess.quit()
		return sc.sess.tr.Error(err)
	}

	return sc.sess.quit()
}

// Send is a convenience wrapper: dial serverURL, run the full dialog,
// and close the connection.
func Send(ctx context.Context, serverURL string, msg *Message, creds *Credentials) error {
	c := New()
	sc, err := c.Dial(ctx, serverURL)
	if err != nil {
		return err
	}
	return sc.Send(msg, creds)
}
