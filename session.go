package smtpclient

import (
	"crypto/tls"
	"fmt"
	"strings"

	"blitiri.com.ar/go/smtpclient/internal/auth"
	"blitiri.com.ar/go/smtpclient/internal/log"
	"blitiri.com.ar/go/smtpclient/internal/response"
	"blitiri.com.ar/go/smtpclient/internal/trace"
	"blitiri.com.ar/go/smtpclient/internal/transport"
)

// maxHandshakeSize caps the total bytes read while draining an EHLO
// reply; a server that never sends a terminal line would otherwise
// make negotiate loop forever.
const maxHandshakeSize = 64 * 1024

// session drives one SMTP dialog over a transport.Connection, from
// the initial greeting through QUIT.
type session struct {
	conn   *transport.Connection
	logger *log.Logger
	tr     *trace.Trace
	ext    *ClientExtensions
}

func newSession(conn *transport.Connection, logger *log.Logger, tr *trace.Trace) *session {
	return &session{conn: conn, logger: logger, tr: tr}
}

// readLine reads one CRLF (or bare LF) terminated line and strips the
// terminator.
func (s *session) readLine() (string, error) {
	line, err := s.conn.Reader().ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readReply reads one full server reply: one line if it is terminal,
// or a run of "code-..." continuation lines followed by a terminal
// "code ..." line. If wantCode is non-zero, the first line's code
// must match it or the reply is classified as an error.
func (s *session) readReply(wantCode int) ([]response.Line, error) {
	var lines []response.Line
	total := 0

	for {
		raw, err := s.readLine()
		if err != nil {
			return nil, wrapError(UnexpectedServerResponse, err)
		}

		total += len(raw)
		if total > maxHandshakeSize {
			return nil, protocolError(HandshakeOversize)
		}

		line, err := response.Parse(raw)
		if err != nil {
			return nil, wrapError(UnexpectedServerResponse, err)
		}
		s.tr.Debugf("< %s", raw)

		if len(lines) == 0 && wantCode != 0 && line.Code != wantCode {
			return nil, classifyResponse(line)
		}

		lines = append(lines, line)
		if !line.Continuation {
			break
		}
	}

	return lines, nil
}

func (s *session) writeLine(format string, args ...interface{}) error {
	cmd := fmt.Sprintf(format, args...)
	s.tr.Debugf("> %s", cmd)
	if _, err := s.conn.Writer().WriteString(cmd + "\r\n"); err != nil {
		return wrapError(UnexpectedServerResponse, err)
	}
	return s.conn.Flush()
}

// greet implements Fresh -> Greeted: require 220 on the initial
// greeting, then send EHLO.
func (s *session) greet(localName string) error {
	lines, err := s.readReply(0)
	if err != nil {
		return err
	}
	if lines[0].Code != 220 {
		return protocolError(InvalidServerGreetings)
	}

	return s.ehlo(localName)
}

func (s *session) ehlo(localName string) error {
	if localName == "" {
		localName = "localhost"
	}
	return s.writeLine("EHLO %s", localName)
}

// negotiate implements Greeted -> Negotiated: drain the EHLO reply
// and reduce it to a ClientExtensions value.
func (s *session) negotiate() (*ClientExtensions, error) {
	lines, err := s.readReply(250)
	if err != nil {
		return nil, err
	}

	payloads := make([]string, len(lines))
	for i, l := range lines {
		payloads[i] = l.Payload
	}

	ext := parseExtensions(payloads)
	s.ext = ext
	return ext, nil
}

// maybeUpgradeTLS implements Negotiated -> Upgrading -> Negotiated':
// if on plain transport and the server offered STARTTLS, upgrades and
// re-runs EHLO/negotiate.
func (s *session) maybeUpgradeTLS(localName string, tlsConfig *tls.Config, verify func(tls.ConnectionState) error) error {
	if s.conn.Protocol != transport.SMTP || !s.ext.StarttlsOffered {
		return nil
	}

	if err := s.writeLine("STARTTLS"); err != nil {
		return err
	}

	lines, err := s.readReply(0)
	if err != nil {
		return err
	}
	if lines[0].Code != 220 {
		return protocolError(InvalidTlsHandshakeResponse)
	}

	conf := tlsConfig
	if conf == nil {
		conf = &tls.Config{}
	}
	if verify != nil {
		conf = conf.Clone()
		conf.VerifyConnection = verify
	}

	if _, err := s.conn.UpgradeTLS(conf); err != nil {
		return wrapError(InvalidTlsHandshakeResponse, err)
	}
	s.tr.Debugf("TLS established")

	if err := s.ehlo(localName); err != nil {
		return err
	}
	_, err = s.negotiate()
	return err
}

// authenticate implements Negotiated' -> Authenticated.
func (s *session) authenticate(creds *Credentials) error {
	if s.conn.Protocol != transport.SMTPS {
		return protocolError(TlsRequiredForAuth)
	}
	if s.ext.Auth == auth.None {
		return protocolError(UnsupportedAuthHandshake)
	}

	user := creds.Username
	if norm, err := auth.NormalizeUsername(user); err == nil {
		user = norm
	}

	switch s.ext.Auth {
	case auth.Plain:
		return s.authPlain(user, creds.Password)
	case auth.Login:
		return s.authLogin(user, creds.Password)
	case auth.Xoauth2:
		return s.authXoauth2(user, creds.OAuthToken)
	default:
		return protocolError(UnsupportedAuthHandshake)
	}
}

func (s *session) authPlain(user, password string) error {
	resp := auth.PlainInitialResponse(user, password)
	if err := s.writeLine("AUTH PLAIN %s", resp); err != nil {
		return err
	}
	_, err := s.readReply(235)
	return err
}

func (s *session) authLogin(user, password string) error {
	if err := s.writeLine("AUTH LOGIN"); err != nil {
		return err
	}

	lines, err := s.readReply(334)
	if err != nil {
		return err
	}
	challenge, err := auth.DecodeChallenge(lines[0].Payload)
	if err != nil {
		return wrapError(UnexpectedServerResponse, err)
	}
	if err := auth.CheckLoginChallenge(challenge, false); err != nil {
		return wrapError(UnexpectedServerResponse, err)
	}

	if err := s.writeLine("%s", auth.LoginUsernameResponse(user)); err != nil {
		return err
	}

	lines, err = s.readReply(334)
	if err != nil {
		return err
	}
	challenge, err = auth.DecodeChallenge(lines[0].Payload)
	if err != nil {
		return wrapError(UnexpectedServerResponse, err)
	}
	if err := auth.CheckLoginChallenge(challenge, true); err != nil {
		return wrapError(UnexpectedServerResponse, err)
	}

	if err := s.writeLine("%s", auth.LoginPasswordResponse(password)); err != nil {
		return err
	}
	_, err = s.readReply(235)
	return err
}

func (s *session) authXoauth2(user, token string) error {
	resp := auth.Xoauth2InitialResponse(user, token)
	if err := s.writeLine("AUTH XOAUTH2 %s", resp); err != nil {
		return err
	}
	_, err := s.readReply(235)
	return err
}

// envelope implements Authenticated -> EnvelopeSent: MAIL FROM, one
// RCPT TO per recipient, then DATA.
func (s *session) envelope(from string, to []string) error {
	if len(to) == 0 {
		return protocolError(ExpectToAddress)
	}

	mailCmd := fmt.Sprintf("MAIL FROM:<%s>", from)
	if s.ext.EightBitMime {
		mailCmd += " BODY=8BITMIME"
	}
	if s.ext.SmtpUtf8 {
		mailCmd += " SMTPUTF8"
	}
	if err := s.writeLine("%s", mailCmd); err != nil {
		return err
	}
	if _, err := s.readReply(250); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := s.writeLine("RCPT TO:<%s>", rcpt); err != nil {
			return err
		}
		if _, err := s.readReply(250); err != nil {
			return err
		}
	}

	if err := s.writeLine("DATA"); err != nil {
		return err
	}
	_, err := s.readReply(354)
	return err
}

// sendData implements EnvelopeSent -> DataMode: streams the
// dot-stuffed composed message followed by the bare "." terminator.
func (s *session) sendData(composed []byte) error {
	stuffed := dotStuff(composed)
	if _, err := s.conn.Writer().Write(stuffed); err != nil {
		return wrapError(UnexpectedServerResponse, err)
	}
	if !hasSuffixCRLF(stuffed) {
		if _, err := s.conn.Writer().WriteString("\r\n"); err != nil {
			return wrapError(UnexpectedServerResponse, err)
		}
	}
	if err := s.writeLine("."); err != nil {
		return err
	}
	_, err := s.readReply(250)
	return err
}

func hasSuffixCRLF(b []byte) bool {
	return len(b) >= 2 && b[len(b)-2] == '\r' && b[len(b)-1] == '\n'
}

// quit implements Any -> Closed.
func (s *session) quit() error {
	return s.conn.Close()
}

// abort discards the connection without sending QUIT, for failures
// that occur before any command has been written to the wire.
func (s *session) abort() error {
	return s.conn.Abort()
}
