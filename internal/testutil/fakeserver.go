package testutil

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"testing"
)

// FakeServer is a scripted SMTP server for exercising the session state
// machine end-to-end over a real TCP connection, in the style of the
// teacher's internal/courier/fakeserver_test.go.
//
// Responses maps an exact client command line to the raw bytes (often
// several CRLF-terminated lines) to reply with. The special key
// "_welcome" is sent unprompted right after accept. "_DATA" is sent
// after the dot-terminated DATA payload has been fully read. If
// TLSConfig is set, a "STARTTLS" command gets its scripted reply and
// then triggers a TLS handshake using TLSConfig.
//
// PostHandshakeResponses, if non-nil, replaces Responses once the
// STARTTLS handshake completes, so a command sent both before and
// after the upgrade (typically EHLO) can get two different scripted
// replies.
type FakeServer struct {
	Responses              map[string]string
	PostHandshakeResponses map[string]string
	TLSConfig              *tls.Config

	t    *testing.T
	addr string
	wg   sync.WaitGroup
}

// Start launches the fake server on a free localhost port and returns
// its address.
func (s *FakeServer) Start(t *testing.T) string {
	t.Helper()
	s.t = t

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("fake server listen: %v", err)
	}
	s.addr = l.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer l.Close()

		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		s.serve(c)
	}()

	return s.addr
}

// Wait blocks until the server goroutine has exited.
func (s *FakeServer) Wait() { s.wg.Wait() }

func (s *FakeServer) serve(c net.Conn) {
	r := textproto.NewReader(bufio.NewReader(c))
	responses := s.Responses
	fmt.Fprint(c, responses["_welcome"])

	for {
		line, err := r.ReadLine()
		if err != nil {
			return
		}

		if strings.HasPrefix(line, "STARTTLS") && s.TLSConfig != nil {
			fmt.Fprint(c, responses[line])

			tlsConn := tls.Server(c, s.TLSConfig)
			if err := tlsConn.Handshake(); err != nil {
				s.t.Logf("fake server TLS handshake: %v", err)
				return
			}
			c = tlsConn
			r = textproto.NewReader(bufio.NewReader(c))
			if s.PostHandshakeResponses != nil {
				responses = s.PostHandshakeResponses
			}
			continue
		}

		fmt.Fprint(c, responses[line])

		if line == "DATA" {
			if _, err := r.ReadDotBytes(); err != nil {
				s.t.Logf("fake server reading DATA: %v", err)
				return
			}
			fmt.Fprint(c, responses["_DATA"])
		}
	}
}
