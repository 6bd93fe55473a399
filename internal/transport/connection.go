// Package transport implements the buffered, upgradeable socket
// wrapper the session state machine drives: a plain TCP connection
// that can be swapped in place for a TLS one after STARTTLS, in the
// manner of the teacher's courier.SMTP STARTTLS handling and
// smtpsrv.Conn's buffered reader/writer split.
package transport

import (
	"bufio"
	"crypto/tls"
	"fmt"
	"net"
)

// Protocol identifies which scheme a Connection was dialed with.
type Protocol int

const (
	SMTP Protocol = iota
	SMTPS
)

// Connection wraps a net.Conn (plain or TLS) with buffered line I/O, and
// supports swapping the underlying socket for a TLS one in place after a
// successful STARTTLS handshake.
//
// The teacher's Connection-equivalents keep separate struct literals per
// transport; here the plain/TLS cases share this one struct and the
// active variant is whichever conn/br/bw currently point at.
type Connection struct {
	Hostname string
	Port     string
	Protocol Protocol

	conn net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
}

// Dial opens a plain TCP connection to host:port.
func Dial(host, port string) (*Connection, error) {
	conn, err := net.Dial("tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, err
	}
	return wrap(conn, host, port, SMTP), nil
}

// DialTLS opens an implicit-TLS (smtps) connection to host:port.
func DialTLS(host, port string, tlsConfig *tls.Config) (*Connection, error) {
	conf := tlsConfig.Clone()
	if conf == nil {
		conf = &tls.Config{}
	}
	if conf.ServerName == "" {
		conf.ServerName = host
	}

	conn, err := tls.Dial("tcp", net.JoinHostPort(host, port), conf)
	if err != nil {
		return nil, err
	}
	return wrap(conn, host, port, SMTPS), nil
}

// Wrap builds a Connection around an already-established net.Conn,
// for callers that need to perform their own dial (e.g. a
// context-bound DialContext) before handing the socket to this
// package.
func Wrap(conn net.Conn, host, port string, proto Protocol) *Connection {
	return wrap(conn, host, port, proto)
}

func wrap(conn net.Conn, host, port string, proto Protocol) *Connection {
	return &Connection{
		Hostname: host,
		Port:     port,
		Protocol: proto,
		conn:     conn,
		br:       bufio.NewReader(conn),
		bw:       bufio.NewWriter(conn),
	}
}

// Reader returns the buffered reader for the current (plain or TLS)
// socket.
func (c *Connection) Reader() *bufio.Reader { return c.br }

// Writer returns the buffered writer for the current (plain or TLS)
// socket.
func (c *Connection) Writer() *bufio.Writer { return c.bw }

// Flush flushes any buffered outbound bytes to the socket.
func (c *Connection) Flush() error { return c.bw.Flush() }

// UpgradeTLS performs the STARTTLS handshake: it destroys the plain
// reader/writer and replaces them with ones backed by a TLS connection
// layered over the same socket. The caller is responsible for having
// already sent STARTTLS and read the 220 response.
func (c *Connection) UpgradeTLS(tlsConfig *tls.Config) (*tls.ConnectionState, error) {
	if c.Protocol != SMTP {
		return nil, fmt.Errorf("transport: UpgradeTLS called on non-plain connection")
	}

	conf := tlsConfig.Clone()
	if conf == nil {
		conf = &tls.Config{}
	}
	if conf.ServerName == "" {
		conf.ServerName = c.Hostname
	}

	tlsConn := tls.Client(c.conn, conf)
	if err := tlsConn.Handshake(); err != nil {
		return nil, err
	}

	// Release the plain buffers; the TLS-wrapped ones replace them
	// entirely, matching the single-allocation-block layout the
	// upgrade logically performs.
	c.conn = tlsConn
	c.br = bufio.NewReader(tlsConn)
	c.bw = bufio.NewWriter(tlsConn)
	c.Protocol = SMTPS

	state := tlsConn.ConnectionState()
	return &state, nil
}

// ConnectionState returns the negotiated TLS parameters, or nil if the
// connection is not (yet) TLS.
func (c *Connection) ConnectionState() *tls.ConnectionState {
	tlsConn, ok := c.conn.(*tls.Conn)
	if !ok {
		return nil
	}
	state := tlsConn.ConnectionState()
	return &state
}

// End sends QUIT, flushes, and for a TLS connection issues a
// close-notify, but leaves the socket open for the caller to Close.
func (c *Connection) End() error {
	if _, err := c.bw.WriteString("QUIT\r\n"); err != nil {
		return err
	}
	if err := c.bw.Flush(); err != nil {
		return err
	}
	if tlsConn, ok := c.conn.(*tls.Conn); ok {
		return tlsConn.CloseWrite()
	}
	return nil
}

// Close ends the session (best-effort) and closes the socket.
func (c *Connection) Close() error {
	_ = c.End()
	return c.conn.Close()
}

// Abort closes the socket directly, without sending QUIT: for callers
// that need to discard a Connection before any command has been sent.
func (c *Connection) Abort() error {
	return c.conn.Close()
}
