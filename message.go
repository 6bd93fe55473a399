package smtpclient

import (
	"crypto/rand"
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// Address is a display-name/address pair, rendered as "name <address>"
// or "<address>" when the name is empty.
type Address struct {
	Name    string
	Address string
}

func (a Address) String() string {
	if a.Name == "" {
		return "<" + a.Address + ">"
	}
	return a.Name + " <" + a.Address + ">"
}

func joinAddresses(addrs []Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// AttachmentKind distinguishes an ordinary attached file from an
// inline one referenced from HTML via a cid: URL.
type AttachmentKind int

const (
	Attached AttachmentKind = iota
	Inlined
)

// Attachment is a file carried in a message, either as a conventional
// attachment or inlined and referenced by Content-Id.
type Attachment struct {
	Kind        AttachmentKind
	Name        string
	ContentType string
	Bytes       []byte

	// ContentID is only meaningful (and required) for Inlined
	// attachments; it is the value the HTML body references as
	// "cid:<ContentID>".
	ContentID string
}

// NewContentID generates a fresh Content-ID of the form
// "<hex16>@<domain>", for use with an Inlined attachment.
func NewContentID(domain string) (string, error) {
	b, err := randomBytes(16)
	if err != nil {
		return "", err
	}
	return hexBoundary(b) + "@" + domain, nil
}

// Single is a one-part body: plain text, HTML, or a single attached
// file (never inlined — an attachment in this position has no HTML to
// be inlined into).
type Single struct {
	Text       string
	HTML       string
	Attachment *Attachment
}

// Alternative carries both a text and an HTML rendering of the same
// content, left to the reader's client to choose between.
type Alternative struct {
	Text string
	HTML string
}

// Mixed is a text and/or HTML body plus zero or more attached files.
type Mixed struct {
	Text        string
	HTML        string
	Attachments []Attachment
}

// Related is an HTML body (required) plus inlined attachments it
// references by cid:, with an optional plain-text alternative.
type Related struct {
	Text        string
	HTML        string
	Attachments []Attachment
}

// Body is the tagged variant of a message's content: exactly one of
// its fields is non-nil.
type Body struct {
	Single      *Single
	Alternative *Alternative
	Mixed       *Mixed
	Related     *Related
}

// Message is a complete, ready-to-send email, independent of any
// particular server connection.
type Message struct {
	From Address
	To   []Address
	Cc   []Address
	Bcc  []Address

	Subject string
	// Timestamp is seconds since the Unix epoch; zero means "now".
	Timestamp int64

	Body Body
}

// domainOf returns the substring of addr after the last '@', failing
// with ExpectedEmailDomain when there is none.
func domainOf(addr string) (string, error) {
	i := strings.LastIndexByte(addr, '@')
	if i < 0 {
		return "", protocolError(ExpectedEmailDomain)
	}
	return addr[i+1:], nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("smtpclient: reading random bytes: %w", err)
	}
	return b, nil
}

// newBoundary generates a fresh MIME boundary: 16 random bytes
// rendered as lowercase hex. Each multipart container, including
// nested ones, gets its own independently generated boundary.
func newBoundary() (string, error) {
	b, err := randomBytes(16)
	if err != nil {
		return "", err
	}
	return hexBoundary(b), nil
}

// newMessageID generates a complete Message-ID value for the given from
// address: "<hex16@domain>". The domain is converted to IDNA-ASCII
// since Message-ID, unlike the envelope address, is never covered by
// SMTPUTF8 and must be pure ASCII on the wire.
func newMessageID(from string) (string, error) {
	domain, err := domainOf(from)
	if err != nil {
		return "", err
	}
	asciiDomain, err := idna.ToASCII(domain)
	if err != nil {
		return "", wrapError(ExpectedEmailDomain, err)
	}
	b, err := randomBytes(16)
	if err != nil {
		return "", err
	}
	return "<" + hexBoundary(b) + "@" + asciiDomain + ">", nil
}
