package smtpclient

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"blitiri.com.ar/go/smtpclient/internal/qp"
	"blitiri.com.ar/go/smtpclient/internal/rfc822date"
)

// Compose renders msg into the byte stream that follows the SMTP DATA
// command, not including the terminating ".\r\n" line (the session
// driver appends that after dot-stuffing the stream).
func Compose(msg *Message) ([]byte, error) {
	var buf bytes.Buffer

	if err := writeHeaders(&buf, msg); err != nil {
		return nil, err
	}

	if err := writeBody(&buf, msg.Body); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeHeaders(buf *bytes.Buffer, msg *Message) error {
	fmt.Fprintf(buf, "From: %s\r\n", msg.From.String())

	if len(msg.To) > 0 {
		fmt.Fprintf(buf, "To: %s\r\n", joinAddresses(msg.To))
	}
	if len(msg.Cc) > 0 {
		fmt.Fprintf(buf, "Cc: %s\r\n", joinAddresses(msg.Cc))
	}
	if len(msg.Bcc) > 0 {
		fmt.Fprintf(buf, "Bcc: %s\r\n", joinAddresses(msg.Bcc))
	}

	if msg.Subject != "" {
		fmt.Fprintf(buf, "Subject: %s\r\n", encodeSubject(msg.Subject))
	}

	fmt.Fprintf(buf, "Date: %s\r\n", dateHeader(msg.Timestamp))
	buf.WriteString("MIME-Version: 1.0\r\n")

	msgID, err := newMessageID(msg.From.Address)
	if err != nil {
		return err
	}
	fmt.Fprintf(buf, "Message-ID: %s\r\n", msgID)

	return nil
}

func dateHeader(timestamp int64) string {
	if timestamp == 0 {
		return rfc822date.Now()
	}
	return rfc822date.Format(timestamp)
}

// encodeSubject wraps the subject as an RFC 2047 encoded-word when it
// contains any high-bit byte, and leaves it literal otherwise.
func encodeSubject(subject string) string {
	if isASCII(subject) {
		return subject
	}

	var qpBuf bytes.Buffer
	w := qp.NewWriter(&qpBuf)
	w.Write([]byte(subject))
	w.Close()

	// Encoded-word form has no embedded CRLF soft breaks: the
	// quoted-printable writer's soft breaks ("=\r\n") are removed
	// whole, and any remaining CRLF is dropped.
	encoded := strings.ReplaceAll(qpBuf.String(), "=\r\n", "")
	encoded = strings.ReplaceAll(encoded, "\r\n", "")
	encoded = strings.ReplaceAll(encoded, "?", "=3F")
	encoded = strings.ReplaceAll(encoded, "_", "=5F")
	encoded = strings.ReplaceAll(encoded, " ", "_")
	encoded = strings.ReplaceAll(encoded, "\t", "=09")
	return "=?UTF-8?Q?" + encoded + "?="
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func writeBody(buf *bytes.Buffer, body Body) error {
	switch {
	case body.Single != nil:
		return writeSingle(buf, body.Single)
	case body.Alternative != nil:
		return writeAlternativeTop(buf, body.Alternative)
	case body.Mixed != nil:
		return writeMixedTop(buf, body.Mixed)
	case body.Related != nil:
		return writeRelatedTop(buf, body.Related)
	default:
		return fmt.Errorf("smtpclient: message body has no content")
	}
}

func writeSingle(buf *bytes.Buffer, s *Single) error {
	switch {
	case s.Attachment != nil:
		if s.Attachment.Kind != Attached {
			panic("smtpclient: single-part attachment must be Attached")
		}
		return writeAttachmentPart(buf, s.Attachment)
	case s.HTML != "":
		return writeTextPart(buf, "text/html", s.HTML)
	default:
		return writeTextPart(buf, "text/plain", s.Text)
	}
}

func writeTextPart(buf *bytes.Buffer, contentType, text string) error {
	fmt.Fprintf(buf, "Content-Type: %s; charset=utf-8\r\n", contentType)
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	buf.WriteString("\r\n")
	if err := qp.Encode(buf, []byte(text)); err != nil {
		return err
	}
	buf.WriteString("\r\n")
	return nil
}

func writeAttachmentPart(buf *bytes.Buffer, a *Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fmt.Fprintf(buf, "Content-Type: %s; name=%q\r\n", contentType, a.Name)
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(buf, "Content-Disposition: attachment; filename=%q\r\n", a.Name)
	buf.WriteString("\r\n")
	buf.WriteString(base64.StdEncoding.EncodeToString(a.Bytes))
	buf.WriteString("\r\n")
	return nil
}

func writeInlinePart(buf *bytes.Buffer, a *Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	fmt.Fprintf(buf, "Content-Type: %s; name=%q\r\n", contentType, a.Name)
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(buf, "Content-Disposition: inline; filename=%q\r\n", a.Name)
	fmt.Fprintf(buf, "Content-Location: %s\r\n", a.Name)
	fmt.Fprintf(buf, "Content-Id: <%s>\r\n", a.ContentID)
	buf.WriteString("\r\n")
	buf.WriteString(base64.StdEncoding.EncodeToString(a.Bytes))
	buf.WriteString("\r\n")
	return nil
}

func boundaryOpen(buf *bytes.Buffer, contentType, boundary string) {
	fmt.Fprintf(buf, "Content-Type: %s; boundary=%q\r\n\r\n", contentType, boundary)
}

func boundaryPart(buf *bytes.Buffer, boundary string) {
	fmt.Fprintf(buf, "--%s\r\n", boundary)
}

func boundaryClose(buf *bytes.Buffer, boundary string) {
	fmt.Fprintf(buf, "--%s--\r\n", boundary)
}

func writeAlternativeTop(buf *bytes.Buffer, a *Alternative) error {
	boundary, err := newBoundary()
	if err != nil {
		return err
	}
	return writeAlternativeBody(buf, boundary, a.Text, a.HTML)
}

// writeAlternativeBody writes the boundary-delimited text+html parts
// of a multipart/alternative container; shared by the top-level
// Alternative body and by Related's outer alternative wrapper.
func writeAlternativeBody(buf *bytes.Buffer, boundary, text, html string) error {
	boundaryOpen(buf, "multipart/alternative", boundary)

	boundaryPart(buf, boundary)
	if err := writeTextPart(buf, "text/plain", text); err != nil {
		return err
	}

	boundaryPart(buf, boundary)
	if err := writeTextPart(buf, "text/html", html); err != nil {
		return err
	}

	boundaryClose(buf, boundary)
	return nil
}

func writeMixedTop(buf *bytes.Buffer, m *Mixed) error {
	boundary, err := newBoundary()
	if err != nil {
		return err
	}
	boundaryOpen(buf, "multipart/mixed", boundary)

	boundaryPart(buf, boundary)
	if err := writeMixedFirstPart(buf, m); err != nil {
		return err
	}

	for i := range m.Attachments {
		a := &m.Attachments[i]
		if a.Kind != Attached {
			panic("smtpclient: multipart/mixed attachment must be Attached")
		}
		boundaryPart(buf, boundary)
		if err := writeAttachmentPart(buf, a); err != nil {
			return err
		}
	}

	boundaryClose(buf, boundary)
	return nil
}

func writeMixedFirstPart(buf *bytes.Buffer, m *Mixed) error {
	switch {
	case m.Text != "" && m.HTML != "":
		inner, err := newBoundary()
		if err != nil {
			return err
		}
		return writeAlternativeBody(buf, inner, m.Text, m.HTML)
	case m.HTML != "":
		return writeTextPart(buf, "text/html", m.HTML)
	default:
		return writeTextPart(buf, "text/plain", m.Text)
	}
}

func writeRelatedTop(buf *bytes.Buffer, r *Related) error {
	if r.Text != "" {
		outer, err := newBoundary()
		if err != nil {
			return err
		}
		boundaryOpen(buf, "multipart/alternative", outer)

		boundaryPart(buf, outer)
		if err := writeTextPart(buf, "text/plain", r.Text); err != nil {
			return err
		}

		boundaryPart(buf, outer)
		if err := writeRelatedBlock(buf, r); err != nil {
			return err
		}

		boundaryClose(buf, outer)
		return nil
	}

	return writeRelatedBlock(buf, r)
}

func writeRelatedBlock(buf *bytes.Buffer, r *Related) error {
	boundary, err := newBoundary()
	if err != nil {
		return err
	}
	boundaryOpen(buf, "multipart/related", boundary)

	boundaryPart(buf, boundary)
	if err := writeTextPart(buf, "text/html", r.HTML); err != nil {
		return err
	}

	for i := range r.Attachments {
		a := &r.Attachments[i]
		if a.Kind != Inlined {
			panic("smtpclient: multipart/related attachment must be Inlined")
		}
		boundaryPart(buf, boundary)
		if err := writeInlinePart(buf, a); err != nil {
			return err
		}
	}

	boundaryClose(buf, boundary)
	return nil
}
