package smtpclient

import (
	"context"
	"errors"
	"testing"

	"blitiri.com.ar/go/smtpclient/internal/response"
	"blitiri.com.ar/go/smtpclient/internal/testutil"
)

// S1: plain PLAIN/LOGIN auth over STARTTLS. The server offers only
// PLAIN before the upgrade and both PLAIN and LOGIN (plus SMTPUTF8)
// after; the client must pick LOGIN (higher precedence) and must send
// MAIL FROM with the SMTPUTF8 suffix but no BODY=8BITMIME.
func TestSendSTARTTLSThenLogin(t *testing.T) {
	serverConf, clientConf := testutil.GenerateCert(t)

	fs := &testutil.FakeServer{
		TLSConfig: serverConf,
		Responses: map[string]string{
			"_welcome":       "220 ready\r\n",
			"EHLO localhost": "250-STARTTLS\r\n250 AUTH PLAIN\r\n",
			"STARTTLS":       "220 go\r\n",
		},
		PostHandshakeResponses: map[string]string{
			"EHLO localhost":          "250-AUTH PLAIN LOGIN\r\n250 SMTPUTF8\r\n",
			"AUTH LOGIN":              "334 VXNlcm5hbWU6\r\n",
			"dXNlcg==":                "334 UGFzc3dvcmQ6\r\n",
			"cGFzcw==":                "235 ok\r\n",
			"MAIL FROM:<a@x> SMTPUTF8": "250 ok\r\n",
			"RCPT TO:<b@y>":           "250 ok\r\n",
			"DATA":                    "354 go\r\n",
			"_DATA":                   "250 ok\r\n",
			"QUIT":                    "221 bye\r\n",
		},
	}
	addr := fs.Start(t)

	c := &Client{TLSConfig: clientConf}
	sc, err := c.Dial(context.Background(), "smtp://"+addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	msg := &Message{
		From: Address{Address: "a@x"},
		To:   []Address{{Address: "b@y"}},
		Body: Body{Single: &Single{Text: "hello"}},
	}
	creds := &Credentials{Username: "user", Password: "pass"}

	if err := sc.Send(msg, creds); err != nil {
		t.Fatalf("Send: %v", err)
	}
	fs.Wait()
}

// S2: server offers AUTH PLAIN but not STARTTLS; sending with
// credentials must fail TlsRequiredForAuth without ever attempting an
// AUTH exchange.
func TestSendRefusesAuthWithoutTLS(t *testing.T) {
	fs := &testutil.FakeServer{
		Responses: map[string]string{
			"_welcome":       "220 ready\r\n",
			"EHLO localhost": "250 AUTH PLAIN\r\n",
			"QUIT":           "221 bye\r\n",
		},
	}
	addr := fs.Start(t)

	c := New()
	sc, err := c.Dial(context.Background(), "smtp://"+addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	msg := &Message{
		From: Address{Address: "a@x"},
		To:   []Address{{Address: "b@y"}},
		Body: Body{Single: &Single{Text: "hello"}},
	}
	creds := &Credentials{Username: "user", Password: "pass"}

	err = sc.Send(msg, creds)
	var e *Error
	if !errors.As(err, &e) || e.Code != TlsRequiredForAuth {
		t.Fatalf("Send error = %v, want TlsRequiredForAuth", err)
	}
	fs.Wait()
}

// S5: the server rejects AUTH PLAIN with 535; the classifier must
// surface InvalidCredentials and the session is left unusable (the
// caller's only correct action, per spec, is to discard it -- this
// test only checks the returned error).
func TestSendClassifiesInvalidCredentials(t *testing.T) {
	serverConf, clientConf := testutil.GenerateCert(t)

	fs := &testutil.FakeServer{
		TLSConfig: serverConf,
		Responses: map[string]string{
			"_welcome":       "220 ready\r\n",
			"EHLO localhost": "250-STARTTLS\r\n250 AUTH PLAIN\r\n",
			"STARTTLS":       "220 go\r\n",
		},
		PostHandshakeResponses: map[string]string{
			"EHLO localhost": "250 AUTH PLAIN\r\n",
			// base64("\x00user\x00pass")
			"AUTH PLAIN AHVzZXIAcGFzcw==": "535 bad credentials\r\n",
			"QUIT":                        "221 bye\r\n",
		},
	}
	addr := fs.Start(t)

	c := &Client{TLSConfig: clientConf}
	sc, err := c.Dial(context.Background(), "smtp://"+addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	msg := &Message{
		From: Address{Address: "a@x"},
		To:   []Address{{Address: "b@y"}},
		Body: Body{Single: &Single{Text: "hello"}},
	}
	creds := &Credentials{Username: "user", Password: "pass"}

	err = sc.Send(msg, creds)
	var e *Error
	if !errors.As(err, &e) || e.Code != ServerCodeError || e.ServerCode != response.InvalidCredentials {
		t.Fatalf("Send error = %v, want ServerCodeError/InvalidCredentials", err)
	}
	fs.Wait()
}

func TestSendMissingRecipientFailsExpectToAddress(t *testing.T) {
	fs := &testutil.FakeServer{
		Responses: map[string]string{
			"_welcome":       "220 ready\r\n",
			"EHLO localhost": "250 SMTPUTF8\r\n",
			"QUIT":           "221 bye\r\n",
		},
	}
	addr := fs.Start(t)

	c := New()
	sc, err := c.Dial(context.Background(), "smtp://"+addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	msg := &Message{
		From: Address{Address: "a@x"},
		Body: Body{Single: &Single{Text: "hello"}},
	}

	err = sc.Send(msg, nil)
	var e *Error
	if !errors.As(err, &e) || e.Code != ExpectToAddress {
		t.Fatalf("Send error = %v, want ExpectToAddress", err)
	}
	fs.Wait()
}

// An empty To with a populated Cc/Bcc must still fail ExpectToAddress:
// the requirement is on To specifically, not on the merged recipient
// list used for the RCPT TO loop.
func TestSendEmptyToWithCcFailsExpectToAddress(t *testing.T) {
	fs := &testutil.FakeServer{
		Responses: map[string]string{
			"_welcome":       "220 ready\r\n",
			"EHLO localhost": "250 SMTPUTF8\r\n",
			"QUIT":           "221 bye\r\n",
		},
	}
	addr := fs.Start(t)

	c := New()
	sc, err := c.Dial(context.Background(), "smtp://"+addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	msg := &Message{
		From: Address{Address: "a@x"},
		Cc:   []Address{{Address: "b@x"}},
		Body: Body{Single: &Single{Text: "hello"}},
	}

	err = sc.Send(msg, nil)
	var e *Error
	if !errors.As(err, &e) || e.Code != ExpectToAddress {
		t.Fatalf("Send error = %v, want ExpectToAddress", err)
	}
	fs.Wait()
}

func TestSendMissingAtSignComposesNoBytes(t *testing.T) {
	fs := &testutil.FakeServer{
		Responses: map[string]string{
			"_welcome": "220 ready\r\n",
		},
	}
	addr := fs.Start(t)

	c := New()
	sc, err := c.Dial(context.Background(), "smtp://"+addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	msg := &Message{
		From: Address{Address: "no-at-sign"},
		To:   []Address{{Address: "b@y"}},
		Body: Body{Single: &Single{Text: "hello"}},
	}

	err = sc.Send(msg, nil)
	var e *Error
	if !errors.As(err, &e) || e.Code != ExpectedEmailDomain {
		t.Fatalf("Send error = %v, want ExpectedEmailDomain", err)
	}
}
