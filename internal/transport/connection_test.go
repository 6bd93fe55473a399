package transport

import (
	"strings"
	"testing"

	"blitiri.com.ar/go/smtpclient/internal/testutil"
)

func TestDialAndUpgradeTLS(t *testing.T) {
	serverConf, clientConf := testutil.GenerateCert(t)

	fs := &testutil.FakeServer{
		TLSConfig: serverConf,
		Responses: map[string]string{
			"_welcome":  "220 fake.example.org ESMTP\r\n",
			"EHLO me":   "250-fake.example.org\r\n250 STARTTLS\r\n",
			"STARTTLS":  "220 2.0.0 ready to start TLS\r\n",
			"EHLO me2":  "250 fake.example.org\r\n",
			"QUIT":      "221 2.0.0 bye\r\n",
		},
	}
	addr := fs.Start(t)
	host, port, _ := strings.Cut(addr, ":")

	conn, err := Dial(host, port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if conn.Protocol != SMTP {
		t.Fatalf("expected SMTP protocol before upgrade")
	}

	line, err := conn.Reader().ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "220") {
		t.Fatalf("greeting = %q, err=%v", line, err)
	}

	conn.Writer().WriteString("EHLO me\r\n")
	conn.Flush()
	for i := 0; i < 2; i++ {
		if _, err := conn.Reader().ReadString('\n'); err != nil {
			t.Fatalf("reading EHLO response: %v", err)
		}
	}

	conn.Writer().WriteString("STARTTLS\r\n")
	conn.Flush()
	if _, err := conn.Reader().ReadString('\n'); err != nil {
		t.Fatalf("reading STARTTLS response: %v", err)
	}

	state, err := conn.UpgradeTLS(clientConf)
	if err != nil {
		t.Fatalf("UpgradeTLS: %v", err)
	}
	if state == nil {
		t.Fatalf("expected non-nil TLS state")
	}
	if conn.Protocol != SMTPS {
		t.Fatalf("expected SMTPS protocol after upgrade")
	}

	conn.Writer().WriteString("EHLO me2\r\n")
	conn.Flush()
	if _, err := conn.Reader().ReadString('\n'); err != nil {
		t.Fatalf("reading post-upgrade EHLO response: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	fs.Wait()
}
