// Package testutil provides test-only helpers shared across this
// module's test files: a self-signed certificate generator and a
// scripted fake SMTP server, in the style of the teacher's
// internal/testlib and internal/courier/fakeserver_test.go.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"
)

// GenerateCert returns an INSECURE self-signed certificate for
// "localhost"/127.0.0.1, and a client-side tls.Config configured with a
// root pool that trusts it.
//
// Unlike the teacher's testlib.GenerateCert, this keeps everything
// in-memory: no file writes, no process-wide chdir, since test code
// that needs on-disk PEM files is rare and a global chdir is unsafe
// when tests run in parallel.
func GenerateCert(t *testing.T) (server *tls.Config, client *tls.Config) {
	t.Helper()

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"smtpclient test"}},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:    time.Now().Add(-time.Minute),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage: x509.KeyUsageKeyEncipherment |
			x509.KeyUsageDigitalSignature |
			x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("creating certificate: %v", err)
	}

	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}

	roots := x509.NewCertPool()
	roots.AddCert(parsed)

	server = &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{der},
			PrivateKey:  priv,
		}},
	}
	client = &tls.Config{
		ServerName: "localhost",
		RootCAs:    roots,
	}
	return server, client
}
