// smtp-send is a command-line tool for sending a single plain-text
// email through an SMTP server, exercising this module end to end.
package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"github.com/docopt/docopt-go"

	"blitiri.com.ar/go/smtpclient"
	"blitiri.com.ar/go/smtpclient/internal/tlsconst"
)

const usage = `smtp-send: send a single email via SMTP.

Usage:
  smtp-send [--user=<user> --password=<password>] --server=<url> --from=<from> --to=<to> --subject=<subject> [--body=<body>]
  smtp-send -h | --help

Options:
  --server=<url>        Server URL, e.g. smtps://smtp.example.org.
  --from=<from>         From address.
  --to=<to>             Comma-separated recipient addresses.
  --subject=<subject>   Subject line.
  --body=<body>         Plain-text body [default: ].
  --user=<user>         AUTH username.
  --password=<password> AUTH password.
  -h --help             Show this screen.
`

func main() {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	server, _ := opts.String("--server")
	from, _ := opts.String("--from")
	toRaw, _ := opts.String("--to")
	subject, _ := opts.String("--subject")
	body, _ := opts.String("--body")

	var to []smtpclient.Address
	for _, addr := range strings.Split(toRaw, ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			to = append(to, smtpclient.Address{Address: addr})
		}
	}

	msg := &smtpclient.Message{
		From:    smtpclient.Address{Address: from},
		To:      to,
		Subject: subject,
		Body: smtpclient.Body{
			Single: &smtpclient.Single{Text: body},
		},
	}

	var creds *smtpclient.Credentials
	if user, err := opts.String("--user"); err == nil && user != "" {
		password, _ := opts.String("--password")
		creds = &smtpclient.Credentials{Username: user, Password: password}
	}

	c := smtpclient.New()
	c.VerifyConnection = func(state tls.ConnectionState) error {
		fmt.Fprintf(os.Stderr, "smtp-send: negotiated %s, cipher %s\n",
			tlsconst.VersionName(state.Version), tlsconst.CipherSuiteName(state.CipherSuite))
		return nil
	}

	sc, err := c.Dial(context.Background(), server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "smtp-send: %v\n", err)
		os.Exit(1)
	}
	if err := sc.Send(msg, creds); err != nil {
		fmt.Fprintf(os.Stderr, "smtp-send: %v\n", err)
		os.Exit(1)
	}
}
