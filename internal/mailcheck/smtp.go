package mailcheck

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/nhle/crmterm/internal/model"
)

// smtpsPort is the implicit-TLS submission port.
const smtpsPort = 465

// ErrNoStartTLS is returned when TLS is required but not offered.
var ErrNoStartTLS = errors.New("server does not offer STARTTLS")

// ProbeSMTP connects, upgrades to TLS when configured, authenticates with
// PLAIN and quits without sending anything.
func ProbeSMTP(ctx context.Context, s model.SMTPSettings) *Report {
	addr := net.JoinHostPort(s.SMTPServer, strconv.Itoa(s.SMTPPort))
	r := &Report{Protocol: "smtp", Address: addr}
	start := time.Now()
	defer func() { r.Elapsed = time.Since(start) }()

	if err := validate(s.SMTPServer, s.SMTPPort, s.SMTPUsername, s.SMTPPassword); err != nil {
		return r.fail("settings", err)
	}

	tlsConfig := &tls.Config{ServerName: s.SMTPServer}
	implicit := s.SMTPPort == smtpsPort

	var (
		c   *smtp.Client
		err error
	)
	if implicit {
		c, err = smtp.DialTLS(addr, tlsConfig)
	} else {
		c, err = smtp.Dial(addr)
	}
	if err != nil {
		return r.fail("connect", err)
	}
	defer c.Close()
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()
	r.pass("connect", tlsMode(implicit))

	if err := c.Hello("localhost"); err != nil {
		return r.fail("hello", err)
	}
	r.pass("hello", "")

	if !implicit && s.UseTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return r.fail("starttls", ErrNoStartTLS)
		}
		if err := c.StartTLS(tlsConfig); err != nil {
			return r.fail("starttls", err)
		}
		r.pass("starttls", "")
	}

	auth := sasl.NewPlainClient("", s.SMTPUsername, s.SMTPPassword)
	if err := c.Auth(auth); err != nil {
		return r.fail("auth", err)
	}
	r.pass("auth", s.SMTPUsername)

	if err := c.Quit(); err != nil {
		return r.fail("quit", err)
	}
	r.pass("quit", "")

	return r
}
