package mailcheck

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/crmterm/internal/model"
)

// Sample describes the newest message found in INBOX.
type Sample struct {
	Subject string
	From    string
	Date    time.Time
}

// ProbeIMAP connects, logs in, selects INBOX and reads the headers of the
// newest message with PEEK so that no flag changes.
func ProbeIMAP(ctx context.Context, s model.IMAPSettings) *Report {
	addr := net.JoinHostPort(s.IMAPServer, strconv.Itoa(s.IMAPPort))
	r := &Report{Protocol: "imap", Address: addr}
	start := time.Now()
	defer func() { r.Elapsed = time.Since(start) }()

	if err := validate(s.IMAPServer, s.IMAPPort, s.IMAPUsername, s.IMAPPassword); err != nil {
		return r.fail("settings", err)
	}

	var (
		client *imapclient.Client
		err    error
	)
	if s.UseIMAPSSL {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return r.fail("connect", err)
	}
	defer client.Close()
	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()
	r.pass("connect", tlsMode(s.UseIMAPSSL))

	if err := client.Login(s.IMAPUsername, s.IMAPPassword).Wait(); err != nil {
		return r.fail("login", err)
	}
	r.pass("login", s.IMAPUsername)
	defer func() { _ = client.Logout().Wait() }()

	selected, err := client.Select("INBOX", &imap.SelectOptions{ReadOnly: true}).Wait()
	if err != nil {
		return r.fail("select INBOX", err)
	}
	r.pass("select INBOX", fmt.Sprintf("%d messages", selected.NumMessages))

	if selected.NumMessages == 0 {
		return r
	}

	sample, err := fetchNewestHeader(client, selected.NumMessages)
	if err != nil {
		return r.fail("read newest message", err)
	}
	r.pass("read newest message", fmt.Sprintf("%q from %s", sample.Subject, sample.From))

	return r
}

func fetchNewestHeader(client *imapclient.Client, seq uint32) (*Sample, error) {
	section := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierHeader,
		Peek:      true,
	}
	fetchCmd := client.Fetch(imap.SeqSetNum(seq), &imap.FetchOptions{
		BodySection: []*imap.FetchItemBodySection{section},
	})
	defer fetchCmd.Close()

	msg := fetchCmd.Next()
	if msg == nil {
		return nil, fmt.Errorf("message %d not returned", seq)
	}
	buf, err := msg.Collect()
	if err != nil {
		return nil, fmt.Errorf("collecting message data: %w", err)
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("closing fetch: %w", err)
	}

	return parseHeader(buf.FindBodySection(section))
}

// parseHeader reads the summary fields from a raw RFC 5322 header block.
func parseHeader(raw []byte) (*Sample, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty header")
	}
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	defer mr.Close()

	sample := &Sample{}
	sample.Subject, _ = mr.Header.Subject()
	sample.Date, _ = mr.Header.Date()
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		sample.From = from[0].Address
		if from[0].Name != "" {
			sample.From = from[0].Name + " <" + from[0].Address + ">"
		}
	}
	return sample, nil
}

func tlsMode(implicit bool) string {
	if implicit {
		return "tls"
	}
	return "starttls"
}
