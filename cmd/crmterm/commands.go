package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/nhle/crmterm/internal/api"
	"github.com/nhle/crmterm/internal/loader"
	"github.com/nhle/crmterm/internal/mailcheck"
	"github.com/nhle/crmterm/internal/model"
)

const (
	requestTimeout = 30 * time.Second
	passwordEnv    = "CRMTERM_MAIL_PASSWORD"
)

func runLogin(ctx context.Context, e *env, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("user", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	creds := model.Credentials{Username: strings.TrimSpace(*username)}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(e.translator.T("field_username")).
				Value(&creds.Username).
				Validate(required),
			huh.NewInput().
				Title(e.translator.T("field_password")).
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(required),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := e.services.Auth.Login(ctx, creds)
	if err != nil {
		return errors.New(api.Message(err, e.translator.T("login_failed")))
	}
	if err := e.session.SetToken(resp.Token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	if err := e.store.SaveUser(ctx, resp.User); err != nil {
		return fmt.Errorf("caching profile: %w", err)
	}

	fmt.Fprintf(out, "Signed in as %s.\n", resp.User.DisplayName())
	return nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

type statusReport struct {
	Backend  string     `yaml:"backend"`
	SignedIn bool       `yaml:"signed_in"`
	User     string     `yaml:"user,omitempty"`
	Inbox    *inboxInfo `yaml:"inbox,omitempty"`
	AI       *aiInfo    `yaml:"ai,omitempty"`
	Unread   *int       `yaml:"unread_notifications,omitempty"`
	Errors   []string   `yaml:"errors,omitempty"`
}

type inboxInfo struct {
	Configured    bool     `yaml:"configured"`
	ReadyToFetch  bool     `yaml:"ready_to_fetch"`
	MissingFields []string `yaml:"missing_fields,omitempty"`
	Message       string   `yaml:"message,omitempty"`
}

type aiInfo struct {
	Status   string `yaml:"status"`
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// runStatus prints what the backend reports for the signed-in user. Each
// call is independent, so one failure still prints the rest.
func runStatus(ctx context.Context, e *env, out io.Writer) error {
	report := statusReport{
		Backend:  e.cfg.API.BaseURL,
		SignedIn: e.session.SignedIn(),
	}
	if !report.SignedIn {
		return writeYAML(out, report)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var (
		user   *model.User
		imap   *model.IMAPStatus
		ai     model.AIStatus
		unread int
	)
	res := loader.Load(ctx,
		loader.Call{Name: "profile", Run: func(ctx context.Context) (err error) {
			user, err = e.services.Auth.Profile(ctx)
			return err
		}},
		loader.Call{Name: "inbox", Run: func(ctx context.Context) (err error) {
			imap, err = e.services.IncomingEmails.Status(ctx)
			return err
		}},
		loader.Call{Name: "ai", Run: func(ctx context.Context) error {
			ai = e.assistant.CheckStatus(ctx)
			return nil
		}},
		loader.Call{Name: "notifications", Run: func(ctx context.Context) (err error) {
			unread, err = e.services.Notifications.UnreadCount(ctx)
			return err
		}},
	)

	if res.OK("profile") && user != nil {
		report.User = user.DisplayName()
	}
	if res.OK("inbox") && imap != nil {
		report.Inbox = &inboxInfo{
			Configured:    imap.HasIMAPConfig,
			ReadyToFetch:  imap.ReadyToFetch,
			MissingFields: imap.MissingFields,
			Message:       imap.Message,
		}
	}
	report.AI = &aiInfo{Status: ai.Status, Provider: ai.Provider, Model: ai.Model, Error: ai.Error}
	if res.OK("notifications") {
		report.Unread = &unread
	}
	for _, name := range res.Failed() {
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", name, api.Message(res.Errors()[name], "request failed")))
	}

	return writeYAML(out, report)
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// runMailcheck probes the given IMAP and SMTP servers with one set of
// credentials. The password is read from CRMTERM_MAIL_PASSWORD or prompted.
func runMailcheck(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mailcheck", flag.ContinueOnError)
	imapAddr := fs.String("imap", "", "IMAP server as host[:port]")
	smtpAddr := fs.String("smtp", "", "SMTP server as host[:port]")
	user := fs.String("user", "", "mailbox username")
	ssl := fs.Bool("ssl", true, "use implicit TLS for IMAP")
	useTLS := fs.Bool("tls", true, "use STARTTLS for SMTP")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imapAddr == "" && *smtpAddr == "" {
		fs.Usage()
		return errors.New("nothing to check: pass -imap and/or -smtp")
	}

	password, err := mailPassword()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	var reports []*mailcheck.Report
	if *imapAddr != "" {
		host, port, err := mailcheck.SplitHostPort(*imapAddr, imapPort(*ssl))
		if err != nil {
			return err
		}
		reports = append(reports, mailcheck.ProbeIMAP(ctx, model.IMAPSettings{
			IMAPServer:   host,
			IMAPPort:     port,
			IMAPUsername: *user,
			IMAPPassword: password,
			UseIMAPSSL:   *ssl,
		}))
	}
	if *smtpAddr != "" {
		host, port, err := mailcheck.SplitHostPort(*smtpAddr, 587)
		if err != nil {
			return err
		}
		reports = append(reports, mailcheck.ProbeSMTP(ctx, model.SMTPSettings{
			SMTPServer:   host,
			SMTPPort:     port,
			SMTPUsername: *user,
			SMTPPassword: password,
			UseTLS:       *useTLS,
		}))
	}

	var failed []error
	for _, r := range reports {
		printReport(out, r)
		if err := r.Err(); err != nil {
			failed = append(failed, err)
		}
	}
	return errors.Join(failed...)
}

func imapPort(ssl bool) int {
	if ssl {
		return 993
	}
	return 143
}

func mailPassword() (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}
	var pw string
	err := huh.NewInput().
		Title("Mailbox password").
		EchoMode(huh.EchoModePassword).
		Value(&pw).
		Run()
	return pw, err
}

func printReport(out io.Writer, r *mailcheck.Report) {
	fmt.Fprintf(out, "%s %s (%s)\n", strings.ToUpper(r.Protocol), r.Address, r.Elapsed.Round(time.Millisecond))
	for _, s := range r.Steps {
		if s.OK() {
			fmt.Fprintf(out, "  ok    %-10s %s\n", s.Name, s.Detail)
			continue
		}
		fmt.Fprintf(out, "  FAIL  %-10s %v\n", s.Name, s.Err)
	}
}
