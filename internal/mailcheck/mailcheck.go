// Package mailcheck verifies IMAP and SMTP settings from this machine
// before they are saved to the backend profile. A probe logs in and looks
// around without changing anything on the server.
package mailcheck

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Step is one stage of a probe.
type Step struct {
	Name   string
	Detail string
	Err    error
}

// OK reports whether the step succeeded.
func (s Step) OK() bool { return s.Err == nil }

// Report is the outcome of a probe. Steps stop at the first failure.
type Report struct {
	Protocol string
	Address  string
	Steps    []Step
	Elapsed  time.Duration
}

// OK reports whether every step succeeded.
func (r *Report) OK() bool {
	return r.Err() == nil
}

// Err returns the first failed step's error.
func (r *Report) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return fmt.Errorf("%s %s: %s: %w", r.Protocol, r.Address, s.Name, s.Err)
		}
	}
	return nil
}

func (r *Report) pass(name, detail string) {
	r.Steps = append(r.Steps, Step{Name: name, Detail: detail})
}

func (r *Report) fail(name string, err error) *Report {
	r.Steps = append(r.Steps, Step{Name: name, Err: err})
	return r
}

// ErrIncomplete is returned for settings missing a required field.
var ErrIncomplete = errors.New("settings incomplete")

func validate(host string, port int, username, password string) error {
	var missing []string
	if strings.TrimSpace(host) == "" {
		missing = append(missing, "server")
	}
	if port <= 0 || port > 65535 {
		missing = append(missing, "port")
	}
	if strings.TrimSpace(username) == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// SplitHostPort parses "host:port" as given on the command line. A bare
// host gets defaultPort.
func SplitHostPort(addr string, defaultPort int) (string, int, error) {
	if !strings.Contains(addr, ":") {
		return addr, defaultPort, nil
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("parsing address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("parsing port in %q: %w", addr, err)
	}
	return host, port, nil
}
