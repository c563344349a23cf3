// Package sync runs the background refresh tasks of the TUI: the IMAP
// inbox poll and the notification unread-count poll. Both are scoped to a
// cancellable context and deliver results to Bubble Tea over a channel.
package sync

import (
	"context"
	"errors"
	"log"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/crmterm/internal/loader"
	"github.com/nhle/crmterm/internal/model"
)

// PollState is where the inbox poller is in its lifecycle.
type PollState int

const (
	PollIdle PollState = iota
	PollCheckingReadiness
	PollNotReady
	PollPolling
)

func (s PollState) String() string {
	switch s {
	case PollIdle:
		return "idle"
	case PollCheckingReadiness:
		return "checking"
	case PollNotReady:
		return "not ready"
	case PollPolling:
		return "polling"
	}
	return "unknown"
}

// InboxSource is the backend surface the poller needs.
type InboxSource interface {
	List(ctx context.Context) ([]model.IncomingEmail, error)
	Status(ctx context.Context) (*model.IMAPStatus, error)
	Fetch(ctx context.Context) (*model.FetchResult, error)
}

// InboxCache keeps the last known incoming list for instant startup.
type InboxCache interface {
	SaveIncomingEmails(ctx context.Context, emails []model.IncomingEmail) error
}

// InboxLoadedMsg is sent once per activation with the initial list and the
// readiness status. Emails is set even when Status failed, and vice versa.
type InboxLoadedMsg struct {
	Emails []model.IncomingEmail
	Status *model.IMAPStatus
	Err    error

	// Run identifies the activation that produced the message.
	Run uint64
}

// Ready reports whether fetching from IMAP is possible.
func (m InboxLoadedMsg) Ready() bool {
	return m.Status != nil && m.Status.ReadyToFetch
}

// InboxRefreshedMsg is sent after a successful fetch-from-IMAP with the
// freshly listed inbox.
type InboxRefreshedMsg struct {
	Emails  []model.IncomingEmail
	Fetched *model.FetchResult
	Run     uint64
}

// requestTimeout bounds a single backend call made by a poll.
const requestTimeout = 30 * time.Second

const defaultInboxInterval = 60 * time.Second

// InboxPoller fetches new mail from IMAP while the inbox view is active:
// once immediately and then on every tick, provided the profile's IMAP
// settings are complete.
type InboxPoller struct {
	src      InboxSource
	cache    InboxCache
	interval time.Duration
	clock    Clock

	task     scope
	resultCh chan tea.Msg

	mu    gosync.Mutex
	state PollState
}

// NewInboxPoller creates an idle poller. cache may be nil.
func NewInboxPoller(src InboxSource, cache InboxCache, interval time.Duration) *InboxPoller {
	if interval <= 0 {
		interval = defaultInboxInterval
	}
	return &InboxPoller{
		src:      src,
		cache:    cache,
		interval: interval,
		clock:    RealClock(),
		resultCh: make(chan tea.Msg, 16),
	}
}

// SetClock replaces the ticker source. It must be called before Activate.
func (p *InboxPoller) SetClock(c Clock) {
	p.clock = c
}

// State returns the current lifecycle state.
func (p *InboxPoller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Activate starts the readiness check and, if ready, the poll loop. It
// returns immediately; activating an already active poller is a no-op.
func (p *InboxPoller) Activate(ctx context.Context) tea.Cmd {
	if !p.task.start(ctx, p.run) {
		return nil
	}
	return p.WaitForNextResult()
}

// Deactivate cancels the poll loop and waits for it to exit. No fetch
// starts after Deactivate returns.
func (p *InboxPoller) Deactivate() {
	p.task.stop()
	p.setState(PollIdle)
}

// Active reports whether the poller has been activated and not yet
// deactivated.
func (p *InboxPoller) Active() bool {
	return p.task.running()
}

// Current reports whether a result tagged with run came from the current
// activation. Results of a deactivated run are stale.
func (p *InboxPoller) Current(run uint64) bool {
	return p.task.current(run)
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll result.
// Call it again after handling each result to keep listening.
func (p *InboxPoller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		return <-p.resultCh
	}
}

func (p *InboxPoller) run(ctx context.Context, run uint64) {
	p.setState(PollCheckingReadiness)

	loaded := p.load(ctx)
	loaded.Run = run
	if ctx.Err() != nil {
		return
	}

	if !loaded.Ready() {
		p.setState(PollNotReady)
		p.sendResult(loaded)
		return
	}

	p.setState(PollPolling)
	p.sendResult(loaded)

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, run)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			// A tick and a cancellation may arrive together.
			if ctx.Err() != nil {
				return
			}
			p.poll(ctx, run)
		}
	}
}

// load fetches the list and the readiness status concurrently.
func (p *InboxPoller) load(ctx context.Context) InboxLoadedMsg {
	var msg InboxLoadedMsg

	report := loader.Load(ctx,
		loader.Call{Name: "incoming emails", Run: func(ctx context.Context) error {
			emails, err := p.src.List(ctx)
			msg.Emails = emails
			return err
		}},
		loader.Call{Name: "imap status", Run: func(ctx context.Context) error {
			status, err := p.src.Status(ctx)
			msg.Status = status
			return err
		}},
	)
	msg.Err = report.Err()

	if report.OK("incoming emails") {
		p.saveCache(ctx, msg.Emails)
	}
	return msg
}

// poll performs one fetch-from-IMAP and, when it succeeds, re-lists the
// inbox. Failures are logged and left for the next tick.
func (p *InboxPoller) poll(ctx context.Context, run uint64) {
	fetchCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	fetched, err := p.src.Fetch(fetchCtx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("inbox poll: fetch failed: %v", err)
		}
		return
	}

	emails, err := p.src.List(fetchCtx)
	if err != nil {
		log.Printf("inbox poll: listing after fetch failed: %v", err)
		return
	}

	p.saveCache(ctx, emails)
	p.sendResult(InboxRefreshedMsg{Emails: emails, Fetched: fetched, Run: run})
}

func (p *InboxPoller) saveCache(ctx context.Context, emails []model.IncomingEmail) {
	if p.cache == nil {
		return
	}
	if err := p.cache.SaveIncomingEmails(ctx, emails); err != nil {
		log.Printf("inbox poll: caching incoming emails: %v", err)
	}
}

func (p *InboxPoller) setState(s PollState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}

// sendResult sends a result without blocking; a full channel drops it.
func (p *InboxPoller) sendResult(msg tea.Msg) {
	select {
	case p.resultCh <- msg:
	default:
	}
}
