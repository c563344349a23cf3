package sync

import (
	"context"
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const defaultNotificationInterval = 30 * time.Second

// UnreadCounter reports the number of unread notifications.
type UnreadCounter interface {
	UnreadCount(ctx context.Context) (int, error)
}

// UnreadCountMsg carries a refreshed unread notification count.
type UnreadCountMsg struct {
	Count int
	Run   uint64
}

// NotificationPoller refreshes the unread notification count for the
// header while the user is signed in.
type NotificationPoller struct {
	src      UnreadCounter
	interval time.Duration
	clock    Clock

	task     scope
	resultCh chan tea.Msg
}

// NewNotificationPoller creates a stopped poller.
func NewNotificationPoller(src UnreadCounter, interval time.Duration) *NotificationPoller {
	if interval <= 0 {
		interval = defaultNotificationInterval
	}
	return &NotificationPoller{
		src:      src,
		interval: interval,
		clock:    RealClock(),
		resultCh: make(chan tea.Msg, 4),
	}
}

// SetClock replaces the ticker source. It must be called before Start.
func (p *NotificationPoller) SetClock(c Clock) {
	p.clock = c
}

// Start begins refreshing: once immediately, then every interval.
func (p *NotificationPoller) Start(ctx context.Context) tea.Cmd {
	if !p.task.start(ctx, p.run) {
		return nil
	}
	return p.WaitForNextResult()
}

// Stop cancels the refresh loop and waits for it to exit.
func (p *NotificationPoller) Stop() {
	p.task.stop()
}

// Current reports whether a count tagged with run came from the running
// refresh loop.
func (p *NotificationPoller) Current(run uint64) bool {
	return p.task.current(run)
}

// WaitForNextResult returns a tea.Cmd that waits for the next count.
func (p *NotificationPoller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		return <-p.resultCh
	}
}

func (p *NotificationPoller) run(ctx context.Context, run uint64) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx, run)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			p.refresh(ctx, run)
		}
	}
}

func (p *NotificationPoller) refresh(ctx context.Context, run uint64) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	count, err := p.src.UnreadCount(reqCtx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("notification poll: %v", err)
		}
		return
	}

	select {
	case p.resultCh <- UnreadCountMsg{Count: count, Run: run}:
	default:
	}
}
