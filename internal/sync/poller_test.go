package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/crmterm/internal/model"
)

type fakeClock struct {
	ch chan time.Time

	mu       gosync.Mutex
	interval time.Duration
	stopped  int
}

func newFakeClock() *fakeClock {
	return &fakeClock{ch: make(chan time.Time)}
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interval = d
	return &fakeTicker{clock: c}
}

// tick delivers one tick and reports whether a loop received it in time.
func (c *fakeClock) tick(wait time.Duration) bool {
	select {
	case c.ch <- time.Now():
		return true
	case <-time.After(wait):
		return false
	}
}

type fakeTicker struct {
	clock *fakeClock
}

func (t *fakeTicker) C() <-chan time.Time { return t.clock.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.clock.stopped++
}

type fakeInbox struct {
	mu        gosync.Mutex
	ready     bool
	statusErr error
	fetchErrs []error
	fetches   int
	lists     int
	fetched   chan struct{}
}

func newFakeInbox(ready bool) *fakeInbox {
	return &fakeInbox{ready: ready, fetched: make(chan struct{}, 16)}
}

func (f *fakeInbox) List(context.Context) ([]model.IncomingEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return []model.IncomingEmail{{ID: int64(f.lists), Subject: "Hello"}}, nil
}

func (f *fakeInbox) Status(context.Context) (*model.IMAPStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &model.IMAPStatus{ReadyToFetch: f.ready}, nil
}

func (f *fakeInbox) Fetch(context.Context) (*model.FetchResult, error) {
	f.mu.Lock()
	f.fetches++
	var err error
	if len(f.fetchErrs) > 0 {
		err, f.fetchErrs = f.fetchErrs[0], f.fetchErrs[1:]
	}
	f.mu.Unlock()

	f.fetched <- struct{}{}
	if err != nil {
		return nil, err
	}
	return &model.FetchResult{Success: true, SavedCount: 1}, nil
}

func (f *fakeInbox) counts() (fetches, lists int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches, f.lists
}

type memCache struct {
	mu    gosync.Mutex
	saved [][]model.IncomingEmail
}

func (c *memCache) SaveIncomingEmails(_ context.Context, emails []model.IncomingEmail) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saved = append(c.saved, emails)
	return nil
}

func waitFetch(t *testing.T, f *fakeInbox) {
	t.Helper()
	select {
	case <-f.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a fetch from IMAP")
	}
}

func TestInboxPollerFetchesImmediatelyThenPerTick(t *testing.T) {
	src := newFakeInbox(true)
	clk := newFakeClock()
	cache := &memCache{}

	p := NewInboxPoller(src, cache, time.Minute)
	p.SetClock(clk)

	cmd := p.Activate(context.Background())
	require.NotNil(t, cmd)

	loaded, ok := cmd().(InboxLoadedMsg)
	require.True(t, ok)
	assert.True(t, loaded.Ready())
	assert.NoError(t, loaded.Err)
	assert.Len(t, loaded.Emails, 1)

	waitFetch(t, src)
	assert.Equal(t, PollPolling, p.State())

	refreshed, ok := p.WaitForNextResult()().(InboxRefreshedMsg)
	require.True(t, ok)
	assert.Equal(t, 1, refreshed.Fetched.SavedCount)

	require.True(t, clk.tick(2*time.Second))
	waitFetch(t, src)
	_, ok = p.WaitForNextResult()().(InboxRefreshedMsg)
	require.True(t, ok)

	p.Deactivate()
	assert.Equal(t, PollIdle, p.State())
	assert.False(t, p.Active())
	assert.False(t, clk.tick(50*time.Millisecond), "no loop may receive ticks after deactivation")

	fetches, lists := src.counts()
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 3, lists)
	assert.Equal(t, time.Minute, clk.interval)
	assert.Equal(t, 1, clk.stopped)
	assert.Len(t, cache.saved, 3)
}

func TestInboxPollerNotReadyNeverFetches(t *testing.T) {
	src := newFakeInbox(false)
	clk := newFakeClock()

	p := NewInboxPoller(src, nil, time.Minute)
	p.SetClock(clk)

	loaded, ok := p.Activate(context.Background())().(InboxLoadedMsg)
	require.True(t, ok)
	assert.False(t, loaded.Ready())
	assert.Equal(t, PollNotReady, p.State())

	assert.False(t, clk.tick(50*time.Millisecond))
	p.Deactivate()

	fetches, _ := src.counts()
	assert.Zero(t, fetches)
}

func TestInboxPollerStatusFailureKeepsList(t *testing.T) {
	src := newFakeInbox(true)
	src.statusErr = errors.New("status down")

	p := NewInboxPoller(src, nil, time.Minute)
	p.SetClock(newFakeClock())
	defer p.Deactivate()

	loaded, ok := p.Activate(context.Background())().(InboxLoadedMsg)
	require.True(t, ok)
	assert.False(t, loaded.Ready())
	assert.Len(t, loaded.Emails, 1)
	require.Error(t, loaded.Err)
	assert.Contains(t, loaded.Err.Error(), "imap status")
	assert.Equal(t, PollNotReady, p.State())
}

func TestInboxPollerFailedFetchRetriesOnNextTick(t *testing.T) {
	src := newFakeInbox(true)
	src.fetchErrs = []error{errors.New("imap timeout")}
	clk := newFakeClock()

	p := NewInboxPoller(src, nil, time.Minute)
	p.SetClock(clk)
	defer p.Deactivate()

	_, ok := p.Activate(context.Background())().(InboxLoadedMsg)
	require.True(t, ok)
	waitFetch(t, src)

	require.True(t, clk.tick(2*time.Second))
	waitFetch(t, src)

	refreshed, ok := p.WaitForNextResult()().(InboxRefreshedMsg)
	require.True(t, ok)
	assert.Len(t, refreshed.Emails, 1)

	fetches, lists := src.counts()
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 2, lists, "a failed fetch must not re-list")
}

func TestInboxPollerActivateTwiceIsNoop(t *testing.T) {
	p := NewInboxPoller(newFakeInbox(false), nil, 0)
	p.SetClock(newFakeClock())
	defer p.Deactivate()

	require.NotNil(t, p.Activate(context.Background()))
	assert.Nil(t, p.Activate(context.Background()))
	assert.Equal(t, defaultInboxInterval, p.interval)
}

type fakeCounter struct {
	mu    gosync.Mutex
	count int
}

func (c *fakeCounter) UnreadCount(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
	return c.count, nil
}

func TestNotificationPollerRefreshesPerTick(t *testing.T) {
	clk := newFakeClock()
	p := NewNotificationPoller(&fakeCounter{}, 0)
	p.SetClock(clk)

	first, ok := p.Start(context.Background())().(UnreadCountMsg)
	require.True(t, ok)
	assert.Equal(t, 1, first.Count)

	require.True(t, clk.tick(2*time.Second))
	second, ok := p.WaitForNextResult()().(UnreadCountMsg)
	require.True(t, ok)
	assert.Equal(t, 2, second.Count)

	p.Stop()
	assert.False(t, clk.tick(50*time.Millisecond))
	assert.Equal(t, defaultNotificationInterval, clk.interval)
}

func TestInboxResultsOfAStoppedRunAreStale(t *testing.T) {
	p := NewInboxPoller(newFakeInbox(false), nil, time.Minute)
	p.SetClock(newFakeClock())
	defer p.Deactivate()

	first, ok := p.Activate(context.Background())().(InboxLoadedMsg)
	require.True(t, ok)
	assert.True(t, p.Current(first.Run))

	p.Deactivate()
	assert.False(t, p.Current(first.Run))

	second, ok := p.Activate(context.Background())().(InboxLoadedMsg)
	require.True(t, ok)
	assert.NotEqual(t, first.Run, second.Run)
	assert.True(t, p.Current(second.Run))
	assert.False(t, p.Current(first.Run))
}

func TestRefreshCarriesItsRun(t *testing.T) {
	src := newFakeInbox(true)
	p := NewInboxPoller(src, nil, time.Minute)
	p.SetClock(newFakeClock())
	defer p.Deactivate()

	loaded, ok := p.Activate(context.Background())().(InboxLoadedMsg)
	require.True(t, ok)
	waitFetch(t, src)

	refreshed, ok := p.WaitForNextResult()().(InboxRefreshedMsg)
	require.True(t, ok)
	assert.Equal(t, loaded.Run, refreshed.Run)
}

func TestUnreadCountOfAStoppedRunIsStale(t *testing.T) {
	p := NewNotificationPoller(&fakeCounter{}, time.Minute)
	p.SetClock(newFakeClock())

	first, ok := p.Start(context.Background())().(UnreadCountMsg)
	require.True(t, ok)
	assert.True(t, p.Current(first.Run))

	p.Stop()
	assert.False(t, p.Current(first.Run))
}
