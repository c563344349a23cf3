package sync

import (
	"context"
	gosync "sync"
)

// scope owns at most one background goroutine bound to a cancellable
// context. stop cancels it and waits until it has returned. Every start
// gets a new run number so results of a stopped run can be told apart.
type scope struct {
	mu     gosync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	run    uint64
}

// start launches fn unless a goroutine is already running. It reports
// whether fn was started.
func (s *scope) start(parent context.Context, fn func(ctx context.Context, run uint64)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.run++
	run := s.run

	go func() {
		defer close(done)
		fn(ctx, run)
	}()
	return true
}

func (s *scope) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *scope) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// current reports whether run is the goroutine running now.
func (s *scope) current(run uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil && s.run == run
}
