// Package loader runs a view's initial requests concurrently. Each call is
// isolated: one failing (or panicking) call never discards the results of
// the others, so a view can render whatever subset arrived.
package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Call is one named request. Run stores its own result through a closure.
type Call struct {
	Name string
	Run  func(ctx context.Context) error
}

// Report collects the failures of a Load.
type Report struct {
	failed map[string]error
}

// Load runs every call concurrently and waits for all of them.
func Load(ctx context.Context, calls ...Call) *Report {
	errs := make([]error, len(calls))

	wg := conc.NewWaitGroup()
	for i, call := range calls {
		wg.Go(func() {
			errs[i] = runIsolated(ctx, call)
		})
	}
	wg.Wait()

	r := &Report{failed: make(map[string]error)}
	for i, err := range errs {
		if err != nil {
			r.failed[calls[i].Name] = err
		}
	}
	return r
}

func runIsolated(ctx context.Context, call Call) error {
	var (
		catcher panics.Catcher
		err     error
	)
	catcher.Try(func() {
		err = call.Run(ctx)
	})
	if rec := catcher.Recovered(); rec != nil {
		return fmt.Errorf("%s panicked: %w", call.Name, rec.AsError())
	}
	return err
}

// OK reports whether the named call succeeded.
func (r *Report) OK(name string) bool {
	_, failed := r.failed[name]
	return !failed
}

// Failed returns the names of the failed calls in sorted order.
func (r *Report) Failed() []string {
	names := make([]string, 0, len(r.failed))
	for name := range r.failed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Errors returns the failure of each failed call by name.
func (r *Report) Errors() map[string]error {
	return r.failed
}

// Err summarizes all failures, or returns nil when every call succeeded.
func (r *Report) Err() error {
	if len(r.failed) == 0 {
		return nil
	}
	names := r.Failed()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %v", name, r.failed[name])
	}
	return fmt.Errorf("loading %s", strings.Join(parts, "; "))
}
