package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"
)

// ErrPanic is wrapped by the error returned for a job that panicked.
var ErrPanic = errors.New("job panicked")

// Pool runs CPU intensive jobs on a bounded number of goroutines.
type Pool struct {
	limit int
}

// New returns a pool running at most limit jobs at once. A limit of zero or less uses one
// goroutine per CPU.
func New(limit int) *Pool {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &Pool{limit: limit}
}

// Limit ...
func (p *Pool) Limit() int {
	return p.limit
}

// Run calls job for every index in [0, n) and waits for all of them to return. A failing or
// panicking job never stops the others: every job runs unless ctx is done before it starts. The
// errors of all jobs are joined in index order.
func (p *Pool) Run(ctx context.Context, n int, job func(ctx context.Context, i int) error) error {
	errs := make([]error, n)
	g := new(errgroup.Group)
	g.SetLimit(p.limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			if err := Guard(func() error { return job(ctx, i) }); err != nil {
				errs[i] = fmt.Errorf("job %d: %w", i, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Guard calls f and turns a panic into an error wrapping ErrPanic. The panic is reported to
// sentry.
func Guard(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return f()
}
