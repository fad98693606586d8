// Package source supplies the directory with its company collection.
// A Source resolves once per call with either the full collection or an
// error; implementations never hand out slices they keep a reference to.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	e "github.com/gartstein/companydir/internal/directory/errors"
	"github.com/gartstein/companydir/internal/directory/models"
	"go.uber.org/zap"
)

// DefaultDelay is the artificial latency of the simulated source.
const DefaultDelay = 700 * time.Millisecond

// Source fetches the full company collection.
type Source interface {
	Fetch(ctx context.Context) ([]models.Company, error)
}

// Func adapts a plain function to Source.
type Func func(ctx context.Context) ([]models.Company, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context) ([]models.Company, error) {
	return f(ctx)
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default WaitFunc. The timer is released on every path.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Simulated resolves after Delay with a copy of Records, or with
// ErrFetchFailed when Fail is set.
type Simulated struct {
	Records []models.Company
	Delay   time.Duration
	Fail    bool
	// Wait replaces the real timer, mainly for tests. Defaults to Sleep.
	Wait WaitFunc
}

// NewSimulated builds a simulated source over records.
func NewSimulated(records []models.Company, delay time.Duration, fail bool) *Simulated {
	return &Simulated{
		Records: models.Clone(records),
		Delay:   delay,
		Fail:    fail,
	}
}

// Fetch implements Source.
func (s *Simulated) Fetch(ctx context.Context) ([]models.Company, error) {
	wait := s.Wait
	if wait == nil {
		wait = Sleep
	}
	if err := wait(ctx, s.Delay); err != nil {
		return nil, err
	}
	if s.Fail {
		return nil, e.ErrFetchFailed
	}
	out := models.Clone(s.Records)
	if out == nil {
		out = []models.Company{}
	}
	return out, nil
}

// Delayed adds the simulated latency and induced failure of Simulated to
// any other Source.
type Delayed struct {
	Next  Source
	Delay time.Duration
	Fail  bool
	Wait  WaitFunc
}

// NewDelayed wraps next.
func NewDelayed(next Source, delay time.Duration, fail bool) *Delayed {
	return &Delayed{Next: next, Delay: delay, Fail: fail}
}

// Fetch implements Source. A failing Delayed never calls Next.
func (d *Delayed) Fetch(ctx context.Context) ([]models.Company, error) {
	wait := d.Wait
	if wait == nil {
		wait = Sleep
	}
	if err := wait(ctx, d.Delay); err != nil {
		return nil, err
	}
	if d.Fail {
		return nil, e.ErrFetchFailed
	}
	return d.Next.Fetch(ctx)
}

// Lister is the read side of the company repository.
type Lister interface {
	ListCompanies(ctx context.Context) ([]models.Company, error)
}

// Store reads the collection from a repository.
type Store struct {
	repo Lister
}

// NewStore wraps a repository as a Source.
func NewStore(repo Lister) *Store {
	return &Store{repo: repo}
}

// Fetch implements Source. Repository failures are reported as ErrFetchFailed
// with the cause attached.
func (s *Store) Fetch(ctx context.Context) ([]models.Company, error) {
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", e.ErrFetchFailed, err)
	}
	return companies, nil
}

// Retrying retries a failing Source with exponential backoff.
type Retrying struct {
	next       Source
	maxRetries uint64
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

// NewRetrying retries next up to maxRetries extra times.
func NewRetrying(next Source, maxRetries uint64, initialInterval time.Duration, logger *zap.Logger) *Retrying {
	return &Retrying{
		next:       next,
		maxRetries: maxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initialInterval
			b.MaxElapsedTime = 0
			return b
		},
		logger: logger.Named("retrying_source"),
	}
}

// Fetch implements Source. Context errors stop the loop immediately.
func (r *Retrying) Fetch(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	attempt := 0
	operation := func() error {
		attempt++
		result, err := r.next.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			r.logger.Warn("fetch attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return err
		}
		companies = result
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), r.maxRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return companies, nil
}
