// Package controller owns the company collection of a running directory:
// it performs the one-shot asynchronous load, guards against resolutions
// that arrive after the owner went away, and derives views from queries.
package controller

import (
	"context"
	"fmt"
	"slices"
	"sync"

	e "github.com/gartstein/companydir/internal/directory/errors"
	"github.com/gartstein/companydir/internal/directory/events"
	"github.com/gartstein/companydir/internal/directory/filter"
	"github.com/gartstein/companydir/internal/directory/models"
	"github.com/gartstein/companydir/internal/directory/sorting"
	"github.com/gartstein/companydir/internal/directory/source"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is the lifecycle stage of the collection.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// EventProducer publishes directory lifecycle events.
type EventProducer interface {
	Produce(event events.Event)
}

// Option configures a Directory.
type Option func(*Directory)

// WithSorter sets the sorter used for derived views.
func WithSorter(s *sorting.Sorter) Option {
	return func(d *Directory) {
		d.sorter = s
	}
}

// WithStatusObserver registers fn to be called after every status change.
// Observers run on the goroutine that caused the change.
func WithStatusObserver(fn func(Status)) Option {
	return func(d *Directory) {
		d.observers = append(d.observers, fn)
	}
}

// Directory holds the collection and its load state.
type Directory struct {
	source    source.Source
	producer  EventProducer
	sorter    *sorting.Sorter
	logger    *zap.Logger
	observers []func(Status)

	mu       sync.RWMutex
	status   Status
	records  []models.Company
	options  filter.Options
	err      error
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	disposed bool
	wg       sync.WaitGroup
}

// NewDirectory constructs a Directory in the loading state. Nothing is
// fetched until Load is called.
func NewDirectory(src source.Source, producer EventProducer, logger *zap.Logger, opts ...Option) *Directory {
	if producer == nil {
		producer = events.NopProducer{}
	}
	d := &Directory{
		source:   src,
		producer: producer,
		sorter:   sorting.Default,
		logger:   logger.Named("directory"),
		status:   StatusLoading,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load starts fetching the collection and returns immediately. A load that
// is still outstanding is superseded: its result will be discarded. Load is
// also the retry action after a failure.
func (d *Directory) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return e.ErrDisposed
	}
	if d.cancel != nil {
		d.cancel()
	}
	if d.status != StatusLoading {
		d.done = make(chan struct{})
	}
	d.gen++
	gen := d.gen
	d.status = StatusLoading
	d.records = nil
	d.options = filter.Options{}
	d.err = nil
	fetchCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	d.logger.Info("loading companies", zap.Uint64("generation", gen))
	d.notify()

	go func() {
		defer d.wg.Done()
		defer cancel()
		companies, err := d.source.Fetch(fetchCtx)
		d.resolve(gen, companies, err)
	}()
	return nil
}

// resolve applies a finished fetch unless it was superseded or the
// directory has been disposed, in which case it is a no-op.
func (d *Directory) resolve(gen uint64, companies []models.Company, err error) {
	d.mu.Lock()
	if d.disposed || gen != d.gen {
		d.mu.Unlock()
		d.logger.Debug("discarding stale load result", zap.Uint64("generation", gen))
		return
	}
	if err != nil {
		d.status = StatusFailed
		d.err = err
	} else {
		d.status = StatusReady
		d.records = models.Clone(companies)
		d.options = filter.OptionsOf(d.records)
	}
	d.cancel = nil
	count := len(d.records)
	done := d.done
	d.mu.Unlock()
	// Waiters are released only after events and observers ran.
	defer close(done)

	if err != nil {
		d.logger.Error("failed to load companies", zap.Error(err))
		d.producer.Produce(events.NewEvent(events.DirectoryLoadFailed, 0, err))
	} else {
		d.logger.Info("companies loaded", zap.Int("count", count))
		d.producer.Produce(events.NewEvent(events.DirectoryLoaded, count, nil))
	}
	d.notify()
}

// notify reports the status current at call time, so that observers settle
// on the latest status even when loads overlap.
func (d *Directory) notify() {
	status, _ := d.Status()
	for _, fn := range d.observers {
		fn(status)
	}
}

// Wait blocks until the current load resolves or ctx is done, and returns
// the load error, if any.
func (d *Directory) Wait(ctx context.Context) error {
	d.mu.RLock()
	done := d.done
	d.mu.RUnlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.disposed && d.status == StatusLoading {
		return e.ErrDisposed
	}
	return d.err
}

// Dispose cancels any outstanding load and waits for its goroutine to exit.
// Later resolutions and loads are no-ops. Dispose is idempotent.
func (d *Directory) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.status == StatusLoading {
		// Release waiters; the pending result will be discarded.
		close(d.done)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Debug("directory disposed")
}

// Status returns the current status and, when failed, the load error.
func (d *Directory) Status() (Status, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status, d.err
}

// snapshot returns the collection when ready, otherwise the reason why not.
func (d *Directory) snapshot() ([]models.Company, filter.Options, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	switch d.status {
	case StatusReady:
		return d.records, d.options, nil
	case StatusFailed:
		return nil, filter.Options{}, d.err
	default:
		return nil, filter.Options{}, e.ErrNotReady
	}
}

// Records returns a copy of the full collection.
func (d *Directory) Records() ([]models.Company, error) {
	records, _, err := d.snapshot()
	if err != nil {
		return nil, err
	}
	return models.Clone(records), nil
}

// Options returns the selectable locations and industries.
func (d *Directory) Options() (filter.Options, error) {
	_, opts, err := d.snapshot()
	if err != nil {
		return filter.Options{}, err
	}
	return filter.Options{
		Locations:  slices.Clone(opts.Locations),
		Industries: slices.Clone(opts.Industries),
	}, nil
}

// Find returns the company with the given id.
func (d *Directory) Find(id uuid.UUID) (models.Company, error) {
	records, _, err := d.snapshot()
	if err != nil {
		return models.Company{}, err
	}
	for _, c := range records {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Company{}, fmt.Errorf("%w: company %s", e.ErrNotFound, id)
}

// Query derives the view for q. Parameters are only applied once the
// collection is loaded; before that ErrNotReady (or the load error) is
// returned.
func (d *Directory) Query(q Query) (View, error) {
	records, opts, err := d.snapshot()
	if err != nil {
		return View{}, err
	}
	// records is replaced, never mutated, so it is safe to read unlocked.
	return Derive(records, q, d.sorter, opts), nil
}
