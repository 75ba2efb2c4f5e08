package readings

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/portfolio-go/internal/devices"
	"github.com/nibzard/portfolio-go/internal/logging"
	"github.com/nibzard/portfolio-go/internal/parallel"
)

// DefaultInterval is the time between polls.
const DefaultInterval = 5 * time.Second

// DefaultWorkers bounds how many devices are fetched at once.
const DefaultWorkers = 4

// Poller refreshes the widgets of every registered device on an interval.
type Poller struct {
	fetcher  Fetcher
	registry *devices.Registry
	interval time.Duration
	workers  int
	logger   *log.Logger
	onUpdate func([]devices.Device)
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the poll interval. Non-positive values keep the default.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithWorkers sets how many devices are fetched concurrently. Zero fetches
// them all at once.
func WithWorkers(n int) PollerOption {
	return func(p *Poller) {
		if n >= 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger for fetch failures.
func WithLogger(logger *log.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// OnUpdate registers a function called with the registry after every poll.
func OnUpdate(fn func([]devices.Device)) PollerOption {
	return func(p *Poller) { p.onUpdate = fn }
}

// NewPoller returns a poller that applies readings from fetcher to registry.
func NewPoller(fetcher Fetcher, registry *devices.Registry, opts ...PollerOption) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		registry: registry,
		interval: DefaultInterval,
		workers:  DefaultWorkers,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.PollOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PollOnce fetches every device once and applies the readings in one batch,
// so the registry is saved once per round. A device whose fetch fails has
// its widgets reset to devices.NoValue.
func (p *Poller) PollOnce(ctx context.Context) {
	ids := p.registry.IDs()
	pool := parallel.NewPool[map[string]any](ctx, p.workers, false)
	for _, id := range ids {
		pool.Submit(id, func(ctx context.Context) (map[string]any, error) {
			return p.fetcher.Fetch(ctx, id)
		})
	}
	results, _ := pool.Wait()
	if ctx.Err() != nil {
		return
	}

	batch := make(map[string]map[string]any, len(results))
	for _, r := range results {
		if r.Err != nil {
			p.logger.Warn("fetch readings failed", "device", r.ID, "err", r.Err)
			batch[r.ID] = nil
			continue
		}
		batch[r.ID] = r.Value
	}
	if err := p.registry.ApplyReadings(batch); err != nil {
		p.logger.Error("apply readings failed", "err", err)
	}
	if p.onUpdate != nil {
		p.onUpdate(p.registry.Devices())
	}
}
