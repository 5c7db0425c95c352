package panels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// dispatcher queues callbacks from loader goroutines until the update loop
// drains them.
type dispatcher struct {
	mu    sync.Mutex
	queue []func()
}

func (d *dispatcher) post(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
}

// drain runs every queued callback in post order and returns how many ran.
// Callbacks posted while draining run in the next drain.
func (d *dispatcher) drain() int {
	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()
	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

func (d *dispatcher) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// VisualCache maps asset addresses to loaded visuals. At most one load per
// address is in flight; every caller waiting on it is answered from the same
// result.
type VisualCache struct {
	loader   Loader
	dispatch *dispatcher
	timeout  time.Duration
	log      *slog.Logger

	group    singleflight.Group
	sem      *semaphore.Weighted
	inflight sync.WaitGroup

	mu      sync.Mutex
	handles map[string]*Visual
	waiters map[string][]func(*Visual, error)
	loads   int
}

func newVisualCache(loader Loader, d *dispatcher, maxLoads int, timeout time.Duration, log *slog.Logger) *VisualCache {
	return &VisualCache{
		loader:   loader,
		dispatch: d,
		timeout:  timeout,
		log:      log,
		sem:      semaphore.NewWeighted(int64(maxLoads)),
		handles:  make(map[string]*Visual),
		waiters:  make(map[string][]func(*Visual, error)),
	}
}

// Resolve returns the cached visual for address and true on a hit. On a miss
// it returns false and done is called from the update loop once the load
// finishes. done is never called on a hit.
func (c *VisualCache) Resolve(address string, done func(*Visual, error)) (*Visual, bool) {
	if done == nil {
		done = func(*Visual, error) {}
	}
	c.mu.Lock()
	if v, ok := c.handles[address]; ok {
		c.mu.Unlock()
		return v, true
	}
	waiting, loading := c.waiters[address]
	c.waiters[address] = append(waiting, done)
	c.mu.Unlock()

	if !loading {
		c.inflight.Add(1)
		go c.fetch(address)
	}
	return nil, false
}

func (c *VisualCache) fetch(address string) {
	defer c.inflight.Done()
	v, err := c.load(context.Background(), address)

	c.mu.Lock()
	waiters := c.waiters[address]
	delete(c.waiters, address)
	c.mu.Unlock()

	c.dispatch.post(func() {
		for _, w := range waiters {
			w(v, err)
		}
	})
}

// load runs the loader for address, sharing the call with any concurrent
// load of the same address. The shared call is bounded only by the cache
// timeout; ctx limits how long this caller waits for it. Successful results
// are stored before the shared call ends so later lookups hit.
func (c *VisualCache) load(ctx context.Context, address string) (*Visual, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(address, func() (any, error) {
		return c.loadShared(shared, address)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Visual), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %q: %w", ErrLoadFailed, address, ctx.Err())
	}
}

func (c *VisualCache) loadShared(ctx context.Context, address string) (*Visual, error) {
	if v, ok := c.Lookup(address); ok {
		return v, nil
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrLoadFailed, address, err)
	}
	defer c.sem.Release(1)

	start := time.Now()
	v, err := c.loader.Load(ctx, address)
	if err != nil {
		if !errors.Is(err, ErrAssetNotFound) && !errors.Is(err, ErrLoadFailed) {
			err = fmt.Errorf("%w: %q: %w", ErrLoadFailed, address, err)
		}
		return nil, err
	}
	if v == nil || v.Root == nil {
		return nil, fmt.Errorf("%w: %q: loader returned no visual", ErrLoadFailed, address)
	}
	v.Address = address

	c.mu.Lock()
	c.handles[address] = v
	c.loads++
	c.mu.Unlock()
	c.log.Debug("panels: visual loaded", "address", address, "elapsed", time.Since(start))
	return v, nil
}

// Preload loads every address concurrently and blocks until all are cached
// or one fails. Addresses already cached or in flight are not loaded twice.
func (c *VisualCache) Preload(ctx context.Context, addresses ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, address := range addresses {
		g.Go(func() error {
			_, err := c.load(ctx, address)
			return err
		})
	}
	return g.Wait()
}

// Lookup returns the cached visual for address without loading.
func (c *VisualCache) Lookup(address string) (*Visual, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.handles[address]
	return v, ok
}

// Evict drops the cached visual for address and disposes its node tree.
func (c *VisualCache) Evict(address string) bool {
	c.mu.Lock()
	v, ok := c.handles[address]
	delete(c.handles, address)
	c.mu.Unlock()
	if !ok {
		return false
	}
	v.owner = nil
	v.Root.Dispose()
	return true
}

// Len returns the number of cached visuals.
func (c *VisualCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

// Loads returns how many loader calls have succeeded.
func (c *VisualCache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

// Pending reports whether a load for address is in flight.
func (c *VisualCache) Pending(address string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.waiters[address]
	return ok
}

// Wait blocks until no Resolve-initiated load is in flight. Their callbacks
// are queued, not run; the manager drains them afterwards.
func (c *VisualCache) Wait() {
	c.inflight.Wait()
}
