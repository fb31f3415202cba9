package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Priority controls eviction order. High-priority entries are evicted only
// when nothing else remains and are never collected by the idle janitor.
type Priority int

const (
	PriorityLow    Priority = -1
	PriorityNormal Priority = 0
	PriorityHigh   Priority = 1
)

type Config struct {
	MaxMemoryBytes   int64
	MaxEntries       int
	HeadroomFraction float64       // evict until memory use is below this fraction of the budget
	DefaultTimeout   time.Duration // per-load timeout when AcquireOptions.Timeout is zero
	CleanupInterval  time.Duration // idle janitor period
	MaxIdleAge       time.Duration // entries untouched this long are released
}

func DefaultConfig() Config {
	return Config{
		MaxMemoryBytes:   512 << 20,
		MaxEntries:       16,
		HeadroomFraction: 0.8,
		DefaultTimeout:   30 * time.Second,
		CleanupInterval:  time.Minute,
		MaxIdleAge:       10 * time.Minute,
	}
}

// Loader produces the artifact payload and an estimate of its memory
// footprint in bytes.
type Loader func(ctx context.Context) (payload any, sizeBytes int64, err error)

type AcquireOptions struct {
	Priority Priority
	Timeout  time.Duration
	// OnProgress is invoked at most once with 100 after a successful load.
	OnProgress func(percent int)
}

const (
	CodeLoadFailed  = "load_failed"
	CodeLoadTimeout = "load_timeout"
	CodeCanceled    = "canceled"
)

type LoadError struct {
	ID   string
	Code string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("artifact %s: %s: %v", e.ID, e.Code, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func IsLoadError(err error) bool {
	var target *LoadError
	return errors.As(err, &target)
}

type entry struct {
	id         string
	payload    any
	size       int64
	priority   Priority
	lastAccess time.Time
}

// Cache is a process-wide store for expensive in-memory artifacts. Loads for
// the same identifier are coalesced, and resident entries are evicted under
// memory, count, and idle-age pressure.
type Cache struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*entry
	memory  int64

	flight singleflight.Group

	stop     chan struct{}
	stopOnce sync.Once
}

func New(cfg Config) *Cache {
	def := DefaultConfig()
	if cfg.MaxMemoryBytes <= 0 {
		cfg.MaxMemoryBytes = def.MaxMemoryBytes
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	if cfg.HeadroomFraction <= 0 || cfg.HeadroomFraction > 1 {
		cfg.HeadroomFraction = def.HeadroomFraction
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = def.DefaultTimeout
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.MaxIdleAge <= 0 {
		cfg.MaxIdleAge = def.MaxIdleAge
	}

	c := &Cache{
		cfg:     cfg,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	go c.janitor()
	return c
}

// Stop halts the background idle janitor. Resident entries stay usable.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Acquire returns the resident payload for id, or loads it via load. Callers
// racing on the same id share one loader invocation. A canceled ctx aborts
// this caller's wait only; the load keeps running and may still populate the
// cache for later callers.
func (c *Cache) Acquire(ctx context.Context, id string, load Loader, opts AcquireOptions) (any, error) {
	if p, ok := c.lookup(id); ok {
		return p, nil
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.cfg.DefaultTimeout
	}

	ch := c.flight.DoChan(id, func() (any, error) {
		return c.loadEntry(id, load, opts, timeout)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val, nil
	case <-ctx.Done():
		code := CodeCanceled
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			code = CodeLoadTimeout
		}
		return nil, &LoadError{ID: id, Code: code, Err: ctx.Err()}
	}
}

func (c *Cache) lookup(id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	e.lastAccess = time.Now()
	return e.payload, true
}

func (c *Cache) loadEntry(id string, load Loader, opts AcquireOptions, timeout time.Duration) (any, error) {
	// A racing Acquire may have stored the entry between the caller's lookup
	// and this flight starting.
	if p, ok := c.lookup(id); ok {
		return p, nil
	}

	// Early pass so eviction cost is usually paid before the load, not under
	// the insert below. The insert re-checks: concurrent loads for distinct
	// ids all pass this check while the map is still small.
	c.ensureHeadroom(0)

	lctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	type loadResult struct {
		payload any
		size    int64
		err     error
	}
	done := make(chan loadResult, 1)
	go func() {
		p, size, err := load(lctx)
		done <- loadResult{p, size, err}
	}()

	var res loadResult
	select {
	case res = <-done:
	case <-lctx.Done():
		return nil, &LoadError{ID: id, Code: CodeLoadTimeout, Err: lctx.Err()}
	}
	if res.err != nil {
		code := CodeLoadFailed
		if errors.Is(res.err, context.DeadlineExceeded) {
			code = CodeLoadTimeout
		}
		return nil, &LoadError{ID: id, Code: code, Err: res.err}
	}

	c.mu.Lock()
	c.makeRoomLocked(res.size)
	c.entries[id] = &entry{
		id:         id,
		payload:    res.payload,
		size:       res.size,
		priority:   opts.Priority,
		lastAccess: time.Now(),
	}
	c.memory += res.size
	c.mu.Unlock()

	if opts.OnProgress != nil {
		opts.OnProgress(100)
	}
	return res.payload, nil
}

// Release removes the resident entry for id, reporting whether one existed.
// If the payload implements io.Closer, Close is called best-effort.
func (c *Cache) Release(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(id)
}

func (c *Cache) removeLocked(id string) bool {
	e, ok := c.entries[id]
	if !ok {
		return false
	}
	delete(c.entries, id)
	c.memory -= e.size
	if closer, ok := e.payload.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Printf("[artifact] cleanup for %s: %v", id, err)
		}
	}
	return true
}

func (c *Cache) ensureHeadroom(incoming int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.makeRoomLocked(incoming)
}

// makeRoomLocked evicts entries until projected memory use (including the
// incoming payload) is below the headroom fraction of the budget and a slot
// is free under MaxEntries. Callers hold c.mu, which also keeps the idle
// janitor out during the pass.
func (c *Cache) makeRoomLocked(incoming int64) {
	limit := int64(float64(c.cfg.MaxMemoryBytes) * c.cfg.HeadroomFraction)
	for len(c.entries) > 0 && (c.memory+incoming > limit || len(c.entries) >= c.cfg.MaxEntries) {
		victim := c.evictionOrderLocked()[0]
		log.Printf("[artifact] evicting %s (%d bytes)", victim.id, victim.size)
		c.removeLocked(victim.id)
	}
}

// evictionOrderLocked sorts candidates so high priority comes last and,
// within equal priority, the least recently accessed comes first.
func (c *Cache) evictionOrderLocked() []*entry {
	out := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].priority != out[j].priority {
			return out[i].priority < out[j].priority
		}
		return out[i].lastAccess.Before(out[j].lastAccess)
	})
	return out
}

func (c *Cache) janitor() {
	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.collectIdle()
		}
	}
}

// collectIdle releases non-high-priority entries untouched for MaxIdleAge,
// independent of budget pressure.
func (c *Cache) collectIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.cfg.MaxIdleAge)
	for id, e := range c.entries {
		if e.priority == PriorityHigh {
			continue
		}
		if e.lastAccess.Before(cutoff) {
			log.Printf("[artifact] releasing idle entry %s", id)
			c.removeLocked(id)
		}
	}
}

// Len reports the resident entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// MemoryBytes reports the accounted memory footprint of resident entries.
func (c *Cache) MemoryBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memory
}

// Contains reports residency without refreshing the access time.
func (c *Cache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}
