package aircon

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// StateCache serves the most recent trustworthy device snapshot while
// minimising live fetches.
//
// A snapshot is fresh while now - fetchedAt < TTL. Fresh reads are served
// synchronously with no I/O. Stale or missing snapshots trigger a live fetch
// through the Transport; concurrent readers attach to the one in-flight
// fetch rather than issuing duplicates.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - The cached entry is mutated only by the cache itself.
type StateCache struct {
	transport Transport
	index     int
	ttl       time.Duration

	mu        sync.Mutex
	state     *DeviceState
	fetchedAt time.Time
	gen       uint64 // bumped by Invalidate so a racing fetch cannot restore pre-write state

	group singleflight.Group

	// now is replaceable in tests.
	now func() time.Time

	logger   Logger
	loggerMu sync.RWMutex
}

// StateCacheConfig holds construction parameters for a StateCache.
type StateCacheConfig struct {
	// Index selects the target appliance within the fetched device list.
	Index int

	// TTL is how long a snapshot stays fresh. Zero forces a live fetch on
	// every Get.
	TTL time.Duration
}

// NewStateCache creates a cache over the given transport.
//
// The entry starts empty; the first Get always fetches.
func NewStateCache(transport Transport, cfg StateCacheConfig) *StateCache {
	return &StateCache{
		transport: transport,
		index:     cfg.Index,
		ttl:       cfg.TTL,
		now:       time.Now,
	}
}

// SetLogger sets a logger for degraded-read warnings.
// If not set, stale fallbacks are silent.
func (c *StateCache) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// Get returns the current device snapshot.
//
// A fresh cached snapshot is returned without I/O. Otherwise one live fetch
// runs (shared by all concurrent callers) and, on success, replaces the
// cached entry wholesale. If the fetch fails and an older snapshot exists,
// that snapshot is returned instead of an error; its timestamp is not
// advanced, so the next Get retries the fetch immediately. Only when no
// snapshot has ever been fetched does a failure surface, as
// ErrStateUnavailable.
//
// Parameters:
//   - ctx: Bounds the fetch; expiry surfaces as the transport's ErrTimeout
//
// Returns:
//   - DeviceState: Fresh or degraded-stale snapshot
//   - error: ErrStateUnavailable when no snapshot exists and the fetch failed
func (c *StateCache) Get(ctx context.Context) (DeviceState, error) {
	c.mu.Lock()
	if c.state != nil && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		state := *c.state
		c.mu.Unlock()
		return state, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(c.flightKey(), func() (any, error) {
		return c.refresh(ctx)
	})
	if err != nil {
		return DeviceState{}, err
	}
	state, ok := v.(DeviceState)
	if !ok {
		return DeviceState{}, fmt.Errorf("%w: unexpected fetch result type %T", ErrParse, v)
	}
	return state, nil
}

// Invalidate unconditionally clears the cached entry so the next Get forces
// a live fetch regardless of TTL. Idempotent; clearing an empty cache is a
// no-op. A fetch already in flight when Invalidate is called will not write
// its (pre-invalidation) result back into the cache.
func (c *StateCache) Invalidate() {
	c.mu.Lock()
	c.state = nil
	c.fetchedAt = time.Time{}
	c.gen++
	c.mu.Unlock()

	// Detach late readers from the now-obsolete flight.
	c.group.Forget(c.flightKey())
}

// LastRefreshed returns the timestamp of the cached snapshot and whether one
// exists. Used by the bridge health reporter.
func (c *StateCache) LastRefreshed() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt, c.state != nil
}

// flightKey is the single-flight key: one in-flight fetch per device index.
func (c *StateCache) flightKey() string {
	return strconv.Itoa(c.index)
}

// refresh performs one live fetch and stores the result.
func (c *StateCache) refresh(ctx context.Context) (DeviceState, error) {
	c.mu.Lock()
	// A caller that went stale just before another flight completed lands
	// here with a fresh entry already in place. Serve it rather than
	// fetching again.
	if c.state != nil && c.ttl > 0 && c.now().Sub(c.fetchedAt) < c.ttl {
		state := *c.state
		c.mu.Unlock()
		return state, nil
	}
	gen := c.gen
	c.mu.Unlock()

	states, err := c.transport.FetchAll(ctx)
	if err != nil {
		return c.fallback(err)
	}
	if c.index >= len(states) {
		// A response without our device is a fetch failure, not an empty state.
		return c.fallback(fmt.Errorf("%w: device index %d out of range (%d devices)",
			ErrParse, c.index, len(states)))
	}

	state := states[c.index]

	c.mu.Lock()
	if c.gen == gen {
		c.state = &state
		c.fetchedAt = c.now()
	}
	c.mu.Unlock()

	return state, nil
}

// fallback resolves a failed fetch: return the stale snapshot when one
// exists (without touching its timestamp), otherwise surface the failure.
func (c *StateCache) fallback(cause error) (DeviceState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != nil {
		c.warn("serving stale device state after fetch failure",
			"age", c.now().Sub(c.fetchedAt).String(),
			"error", cause,
		)
		return *c.state, nil
	}

	return DeviceState{}, fmt.Errorf("%w: %w", ErrStateUnavailable, cause)
}

func (c *StateCache) warn(msg string, args ...any) {
	c.loggerMu.RLock()
	logger := c.logger
	c.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, args...)
	}
}
