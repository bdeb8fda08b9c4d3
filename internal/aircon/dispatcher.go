package aircon

import (
	"context"
	"fmt"
	"sync"
)

// Dispatcher performs state-mutating requests against the device and leaves
// the cache in a state that reflects the mutation on the next read.
//
// Commands are serialised: each Send reaches the transport alone and in the
// order issued, because device commands are not guaranteed idempotent or
// commutative. Two mode changes issued back-to-back must land in issuance
// order.
//
// Thread Safety:
//   - Send is safe for concurrent use; concurrent callers are ordered by
//     lock acquisition.
type Dispatcher struct {
	transport Transport
	cache     *StateCache

	// eagerRefresh re-warms the cache after a successful write. A failed
	// re-warm is logged, never surfaced: the write already succeeded and
	// is the operation's outcome of record.
	eagerRefresh bool

	// mu serialises writes so they reach the transport in issue order.
	mu sync.Mutex

	logger   Logger
	loggerMu sync.RWMutex
}

// DispatcherConfig holds construction parameters for a Dispatcher.
type DispatcherConfig struct {
	// EagerRefresh triggers a cache re-warm immediately after each
	// successful write.
	EagerRefresh bool
}

// NewDispatcher creates a dispatcher writing through the given transport
// and invalidating the given cache.
func NewDispatcher(transport Transport, cache *StateCache, cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		transport:    transport,
		cache:        cache,
		eagerRefresh: cfg.EagerRefresh,
	}
}

// SetLogger sets a logger for eager-refresh warnings.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.loggerMu.Lock()
	d.logger = logger
	d.loggerMu.Unlock()
}

// Send issues exactly one write request to the device-relative path with the
// given partial payload.
//
// On transport failure the error propagates to the caller, wrapped in
// ErrCommandFailed — writes are never silently swallowed. On success the
// cached state is invalidated so the next read is live; with eager refresh
// enabled the cache is re-warmed before Send returns.
//
// Parameters:
//   - ctx: Bounds the write (and the optional re-warm fetch)
//   - path: Device-relative property path, e.g. "/temperatures/0"
//   - payload: Partial update, e.g. map[string]any{"desired": 24}
//
// Returns:
//   - error: nil on success; ErrCommandFailed wrapping the transport error otherwise
func (d *Dispatcher) Send(ctx context.Context, path string, payload map[string]any) error {
	d.mu.Lock()
	err := d.transport.Write(ctx, path, payload)
	if err != nil {
		d.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	d.cache.Invalidate()
	d.mu.Unlock()

	if d.eagerRefresh {
		if _, refreshErr := d.cache.Get(ctx); refreshErr != nil {
			d.warn("post-write cache refresh failed",
				"path", path,
				"error", refreshErr,
			)
		}
	}

	return nil
}

func (d *Dispatcher) warn(msg string, args ...any) {
	d.loggerMu.RLock()
	logger := d.logger
	d.loggerMu.RUnlock()

	if logger != nil {
		logger.Warn(msg, args...)
	}
}
