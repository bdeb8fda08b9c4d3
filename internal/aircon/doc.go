// Package aircon implements the device-facing core of the Gray Logic Aircon Bridge.
//
// The package has three parts:
//
//   - StateCache: the single source of truth for the last known device
//     snapshot. Reads are served from cache while the snapshot is within its
//     TTL; stale reads trigger a live fetch through the injected Transport.
//     Concurrent reads share one in-flight fetch (single-flight). When a
//     fetch fails but an older snapshot exists, the stale snapshot is
//     returned instead of an error, without advancing its timestamp, so the
//     next read retries immediately.
//
//   - Dispatcher: funnels state-mutating commands to the device, one at a
//     time and in issue order. Write failures always propagate to the
//     caller. A successful write invalidates the cache and, by default,
//     eagerly re-warms it so the next read reflects the mutation without I/O.
//
//   - Property table: pure, table-driven projections between raw device
//     snapshots and the externally exposed properties (power, temperatures,
//     mode, fan speed, swing, auto-clean). Adding a property means adding a
//     table entry; the cache and dispatcher are untouched.
//
// # Failure policy
//
// Reads and writes are deliberately asymmetric. Consumers poll properties
// frequently, so a transient fetch failure degrades to stale data rather
// than flapping every exposed value. Commands are never silently absorbed:
// a failed write is the caller's to handle, because reporting success for a
// command the device never executed desynchronises the user's view of the
// appliance.
//
// # Concurrency
//
// One StateCache and one Dispatcher serve a single appliance. All methods
// are safe for concurrent use. At most one fetch per device index is in
// flight at any time.
package aircon
