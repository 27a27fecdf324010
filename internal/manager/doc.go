// Package manager owns model residency for a single local process. It is
// structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters, Close.
//   - config.go: Config and package defaults; NewWithConfig applies defaults.
//   - types.go: residency phases, per-model records, state snapshots.
//   - handle.go: Handle lifetime and borrow tracking.
//   - errors.go: error taxonomy and Is* helpers.
//   - load.go: RequestLoad, load coalescing, FIFO load queue, admission.
//   - unload.go: Unload drain/invalidate/release.
//   - status.go: Progress/State/Status reporting.
//   - events.go: lifecycle event publishing.
//   - metrics.go: prometheus collectors.
//
// The resident-state table is the only shared mutable state; every
// read/write of a model's residency happens under m.mu, while weight
// loading and token generation always run outside the critical section.
// External packages should use public methods only.
package manager
