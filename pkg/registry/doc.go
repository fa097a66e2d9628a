// Package registry provides the process-wide weak-referencing instance
// registry.
//
// The registry maps stable instance identifiers to non-owning references,
// so that out-of-band code (the HTTP dispatcher, diagnostics) can look up
// and invoke a live instance by id without ever extending its lifetime.
// Ownership of each instance belongs exclusively to its creator; the
// registry is purely an auxiliary lookup index.
//
// # Key invariant
//
// The registry must never be the reason an instance stays alive. Entries
// hold weak pointers: once the owner releases its last strong reference
// and the instance is reclaimed, Resolve returns NOT_FOUND — even while
// the map still technically holds an entry for that id. Stale entries are
// pruned automatically, either by the reclamation cleanup, in place during
// Resolve, or by an explicit Prune sweep.
//
// # Identifier reuse
//
// Identifiers are UUIDs and are never reassigned by the host. The registry
// nevertheless tolerates reuse: re-registering an id overwrites the
// previous entry, and a generation counter guarantees that the deferred
// cleanup of a reclaimed predecessor can never remove its successor.
//
// # Thread safety
//
// The registry uses sync.RWMutex for safe concurrent access. Resolve is
// atomic with respect to reclamation: it returns either a fully usable
// strong reference or a clean NOT_FOUND, never a half-valid value.
package registry
