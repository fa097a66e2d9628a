// Package instance defines the unit of work hosted by this process: a
// processor implementation wrapped with a stable UUID identity, metadata,
// and invocable named operations.
//
// An Instance is created by its owner (pkg/host) and looked up by
// out-of-band dispatch code (pkg/dispatcher) through the weak-referencing
// registry (pkg/registry). The Instance itself carries no lifecycle logic:
// it lives exactly as long as its owner holds a strong reference to it.
package instance
