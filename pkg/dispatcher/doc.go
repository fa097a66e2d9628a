// Package dispatcher implements resolve-then-invoke for out-of-band
// callers that hold an instance identifier rather than a reference.
//
// The dispatcher never stores the instances it resolves; every dispatch
// re-resolves through the weak-referencing registry, so an instance whose
// owner released it fails the one request with NOT_FOUND instead of being
// kept alive or crashing the process.
package dispatcher
