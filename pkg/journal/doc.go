// Package journal persists instance registry lifecycle events to SQLite.
//
// The journal is bookkeeping for leak triage, not a profiler: it records
// when instances were registered, when their owners released them, and
// which identifiers were still being dispatched to after reclamation.
// It never holds references to instances.
package journal
