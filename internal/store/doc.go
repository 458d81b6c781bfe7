// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// Progress snapshots are written with optimistic concurrency: every Put
// names the revision it read, and a mismatch is reported as ErrConflict.
package store
