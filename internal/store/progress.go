package store

import "context"

// Record is a stored progress snapshot and the revision it was written at.
type Record struct {
	Data     []byte
	Revision int64
}

// ProgressStore defines the interface for progress snapshot persistence.
// A store holds opaque snapshot bytes under a key; it knows nothing about
// their schema.
type ProgressStore interface {
	// Get retrieves the snapshot stored under key.
	// Returns ErrProgressNotFound if nothing has been written yet.
	Get(ctx context.Context, key string) (Record, error)

	// Put replaces the snapshot under key if the stored revision still equals
	// expectedRevision, where 0 means the key must not exist yet. It returns
	// the new revision.
	// Returns ErrConflict if another write happened in between.
	Put(ctx context.Context, key string, data []byte, expectedRevision int64) (int64, error)
}
