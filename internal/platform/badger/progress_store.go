package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/phrazzld/stargazer/internal/store"
)

const (
	keyPrefix    = "progress/"
	revisionSize = 8
)

// ProgressStore implements store.ProgressStore on BadgerDB. Each value is the
// big-endian revision followed by the snapshot bytes.
type ProgressStore struct {
	db     *DB
	logger *slog.Logger
}

// NewProgressStore creates a progress store over an open database.
// If logger is nil, a default logger will be used.
func NewProgressStore(db *DB, logger *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "badger_progress_store")),
	}
}

// Ensure ProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*ProgressStore)(nil)

// Get implements store.ProgressStore.Get
func (s *ProgressStore) Get(ctx context.Context, key string) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rec store.Record
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = readRecord(txn, key)
		return err
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return store.Record{}, err
		}
		log.Error("failed to read progress",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return store.Record{}, store.NewStoreError("progress", "get", "badger read failed", err)
	}
	return rec, nil
}

// Put implements store.ProgressStore.Put
func (s *ProgressStore) Put(ctx context.Context, key string, data []byte, expectedRevision int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var next int64
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readRecord(txn, key)
		switch {
		case store.IsNotFoundError(err):
			current = store.Record{}
		case err != nil:
			return err
		}
		if current.Revision != expectedRevision {
			return store.ErrConflict
		}

		next = current.Revision + 1
		return txn.Set(storageKey(key), encodeValue(next, data))
	})

	switch {
	case err == nil:
		log.Debug("progress written",
			slog.String("key", key),
			slog.Int64("revision", next))
		return next, nil
	case errors.Is(err, store.ErrConflict), errors.Is(err, badger.ErrConflict):
		log.Debug("progress write lost revision race",
			slog.String("key", key),
			slog.Int64("expected_revision", expectedRevision))
		return 0, fmt.Errorf("%w: key %s", store.ErrConflict, key)
	default:
		log.Error("failed to write progress",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("progress", "put", "badger write failed", err)
	}
}

func storageKey(key string) []byte {
	return []byte(keyPrefix + key)
}

func readRecord(txn *badger.Txn, key string) (store.Record, error) {
	item, err := txn.Get(storageKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.Record{}, store.ErrProgressNotFound
	}
	if err != nil {
		return store.Record{}, err
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return store.Record{}, err
	}
	return decodeValue(value)
}

func encodeValue(revision int64, data []byte) []byte {
	out := make([]byte, revisionSize+len(data))
	binary.BigEndian.PutUint64(out, uint64(revision))
	copy(out[revisionSize:], data)
	return out
}

func decodeValue(value []byte) (store.Record, error) {
	if len(value) < revisionSize {
		return store.Record{}, fmt.Errorf("%w: stored progress value is %d bytes", store.ErrInvalidEntity, len(value))
	}
	return store.Record{
		Revision: int64(binary.BigEndian.Uint64(value[:revisionSize])),
		Data:     value[revisionSize:],
	}, nil
}
