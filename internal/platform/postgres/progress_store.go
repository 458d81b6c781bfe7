package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/phrazzld/stargazer/internal/store"
)

const (
	selectProgressSQL = `SELECT data, revision FROM progress_snapshots WHERE key = $1`
	lockRevisionSQL   = `SELECT revision FROM progress_snapshots WHERE key = $1 FOR UPDATE`
	insertProgressSQL = `INSERT INTO progress_snapshots (key, data, revision) VALUES ($1, $2::jsonb, 1)`
	updateProgressSQL = `UPDATE progress_snapshots SET data = $2::jsonb, revision = revision + 1, updated_at = NOW() WHERE key = $1 AND revision = $3`
)

// PostgresProgressStore implements store.ProgressStore on a
// progress_snapshots table. Each Put runs in its own transaction and locks
// the row before comparing revisions.
type PostgresProgressStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresProgressStore creates a progress store over an open pool.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db *sql.DB, logger *slog.Logger) *PostgresProgressStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "postgres_progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Get implements store.ProgressStore.Get
func (s *PostgresProgressStore) Get(ctx context.Context, key string) (store.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var rec store.Record
	err := s.db.QueryRowContext(ctx, selectProgressSQL, key).Scan(&rec.Data, &rec.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, store.ErrProgressNotFound
	}
	if err != nil {
		log.Error("failed to read progress",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return store.Record{}, store.NewStoreError("progress", "get", "query failed", MapError(err))
	}
	return rec, nil
}

// Put implements store.ProgressStore.Put
func (s *PostgresProgressStore) Put(
	ctx context.Context,
	key string,
	data []byte,
	expectedRevision int64,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	conflict := fmt.Errorf("%w: key %s", store.ErrConflict, key)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var current int64
		err := tx.QueryRowContext(ctx, lockRevisionSQL, key).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return MapError(err)
		}
		if current != expectedRevision {
			return conflict
		}

		if expectedRevision == 0 {
			if _, err := tx.ExecContext(ctx, insertProgressSQL, key, data); err != nil {
				return MapError(err)
			}
			return nil
		}

		result, err := tx.ExecContext(ctx, updateProgressSQL, key, data, expectedRevision)
		if err != nil {
			return MapError(err)
		}
		return CheckRowsAffected(result, conflict)
	})

	switch {
	case err == nil:
		next := expectedRevision + 1
		log.Debug("progress written",
			slog.String("key", key),
			slog.Int64("revision", next))
		return next, nil
	case store.IsConflictError(err):
		log.Debug("progress write lost revision race",
			slog.String("key", key),
			slog.Int64("expected_revision", expectedRevision))
		return 0, conflict
	default:
		log.Error("failed to write progress",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("progress", "put", "write failed", err)
	}
}
