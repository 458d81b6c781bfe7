package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/phrazzld/stargazer/internal/store"
)

type entry struct {
	data     []byte
	revision int64
}

// ProgressStore keeps snapshots in process memory. It is meant for tests and
// throwaway sessions; nothing survives a restart.
type ProgressStore struct {
	mu      sync.Mutex
	entries map[string]entry
	logger  *slog.Logger
}

// NewProgressStore creates an empty in-memory store.
// If logger is nil, a default logger will be used.
func NewProgressStore(logger *slog.Logger) *ProgressStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		entries: make(map[string]entry),
		logger:  logger.With(slog.String("component", "memory_progress_store")),
	}
}

// Ensure ProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*ProgressStore)(nil)

// Get implements store.ProgressStore.Get
func (s *ProgressStore) Get(ctx context.Context, key string) (store.Record, error) {
	if err := ctx.Err(); err != nil {
		return store.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return store.Record{}, store.ErrProgressNotFound
	}
	return store.Record{Data: cloneBytes(e.data), Revision: e.revision}, nil
}

// Put implements store.ProgressStore.Put
func (s *ProgressStore) Put(ctx context.Context, key string, data []byte, expectedRevision int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.entries[key].revision
	if current != expectedRevision {
		log.Debug("progress write lost revision race",
			slog.String("key", key),
			slog.Int64("expected_revision", expectedRevision),
			slog.Int64("current_revision", current))
		return 0, store.ErrConflict
	}

	next := current + 1
	s.entries[key] = entry{data: cloneBytes(data), revision: next}
	return next, nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
