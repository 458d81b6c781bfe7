package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/phrazzld/stargazer/internal/config"
	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, LogLevel: "debug"},
		Store: config.StoreConfig{
			Backend:    backend,
			Key:        "test-progress",
			MaxRetries: 3,
		},
		Engine: config.EngineConfig{
			CorrectDelta:             0.2,
			WrongDelta:               -0.1,
			MasteryThreshold:         0.6,
			ReviewIntervalWrongDays:  1,
			ReviewIntervalLowDays:    3,
			ReviewIntervalHighDays:   7,
			RecommendationLimit:      3,
			RecommendationCacheHours: 6,
		},
	}
}

func TestNewEngine_UsesConfiguredDeltas(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(testConfig(BackendMemory).Engine)
	require.NoError(t, err)

	now := time.Date(2026, 4, 12, 19, 30, 0, 0, time.UTC)
	result := engine.ApplyAnswer(nil, domain.AnswerEvent{
		QuestionID: "q1",
		Tags:       []domain.Tag{domain.TagPlanets},
		Difficulty: domain.DifficultyMedium,
		IsCorrect:  true,
	}, now)

	require.Len(t, result.Deltas, 1)
	assert.InDelta(t, 0.2, result.Deltas[0].Delta, 1e-9)
}

func TestNewEngine_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	cfg := testConfig(BackendMemory).Engine
	cfg.WrongDelta = 0.3
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestNew_MemoryBackend(t *testing.T) {
	t.Parallel()
	log, _ := logger.GetTestLogger(t)

	app, err := New(context.Background(), testConfig(BackendMemory), log, Options{})
	require.NoError(t, err)
	defer app.Close()

	assert.NotEmpty(t, app.Catalog.Lessons)
	changed, err := app.Service.StartLesson(context.Background(), "meet-the-planets")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestNew_BadgerBackendPersistsAcrossRestarts(t *testing.T) {
	t.Parallel()
	log, _ := logger.GetTestLogger(t)
	ctx := context.Background()

	cfg := testConfig(BackendBadger)
	cfg.Store.BadgerDir = filepath.Join(t.TempDir(), "progress")

	first, err := New(ctx, cfg, log, Options{})
	require.NoError(t, err)
	_, err = first.Service.CompleteLesson(ctx, "gravity-basics")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg, log, Options{})
	require.NoError(t, err)
	defer second.Close()

	changed, err := second.Service.CompleteLesson(ctx, "gravity-basics")
	require.NoError(t, err)
	assert.False(t, changed, "completion should have survived the restart")
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := New(ctx, nil, nil, Options{})
	assert.Error(t, err)

	cfg := testConfig("etcd")
	_, err = New(ctx, cfg, nil, Options{})
	assert.ErrorContains(t, err, "unknown store backend")

	cfg = testConfig(BackendMemory)
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(ctx, cfg, nil, Options{})
	assert.ErrorContains(t, err, "failed to load catalog")
}
