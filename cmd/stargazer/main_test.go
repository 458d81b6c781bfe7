package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig points the CLI at a fresh badger directory so successive
// commands share state.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stargazer.yaml")
	content := fmt.Sprintf(`server:
  log_level: error
store:
  backend: badger
  badger_dir: %q
`, filepath.Join(dir, "progress"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestAnswerThenStatus(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "answer",
		"--question", "q-planets-1", "--quiz", "solar-system-quiz",
		"--tags", "planets", "--difficulty", "2", "--correct")
	require.NoError(t, err)
	assert.Contains(t, out, "planets")
	assert.Contains(t, out, "0.00 -> 0.15")

	out, err = execute(t, "--config", cfg, "--json", "status")
	require.NoError(t, err)

	var summary struct {
		Attempts int              `json:"attempts"`
		Unseen   []domain.Tag     `json:"unseen"`
		TagStats []domain.TagStat `json:"tagStats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 1, summary.Attempts)
	assert.Len(t, summary.Unseen, len(domain.AllTags())-1)
}

func TestMisconceptionFlow(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t)

	var out string
	for i := 0; i < 2; i++ {
		var err error
		out, err = execute(t, "--config", cfg, "answer",
			"--question", "q-seasons-2", "--tags", "seasons", "--difficulty", "1",
			"--selected", "distance-from-sun", "--expected", "axial-tilt")
		require.NoError(t, err)
	}
	assert.Contains(t, out, "misconception detected: seasons-distance")

	out, err := execute(t, "--config", cfg, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "seasons-distance")

	out, err = execute(t, "--config", cfg, "resolve", "seasons-distance")
	require.NoError(t, err)
	assert.Equal(t, "resolved seasons-distance\n", out)

	out, err = execute(t, "--config", cfg, "resolve", "seasons-distance")
	require.NoError(t, err)
	assert.Equal(t, "seasons-distance was not active\n", out)

	out, err = execute(t, "--config", cfg, "resolve", "flat-earth")
	require.NoError(t, err)
	assert.Equal(t, "flat-earth was not active\n", out)
}

func TestRecommendQueueWeakest(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t)

	_, err := execute(t, "--config", cfg, "answer", "--question", "q-bh-1", "--tags", "black_holes")
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "recommend")
	require.NoError(t, err)
	assert.Contains(t, out, "1. [")

	out, err = execute(t, "--config", cfg, "weakest")
	require.NoError(t, err)
	assert.Contains(t, out, "black_holes")

	out, err = execute(t, "--config", cfg, "queue")
	require.NoError(t, err)
	assert.Equal(t, "No reviews due.\n", out)
}

func TestLessonCommands(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t)

	out, err := execute(t, "--config", cfg, "lesson", "start", "gravity-basics")
	require.NoError(t, err)
	assert.Equal(t, "started gravity-basics\n", out)

	out, err = execute(t, "--config", cfg, "lesson", "start", "gravity-basics")
	require.NoError(t, err)
	assert.Equal(t, "gravity-basics unchanged\n", out)

	_, err = execute(t, "--config", cfg, "lesson", "complete", "astrology-101")
	assert.ErrorIs(t, err, service.ErrUnknownLesson)
}

func TestAnswerRequiresFlags(t *testing.T) {
	t.Parallel()
	cfg := writeConfig(t)

	_, err := execute(t, "--config", cfg, "answer", "--tags", "planets")
	assert.ErrorContains(t, err, "question")

	_, err = execute(t, "--config", cfg, "answer", "--question", "q1", "--tags", "planets", "--difficulty", "7")
	assert.ErrorIs(t, err, service.ErrInvalidAnswer)
}
