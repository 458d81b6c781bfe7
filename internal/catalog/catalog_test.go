package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/misconception"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversTaxonomy(t *testing.T) {
	t.Parallel()
	cat, err := Default()
	require.NoError(t, err)

	for _, tag := range domain.AllTags() {
		var lesson, quiz bool
		for _, l := range cat.Lessons {
			lesson = lesson || l.Covers(tag)
		}
		for _, q := range cat.Quizzes {
			quiz = quiz || q.Covers(tag)
		}
		assert.True(t, lesson, "no lesson covers %s", tag)
		assert.True(t, quiz, "no quiz covers %s", tag)
	}
}

func TestDefault_HasRemediationLessons(t *testing.T) {
	t.Parallel()
	cat, err := Default()
	require.NoError(t, err)

	for _, rule := range misconception.DefaultRules() {
		if rule.RecommendedLessonSlug == "" {
			continue
		}
		_, ok := cat.Lesson(rule.RecommendedLessonSlug)
		assert.True(t, ok, "rule %s points at missing lesson %s", rule.ID, rule.RecommendedLessonSlug)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"malformed yaml", "lessons: [\n"},
		{"unknown field", "lessons:\n  - slug: a\n    title: A\n    tags: [planets]\n    level: 3\n"},
		{"missing slug", "lessons:\n  - title: A\n    tags: [planets]\n"},
		{"duplicate slug", "lessons:\n  - {slug: a, tags: [planets]}\n  - {slug: a, tags: [moons]}\n"},
		{"unknown tag", "lessons:\n  - {slug: a, tags: [astrology]}\n"},
		{"lesson without tags", "lessons:\n  - {slug: a}\n"},
		{"missing quiz id", "quizzes:\n  - {title: Q, tags: [planets]}\n"},
		{"duplicate quiz id", "quizzes:\n  - {id: q, tags: [planets]}\n  - {id: q, tags: [sun]}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses built-in", func(t *testing.T) {
		t.Parallel()
		cat, err := Load("")
		require.NoError(t, err)
		assert.NotEmpty(t, cat.Lessons)
	})

	t.Run("override file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		content := "lessons:\n  - slug: intro\n    title: Intro\n    tags: [planets]\nquizzes:\n  - id: intro-quiz\n    title: Intro Quiz\n    tags: [planets]\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cat, err := Load(path)
		require.NoError(t, err)
		require.Len(t, cat.Lessons, 1)
		assert.Equal(t, "intro", cat.Lessons[0].Slug)
		assert.Equal(t, []domain.Tag{domain.TagPlanets}, cat.Quizzes[0].Tags)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("oversized file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "big.yaml")
		require.NoError(t, os.WriteFile(path, make([]byte, MaxFileSize+1), 0o600))
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrInvalidCatalog)
	})
}
