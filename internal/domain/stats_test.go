package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 4, 12, 19, 30, 0, 0, time.UTC)

func TestTagStatValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		stat TagStat
		want error
	}{
		{"zero state", NewTagStat(TagPlanets), nil},
		{"consistent", TagStat{Tag: TagMoons, Mastery: 0.4, Seen: 3, Correct: 2, Wrong: 1}, nil},
		{"mastery above one", TagStat{Tag: TagMoons, Mastery: 1.01}, ErrMasteryOutOfRange},
		{"negative mastery", TagStat{Tag: TagMoons, Mastery: -0.1}, ErrMasteryOutOfRange},
		{"negative counter", TagStat{Tag: TagMoons, Seen: -1, Wrong: -1}, ErrNegativeCounter},
		{"seen mismatch", TagStat{Tag: TagMoons, Seen: 2, Correct: 1}, ErrSeenMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tc.stat.Validate(), tc.want)
		})
	}
}

func TestTagStatsCloneIsDeep(t *testing.T) {
	t.Parallel()

	seen := testNow
	stats := TagStats{TagSun: {Tag: TagSun, Seen: 1, Correct: 1, LastSeenAt: &seen}}
	clone := stats.Clone()

	*clone[TagSun].LastSeenAt = testNow.Add(time.Hour)
	assert.Equal(t, testNow, *stats[TagSun].LastSeenAt)
	assert.Nil(t, TagStats(nil).Clone())
}

func TestAnswerEventValidate(t *testing.T) {
	t.Parallel()

	valid := AnswerEvent{QuestionID: "q1", Tags: []Tag{TagGravity}, Difficulty: DifficultyHard}
	require.NoError(t, valid.Validate())

	noID := valid
	noID.QuestionID = ""
	assert.ErrorIs(t, noID.Validate(), ErrEmptyQuestionID)

	noTags := valid
	noTags.Tags = nil
	assert.ErrorIs(t, noTags.Validate(), ErrEmptyTags)

	badDifficulty := valid
	badDifficulty.Difficulty = 4
	assert.ErrorIs(t, badDifficulty.Validate(), ErrInvalidDifficulty)
}

func TestNewQuestionAttemptCopiesTags(t *testing.T) {
	t.Parallel()

	event := AnswerEvent{QuestionID: "q1", Tags: []Tag{TagOrbits, TagGravity}, IsCorrect: true}
	attempt := NewQuestionAttempt(event, testNow)
	event.Tags[0] = TagSun

	assert.Equal(t, []Tag{TagOrbits, TagGravity}, attempt.Tags)
	assert.Equal(t, testNow, attempt.AttemptedAt)
	assert.True(t, attempt.HasTag(TagGravity))
	assert.False(t, attempt.HasTag(TagSun))
}

func TestRecommendationCache(t *testing.T) {
	t.Parallel()

	state := RecommendationState{
		Items:       []Recommendation{{ID: "r1", Type: RecommendationLesson, TargetSlug: "gravity-basics", Priority: 4}},
		GeneratedAt: testNow,
		ValidUntil:  testNow.Add(6 * time.Hour),
	}

	var zero RecommendationCache
	assert.Equal(t, CacheInvalid, zero.Status())
	_, ok := zero.Lookup(testNow)
	assert.False(t, ok)

	cache := ValidRecommendations(state)
	assert.Equal(t, CacheValid, cache.Status())

	got, ok := cache.Lookup(testNow.Add(time.Hour))
	require.True(t, ok)
	assert.Equal(t, state, got)

	_, ok = cache.Lookup(state.ValidUntil)
	assert.False(t, ok, "state expires at ValidUntil")

	_, ok = cache.State()
	assert.True(t, ok)
}

func TestRecommendationCacheJSON(t *testing.T) {
	t.Parallel()

	state := RecommendationState{
		Items:       []Recommendation{},
		GeneratedAt: testNow,
		ValidUntil:  testNow.Add(time.Hour),
	}

	data, err := json.Marshal(ValidRecommendations(state))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"valid","state":{"items":[],"generatedAt":"2026-04-12T19:30:00Z","validUntil":"2026-04-12T20:30:00Z"}}`, string(data))

	tests := []struct {
		name   string
		input  string
		status CacheStatus
	}{
		{"tagged valid", string(data), CacheValid},
		{"tagged invalid", `{"status":"invalid"}`, CacheInvalid},
		{"null", `null`, CacheInvalid},
		{"legacy bare state", `{"items":[],"generatedAt":"2026-04-12T19:30:00Z","validUntil":"2026-04-12T20:30:00Z"}`, CacheValid},
		{"unrecognized object", `{}`, CacheInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var c RecommendationCache
			require.NoError(t, json.Unmarshal([]byte(tc.input), &c))
			assert.Equal(t, tc.status, c.Status())
		})
	}

	var c RecommendationCache
	assert.ErrorIs(t, json.Unmarshal([]byte(`[1,2]`), &c), ErrInvalidFormat)
}

func TestProgressCloneIsDeep(t *testing.T) {
	t.Parallel()

	resolvedAt := testNow
	p := &Progress{
		SchemaVersion:    CurrentSchemaVersion,
		StartedLessons:   []string{"gravity-basics"},
		QuizScores:       map[string]QuizScore{"physics-quiz": {Score: 4, Total: 5}},
		Bookmarks:        []string{"how-orbits-work"},
		Badges:           []Badge{{ID: "first-light", EarnedAt: testNow}},
		TagStats:         TagStats{TagGravity: {Tag: TagGravity, Seen: 1, Wrong: 1}},
		QuestionHistory:  []QuestionAttempt{{QuestionID: "q1", Tags: []Tag{TagGravity}}},
		Misconceptions:   []MisconceptionFlag{{RuleID: "r", Resolved: true, ResolvedAt: &resolvedAt}},
		CompletedLessons: []string{},
	}

	clone := p.Clone()
	require.Equal(t, p, clone)

	clone.StartedLessons[0] = "x"
	clone.QuizScores["physics-quiz"] = QuizScore{}
	clone.Bookmarks[0] = "x"
	clone.Badges[0].ID = "x"
	clone.QuestionHistory[0].Tags[0] = TagSun
	*clone.Misconceptions[0].ResolvedAt = testNow.Add(time.Hour)

	assert.Equal(t, "gravity-basics", p.StartedLessons[0])
	assert.Equal(t, 4, p.QuizScores["physics-quiz"].Score)
	assert.Equal(t, "how-orbits-work", p.Bookmarks[0])
	assert.Equal(t, "first-light", p.Badges[0].ID)
	assert.Equal(t, TagGravity, p.QuestionHistory[0].Tags[0])
	assert.Equal(t, testNow, *p.Misconceptions[0].ResolvedAt)

	var nilProgress *Progress
	assert.Nil(t, nilProgress.Clone())
}

func TestProgressCatalogJoins(t *testing.T) {
	t.Parallel()

	cat := Catalog{
		Lessons: []Lesson{
			{Slug: "gravity-basics", Tags: []Tag{TagGravity}},
			{Slug: "how-orbits-work", Tags: []Tag{TagOrbits, TagGravity}},
		},
		Quizzes: []Quiz{{ID: "physics-quiz", Tags: []Tag{TagGravity}}},
	}
	p := &Progress{
		StartedLessons:   []string{"gravity-basics", "how-orbits-work"},
		CompletedLessons: []string{"gravity-basics"},
		QuizScores:       map[string]QuizScore{"physics-quiz": {Score: 5, Total: 5}},
	}

	lessons := p.LessonEntries(cat)
	require.Len(t, lessons, 2)
	assert.True(t, lessons[0].Started && lessons[0].Completed)
	assert.True(t, lessons[1].Started && !lessons[1].Completed)
	assert.True(t, lessons[1].Covers(TagOrbits))

	quizzes := p.QuizEntries(cat)
	require.Len(t, quizzes, 1)
	assert.True(t, quizzes[0].Completed)

	_, ok := cat.Lesson("missing")
	assert.False(t, ok)
}
