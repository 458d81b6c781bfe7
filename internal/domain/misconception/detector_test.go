package misconception

import (
	"testing"
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_AreValid(t *testing.T) {
	t.Parallel()
	d, err := NewDetector(DefaultRules())
	require.NoError(t, err)
	assert.Len(t, d.Rules(), len(DefaultRules()))

	for _, r := range d.Rules() {
		for _, tag := range r.RelatedTags {
			assert.True(t, tag.IsKnown(), "rule %s references unknown tag %s", r.ID, tag)
		}
	}
}

func TestNewDetector_RejectsBadRules(t *testing.T) {
	t.Parallel()

	rule := Rule{ID: "dup", Pattern: ConsecutiveWrong(domain.TagSun, 2), MinTriggerCount: 1}
	_, err := NewDetector([]Rule{rule, rule})
	assert.ErrorIs(t, err, ErrDuplicateRule)

	_, err = NewDetector([]Rule{{ID: "zero", Pattern: rule.Pattern}})
	assert.ErrorIs(t, err, ErrInvalidRule)

	_, err = NewDetector([]Rule{{ID: "bad", Pattern: Pattern{Kind: "x"}, MinTriggerCount: 1}})
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func testDetector(t *testing.T, minTriggers int) *Detector {
	t.Helper()
	d, err := NewDetector([]Rule{{
		ID:              "orbit-streak",
		Title:           "Orbit trouble",
		Pattern:         ConsecutiveWrong(domain.TagOrbits, 2),
		MinTriggerCount: minTriggers,
		RelatedTags:     []domain.Tag{domain.TagOrbits},
		UserMessage:     "Orbits are continuous falling.",
	}})
	require.NoError(t, err)
	return d
}

func TestDetector_EvaluateCreatesThenIncrements(t *testing.T) {
	t.Parallel()
	d := testDetector(t, 3)
	t0 := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	history := []domain.QuestionAttempt{attempt(domain.TagOrbits, false)}
	flags, detections := d.Evaluate(nil, history, t0)
	assert.Empty(t, flags)
	assert.Empty(t, detections)

	history = append(history, attempt(domain.TagOrbits, false))
	flags, detections = d.Evaluate(flags, history, t0)
	require.Len(t, flags, 1)
	assert.Equal(t, 1, flags[0].TriggerCount)
	assert.Equal(t, t0, flags[0].DetectedAt)
	require.Len(t, detections, 1)
	assert.False(t, detections[0].BecameActive)
	assert.Empty(t, d.Active(flags), "below minTriggerCount")

	history = append(history, attempt(domain.TagOrbits, false))
	flags, _ = d.Evaluate(flags, history, t0.Add(time.Hour))
	assert.Equal(t, 2, flags[0].TriggerCount)
	assert.Equal(t, t0, flags[0].DetectedAt, "detection time is kept")
	assert.Empty(t, d.Active(flags))

	history = append(history, attempt(domain.TagOrbits, false))
	flags, detections = d.Evaluate(flags, history, t0.Add(2*time.Hour))
	require.Len(t, flags, 1, "one flag per rule")
	assert.Equal(t, 3, flags[0].TriggerCount)
	assert.True(t, detections[0].BecameActive)

	active := d.Active(flags)
	require.Len(t, active, 1)
	assert.Equal(t, "orbit-streak", active[0].RuleID)
	assert.Equal(t, "Orbit trouble", active[0].Title)
	assert.Equal(t, []domain.Tag{domain.TagOrbits}, active[0].RelatedTags)
}

func TestDetector_EvaluateDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	d := testDetector(t, 1)
	flags := []domain.MisconceptionFlag{{RuleID: "orbit-streak", TriggerCount: 1}}
	history := []domain.QuestionAttempt{attempt(domain.TagOrbits, false), attempt(domain.TagOrbits, false)}

	next, _ := d.Evaluate(flags, history, time.Now().UTC())

	assert.Equal(t, 1, flags[0].TriggerCount)
	assert.Equal(t, 2, next[0].TriggerCount)
}

func TestDetector_ResolveIsPermanent(t *testing.T) {
	t.Parallel()
	d := testDetector(t, 1)
	now := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	history := []domain.QuestionAttempt{attempt(domain.TagOrbits, false), attempt(domain.TagOrbits, false)}

	flags, _ := d.Evaluate(nil, history, now)
	require.Len(t, d.Active(flags), 1)

	resolved, changed := d.Resolve(flags, "orbit-streak", now)
	require.True(t, changed)
	assert.True(t, resolved[0].Resolved)
	require.NotNil(t, resolved[0].ResolvedAt)
	assert.Equal(t, now, *resolved[0].ResolvedAt)
	assert.False(t, flags[0].Resolved, "input untouched")
	assert.Empty(t, d.Active(resolved))

	again, changed := d.Resolve(resolved, "orbit-streak", now.Add(time.Hour))
	assert.False(t, changed, "resolving twice is a no-op")
	assert.Equal(t, resolved, again)

	history = append(history, attempt(domain.TagOrbits, false))
	after, detections := d.Evaluate(resolved, history, now.Add(2*time.Hour))
	assert.Empty(t, detections)
	require.Len(t, after, 1)
	assert.Equal(t, 1, after[0].TriggerCount)
	assert.True(t, after[0].Resolved)
}

func TestDetector_ResolveUnknown(t *testing.T) {
	t.Parallel()
	d := testDetector(t, 1)
	flags := []domain.MisconceptionFlag{{RuleID: "orbit-streak", TriggerCount: 1}}

	out, changed := d.Resolve(flags, "never-flagged", time.Now().UTC())
	assert.False(t, changed)
	assert.Equal(t, flags, out)
}

func TestDetector_ActiveSkipsRetiredRules(t *testing.T) {
	t.Parallel()
	d := testDetector(t, 1)
	flags := []domain.MisconceptionFlag{
		{RuleID: "retired-rule", TriggerCount: 9},
		{RuleID: "orbit-streak", TriggerCount: 1},
	}
	active := d.Active(flags)
	require.Len(t, active, 1)
	assert.Equal(t, "orbit-streak", active[0].RuleID)
}

func TestDefaultDetector_SeasonsConfusion(t *testing.T) {
	t.Parallel()
	d := NewDefaultDetector()
	now := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	history := []domain.QuestionAttempt{
		confusion("distance-from-sun", "axial-tilt"),
		confusion("distance-from-sun", "axial-tilt"),
	}

	flags, detections := d.Evaluate(nil, history, now)

	require.Len(t, detections, 1)
	assert.Equal(t, "seasons-distance", detections[0].RuleID)
	active := d.Active(flags)
	require.Len(t, active, 1)
	assert.Equal(t, "why-we-have-seasons", active[0].RecommendedLessonSlug)
}
