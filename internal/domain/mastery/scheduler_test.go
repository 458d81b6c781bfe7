package mastery

import (
	"testing"
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withReview(stats domain.TagStats, tag domain.Tag, mastery float64, seen int, reviewAt time.Time) {
	s := stats[tag]
	s.Mastery = mastery
	s.Seen = seen
	s.Correct = seen
	last := reviewAt.AddDate(0, 0, -1)
	s.LastSeenAt = &last
	s.NextReviewAt = &reviewAt
	stats[tag] = s
}

func TestNextReviewAt(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		isCorrect bool
		mastery   float64
		expected  time.Time
	}{
		{"wrong answer at high mastery", false, 0.95, now.AddDate(0, 0, 1)},
		{"wrong answer at zero mastery", false, 0, now.AddDate(0, 0, 1)},
		{"correct answer below threshold", true, 0.59, now.AddDate(0, 0, 3)},
		{"correct answer at threshold", true, 0.6, now.AddDate(0, 0, 7)},
		{"correct answer above threshold", true, 0.8, now.AddDate(0, 0, 7)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, NextReviewAt(tc.isCorrect, tc.mastery, now, params))
		})
	}
}

func TestReviewQueue_OrderingAndFiltering(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	stats := NewTagStats()

	withReview(stats, domain.TagOrbits, 0.4, 2, now.AddDate(0, 0, -1))                  // 1 day overdue
	withReview(stats, domain.TagGravity, 0.2, 2, now.AddDate(0, 0, -1).Add(-time.Hour)) // 1 day overdue, weaker
	withReview(stats, domain.TagStars, 0.7, 3, now.AddDate(0, 0, -4))                   // 4 days overdue
	withReview(stats, domain.TagLight, 0.5, 1, now)                                     // due exactly now
	withReview(stats, domain.TagPlanets, 0.1, 1, now.Add(time.Minute))                  // not yet due

	queue := ReviewQueue(stats, now)

	require.Len(t, queue, 4)
	assert.Equal(t, domain.TagStars, queue[0].Tag)
	assert.Equal(t, 4, queue[0].DaysOverdue)
	assert.Equal(t, domain.TagGravity, queue[1].Tag, "ties on days overdue go to the weaker tag")
	assert.Equal(t, domain.TagOrbits, queue[2].Tag)
	assert.Equal(t, domain.TagLight, queue[3].Tag)
	assert.Equal(t, 0, queue[3].DaysOverdue)
	for _, item := range queue {
		assert.True(t, item.IsOverdue)
	}
}

func TestReviewQueue_ExcludesNeverReviewed(t *testing.T) {
	t.Parallel()
	queue := ReviewQueue(NewTagStats(), time.Now().UTC())
	assert.Empty(t, queue)
}

func TestReviewQueue_TaxonomyOrderBreaksFullTies(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	stats := NewTagStats()
	due := now.AddDate(0, 0, -2)
	withReview(stats, domain.TagCosmology, 0.3, 1, due)
	withReview(stats, domain.TagPlanets, 0.3, 1, due)

	queue := ReviewQueue(stats, now)
	require.Len(t, queue, 2)
	assert.Equal(t, domain.TagPlanets, queue[0].Tag)
	assert.Equal(t, domain.TagCosmology, queue[1].Tag)
}

func TestWeakestTags(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	stats := NewTagStats()
	withReview(stats, domain.TagGalaxies, 0.8, 4, now)
	withReview(stats, domain.TagSun, 0.1, 1, now)
	withReview(stats, domain.TagMoons, 0.1, 2, now)

	weakest := WeakestTags(stats)

	require.Len(t, weakest, 3, "unseen tags are excluded")
	assert.Equal(t, domain.TagMoons, weakest[0].Tag, "moons precede sun in taxonomy order")
	assert.Equal(t, domain.TagSun, weakest[1].Tag)
	assert.Equal(t, domain.TagGalaxies, weakest[2].Tag)
}

func TestScheduler_SkipsRetiredTags(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	retired := domain.Tag("comets")
	require.False(t, retired.IsKnown())

	stats := NewTagStats()
	withReview(stats, retired, 0.05, 6, now.AddDate(0, 0, -30))
	withReview(stats, domain.TagStars, 0.4, 2, now.AddDate(0, 0, -1))

	queue := ReviewQueue(stats, now)
	require.Len(t, queue, 1)
	assert.Equal(t, domain.TagStars, queue[0].Tag)

	weakest := WeakestTags(stats)
	require.Len(t, weakest, 1)
	assert.Equal(t, domain.TagStars, weakest[0].Tag)
}

func TestUnseenTags(t *testing.T) {
	t.Parallel()
	stats := NewTagStats()
	withReview(stats, domain.TagPlanets, 0.2, 1, time.Now().UTC())
	delete(stats, domain.TagCosmology)

	unseen := UnseenTags(stats)

	assert.Len(t, unseen, len(domain.AllTags())-1)
	assert.NotContains(t, unseen, domain.TagPlanets)
	assert.Contains(t, unseen, domain.TagCosmology, "tags missing from the map are unseen")
	assert.Equal(t, domain.TagMoons, unseen[0])
}

func TestOverallMastery(t *testing.T) {
	t.Parallel()
	stats := NewTagStats()
	assert.Equal(t, 0.0, OverallMastery(stats))

	withReview(stats, domain.TagPlanets, 1.0, 5, time.Now().UTC())
	withReview(stats, domain.TagMoons, 0.7, 3, time.Now().UTC())

	assert.InDelta(t, 1.7/float64(len(domain.AllTags())), OverallMastery(stats), 1e-9)
}
