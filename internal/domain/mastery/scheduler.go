package mastery

import (
	"slices"
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
)

// ReviewQueueItem is one tag that is due for review.
type ReviewQueueItem struct {
	Tag          domain.Tag `json:"tag"`
	Mastery      float64    `json:"mastery"`
	NextReviewAt time.Time  `json:"nextReviewAt"`
	IsOverdue    bool       `json:"isOverdue"`
	DaysOverdue  int        `json:"daysOverdue"`
}

// NextReviewAt determines when a tag should next be reviewed.
//
// Algorithm behavior:
//   - Wrong answers are reviewed after ReviewIntervalWrong days, whatever the mastery
//   - Correct answers leaving mastery below MasteryThreshold use ReviewIntervalLowMastery
//   - Otherwise ReviewIntervalHighMastery applies
func NextReviewAt(isCorrect bool, newMastery float64, now time.Time, params *Params) time.Time {
	switch {
	case !isCorrect:
		return now.AddDate(0, 0, params.ReviewIntervalWrong)
	case newMastery < params.MasteryThreshold:
		return now.AddDate(0, 0, params.ReviewIntervalLowMastery)
	default:
		return now.AddDate(0, 0, params.ReviewIntervalHighMastery)
	}
}

// ReviewQueue returns every tag whose review time is at or before now.
// Tags that were never reviewed, and tags no longer in the taxonomy, are not
// included. The most overdue tags come first; ties go to the weaker tag, then
// to taxonomy order.
func ReviewQueue(stats domain.TagStats, now time.Time) []ReviewQueueItem {
	queue := make([]ReviewQueueItem, 0)
	for tag, stat := range stats {
		if !tag.IsKnown() || stat.NextReviewAt == nil || stat.NextReviewAt.After(now) {
			continue
		}
		queue = append(queue, ReviewQueueItem{
			Tag:          tag,
			Mastery:      stat.Mastery,
			NextReviewAt: *stat.NextReviewAt,
			IsOverdue:    true,
			DaysOverdue:  int(now.Sub(*stat.NextReviewAt) / (24 * time.Hour)),
		})
	}

	slices.SortFunc(queue, func(a, b ReviewQueueItem) int {
		if a.DaysOverdue != b.DaysOverdue {
			return b.DaysOverdue - a.DaysOverdue
		}
		if a.Mastery != b.Mastery {
			if a.Mastery < b.Mastery {
				return -1
			}
			return 1
		}
		return domain.CompareTags(a.Tag, b.Tag)
	})
	return queue
}

// WeakestTags returns the stats of every seen taxonomy tag, weakest first.
// Stats kept for retired tags are skipped.
func WeakestTags(stats domain.TagStats) []domain.TagStat {
	seen := make([]domain.TagStat, 0)
	for tag, stat := range stats {
		if tag.IsKnown() && stat.Seen > 0 {
			stat.Tag = tag
			seen = append(seen, stat)
		}
	}
	slices.SortFunc(seen, func(a, b domain.TagStat) int {
		if a.Mastery != b.Mastery {
			if a.Mastery < b.Mastery {
				return -1
			}
			return 1
		}
		return domain.CompareTags(a.Tag, b.Tag)
	})
	return seen
}

// UnseenTags returns the taxonomy tags with no attempts, in taxonomy order.
// Tags missing from the map count as unseen.
func UnseenTags(stats domain.TagStats) []domain.Tag {
	unseen := make([]domain.Tag, 0)
	for _, tag := range domain.AllTags() {
		if stats[tag].Seen == 0 {
			unseen = append(unseen, tag)
		}
	}
	return unseen
}

// OverallMastery is the mean mastery across every taxonomy tag, counting
// unseen tags as zero.
func OverallMastery(stats domain.TagStats) float64 {
	tags := domain.AllTags()
	if len(tags) == 0 {
		return 0
	}
	var sum float64
	for _, tag := range tags {
		sum += stats[tag].Mastery
	}
	return sum / float64(len(tags))
}
