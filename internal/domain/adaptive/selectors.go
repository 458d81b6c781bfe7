package adaptive

import (
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/mastery"
	"github.com/phrazzld/stargazer/internal/domain/misconception"
)

// Summary is a read-only view of the learner model at one instant.
type Summary struct {
	OverallMastery float64                             `json:"overallMastery"`
	TagStats       []domain.TagStat                    `json:"tagStats"`
	Attempts       int                                 `json:"attempts"`
	DueReviews     []mastery.ReviewQueueItem           `json:"dueReviews"`
	Weakest        []domain.TagStat                    `json:"weakest"`
	Unseen         []domain.Tag                        `json:"unseen"`
	Misconceptions []misconception.ActiveMisconception `json:"misconceptions"`
}

// ReviewQueue lists the tags due at now.
func (e *Engine) ReviewQueue(p *domain.Progress, now time.Time) []mastery.ReviewQueueItem {
	return mastery.ReviewQueue(MigrateProgress(p).TagStats, now)
}

// WeakestTags lists seen tags, weakest first.
func (e *Engine) WeakestTags(p *domain.Progress) []domain.TagStat {
	return mastery.WeakestTags(MigrateProgress(p).TagStats)
}

// UnseenTags lists tags with no attempts in taxonomy order.
func (e *Engine) UnseenTags(p *domain.Progress) []domain.Tag {
	return mastery.UnseenTags(MigrateProgress(p).TagStats)
}

// OverallMastery averages mastery across the taxonomy.
func (e *Engine) OverallMastery(p *domain.Progress) float64 {
	return mastery.OverallMastery(MigrateProgress(p).TagStats)
}

// ActiveMisconceptions lists unresolved flags that reached their threshold.
func (e *Engine) ActiveMisconceptions(p *domain.Progress) []misconception.ActiveMisconception {
	return e.detector.Active(MigrateProgress(p).Misconceptions)
}

// Summarize gathers every selector into one view.
func (e *Engine) Summarize(p *domain.Progress, now time.Time) Summary {
	current := MigrateProgress(p)
	stats := make([]domain.TagStat, 0, len(domain.AllTags()))
	for _, tag := range domain.AllTags() {
		stats = append(stats, current.TagStats[tag])
	}

	return Summary{
		OverallMastery: mastery.OverallMastery(current.TagStats),
		TagStats:       stats,
		Attempts:       len(current.QuestionHistory),
		DueReviews:     mastery.ReviewQueue(current.TagStats, now),
		Weakest:        mastery.WeakestTags(current.TagStats),
		Unseen:         mastery.UnseenTags(current.TagStats),
		Misconceptions: e.detector.Active(current.Misconceptions),
	}
}
