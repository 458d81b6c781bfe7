package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/mastery"
)

// Priority bands
const (
	priorityMisconception  = 10
	priorityReviewBase     = 6
	priorityReviewMaxBonus = 2
	priorityLowMasteryLow  = 5
	priorityLowMasteryMid  = 4
	priorityLowMasteryQuiz = 4
	priorityNotStarted     = 3
	priorityIncomplete     = 2
)

// candidate is a recommendation plus the tags that caused it.
type candidate struct {
	rec     domain.Recommendation
	drivers []domain.Tag
}

func misconceptionCandidates(in Input) []candidate {
	out := make([]candidate, 0, len(in.Active))
	for _, m := range in.Active {
		if m.RecommendedLessonSlug == "" {
			continue
		}
		lesson, ok := findLesson(in.Lessons, m.RecommendedLessonSlug)
		if !ok {
			continue
		}
		out = append(out, candidate{
			rec: domain.Recommendation{
				Type:        domain.RecommendationLesson,
				TargetSlug:  lesson.Slug,
				TargetTitle: lesson.Title,
				Tags:        cloneTags(lesson.Tags),
				Reason: domain.RecommendationReason{
					Type:          domain.ReasonMisconception,
					Details:       fmt.Sprintf("%s: %s", m.Title, m.UserMessage),
					TagsMentioned: cloneTags(m.RelatedTags),
				},
				Priority: priorityMisconception,
			},
			drivers: m.RelatedTags,
		})
	}
	return out
}

func reviewCandidates(in Input) []candidate {
	queue := mastery.ReviewQueue(in.Stats, in.Now)
	out := make([]candidate, 0, len(queue))
	for _, item := range queue {
		quiz, ok := pickReviewQuiz(in.Quizzes, in.History, item.Tag)
		if !ok {
			continue
		}
		details := fmt.Sprintf("%s is due for review", item.Tag.Label())
		if item.DaysOverdue > 0 {
			details = fmt.Sprintf("%s review is %d day(s) overdue", item.Tag.Label(), item.DaysOverdue)
		}
		out = append(out, candidate{
			rec: domain.Recommendation{
				Type:        domain.RecommendationReview,
				TargetSlug:  quiz.ID,
				TargetTitle: quiz.Title,
				Tags:        cloneTags(quiz.Tags),
				Reason: domain.RecommendationReason{
					Type:          domain.ReasonReviewDue,
					Details:       details,
					TagsMentioned: []domain.Tag{item.Tag},
				},
				Priority: priorityReviewBase + min(item.DaysOverdue, priorityReviewMaxBonus),
			},
			drivers: []domain.Tag{item.Tag},
		})
	}
	return out
}

// pickReviewQuiz chooses the quiz covering tag that the learner practiced
// least recently on that tag. Quizzes never attempted for the tag come first.
// On a tie a quiz without a recorded score wins, then catalog order.
func pickReviewQuiz(quizzes []domain.QuizEntry, history []domain.QuestionAttempt, tag domain.Tag) (domain.Quiz, bool) {
	var (
		best     domain.QuizEntry
		bestSeen time.Time
		found    bool
	)
	for _, q := range quizzes {
		if !q.Covers(tag) {
			continue
		}
		last := lastPracticed(history, q.ID, tag)
		tieGoesToNew := last.Equal(bestSeen) && best.Completed && !q.Completed
		if !found || last.Before(bestSeen) || tieGoesToNew {
			best, bestSeen, found = q, last, true
		}
	}
	return best.Quiz, found
}

// firstQuiz returns the first quiz covering tag, preferring one the learner
// has not completed yet.
func firstQuiz(quizzes []domain.QuizEntry, tag domain.Tag) (domain.Quiz, bool) {
	var (
		fallback domain.Quiz
		found    bool
	)
	for _, q := range quizzes {
		if !q.Covers(tag) {
			continue
		}
		if !q.Completed {
			return q.Quiz, true
		}
		if !found {
			fallback, found = q.Quiz, true
		}
	}
	return fallback, found
}

func lastPracticed(history []domain.QuestionAttempt, quizID string, tag domain.Tag) time.Time {
	for i := len(history) - 1; i >= 0; i-- {
		a := history[i]
		if a.QuizID == quizID && a.HasTag(tag) {
			return a.AttemptedAt
		}
	}
	return time.Time{}
}

func lowMasteryCandidates(in Input, params *Params) []candidate {
	out := make([]candidate, 0)
	for _, stat := range mastery.WeakestTags(in.Stats) {
		if stat.Mastery >= params.LowMastery {
			break
		}
		percent := int(math.Round(stat.Mastery * 100))
		reason := domain.RecommendationReason{
			Type:          domain.ReasonLowMastery,
			Details:       fmt.Sprintf("%s mastery is %d%%", stat.Tag.Label(), percent),
			TagsMentioned: []domain.Tag{stat.Tag},
		}

		if lesson, ok := firstLesson(in.Lessons, stat.Tag, func(e domain.LessonEntry) bool { return !e.Completed }); ok {
			priority := priorityLowMasteryMid
			if stat.Mastery < params.CriticalMastery {
				priority = priorityLowMasteryLow
			}
			out = append(out, candidate{
				rec:     lessonRecommendation(lesson, reason, priority),
				drivers: []domain.Tag{stat.Tag},
			})
			continue
		}

		if q, ok := firstQuiz(in.Quizzes, stat.Tag); ok {
			reason.Details = fmt.Sprintf("%s mastery is %d%% after finishing its lessons", stat.Tag.Label(), percent)
			out = append(out, candidate{
				rec: domain.Recommendation{
					Type:        domain.RecommendationQuiz,
					TargetSlug:  q.ID,
					TargetTitle: q.Title,
					Tags:        cloneTags(q.Tags),
					Reason:      reason,
					Priority:    priorityLowMasteryQuiz,
				},
				drivers: []domain.Tag{stat.Tag},
			})
		}
	}
	return out
}

func notStartedCandidates(in Input) []candidate {
	out := make([]candidate, 0)
	for _, tag := range mastery.UnseenTags(in.Stats) {
		lesson, ok := firstLesson(in.Lessons, tag, func(e domain.LessonEntry) bool {
			return !e.Started && !e.Completed
		})
		if !ok {
			continue
		}
		reason := domain.RecommendationReason{
			Type:          domain.ReasonNotStarted,
			Details:       fmt.Sprintf("You haven't explored %s yet", tag.Label()),
			TagsMentioned: []domain.Tag{tag},
		}
		out = append(out, candidate{
			rec:     lessonRecommendation(lesson, reason, priorityNotStarted),
			drivers: []domain.Tag{tag},
		})
	}
	return out
}

func incompleteCandidates(in Input) []candidate {
	out := make([]candidate, 0)
	for _, e := range in.Lessons {
		if !e.Started || e.Completed {
			continue
		}
		reason := domain.RecommendationReason{
			Type:    domain.ReasonIncomplete,
			Details: fmt.Sprintf("Pick up where you left off in %q", e.Title),
		}
		out = append(out, candidate{rec: lessonRecommendation(e.Lesson, reason, priorityIncomplete)})
	}
	return out
}

func lessonRecommendation(l domain.Lesson, reason domain.RecommendationReason, priority int) domain.Recommendation {
	return domain.Recommendation{
		Type:        domain.RecommendationLesson,
		TargetSlug:  l.Slug,
		TargetTitle: l.Title,
		Tags:        cloneTags(l.Tags),
		Reason:      reason,
		Priority:    priority,
	}
}

func findLesson(lessons []domain.LessonEntry, slug string) (domain.Lesson, bool) {
	for _, e := range lessons {
		if e.Slug == slug {
			return e.Lesson, true
		}
	}
	return domain.Lesson{}, false
}

func firstLesson(lessons []domain.LessonEntry, tag domain.Tag, keep func(domain.LessonEntry) bool) (domain.Lesson, bool) {
	for _, e := range lessons {
		if e.Covers(tag) && keep(e) {
			return e.Lesson, true
		}
	}
	return domain.Lesson{}, false
}

func cloneTags(tags []domain.Tag) []domain.Tag {
	if tags == nil {
		return nil
	}
	out := make([]domain.Tag, len(tags))
	copy(out, tags)
	return out
}
