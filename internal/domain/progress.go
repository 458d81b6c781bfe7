package domain

import "time"

// Snapshot schema versions
const (
	// SchemaV1 carries lesson progress, quiz scores, bookmarks and badges only.
	SchemaV1 = 1
	// SchemaV2 adds tagStats and questionHistory.
	SchemaV2 = 2
	// SchemaV3 adds misconceptions and recommendations.
	SchemaV3 = 3

	// CurrentSchemaVersion is the version written by this build.
	CurrentSchemaVersion = SchemaV3
)

// QuizScore is the best recorded result for a quiz.
type QuizScore struct {
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completedAt"`
}

// Badge is an achievement the learner has earned.
type Badge struct {
	ID       string    `json:"id"`
	EarnedAt time.Time `json:"earnedAt"`
}

// Progress is the single persisted snapshot of one learner's state.
// The adaptive engine owns TagStats, QuestionHistory, Misconceptions and
// Recommendations; the remaining fields belong to other features and are
// carried through unchanged.
type Progress struct {
	SchemaVersion int `json:"schemaVersion"`

	StartedLessons   []string             `json:"startedLessons"`
	CompletedLessons []string             `json:"completedLessons"`
	QuizScores       map[string]QuizScore `json:"quizScores"`
	Bookmarks        []string             `json:"bookmarks"`
	Badges           []Badge              `json:"badges"`

	TagStats        TagStats            `json:"tagStats"`
	QuestionHistory []QuestionAttempt   `json:"questionHistory"`
	Misconceptions  []MisconceptionFlag `json:"misconceptions"`
	Recommendations RecommendationCache `json:"recommendations"`
}

// Clone returns a deep copy of the snapshot so a transition never mutates
// its input.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	out := *p
	out.StartedLessons = cloneStrings(p.StartedLessons)
	out.CompletedLessons = cloneStrings(p.CompletedLessons)
	out.Bookmarks = cloneStrings(p.Bookmarks)
	if p.QuizScores != nil {
		out.QuizScores = make(map[string]QuizScore, len(p.QuizScores))
		for k, v := range p.QuizScores {
			out.QuizScores[k] = v
		}
	}
	if p.Badges != nil {
		out.Badges = make([]Badge, len(p.Badges))
		copy(out.Badges, p.Badges)
	}
	out.TagStats = p.TagStats.Clone()
	if p.QuestionHistory != nil {
		out.QuestionHistory = make([]QuestionAttempt, len(p.QuestionHistory))
		for i, a := range p.QuestionHistory {
			if a.Tags != nil {
				a.Tags = append(make([]Tag, 0, len(a.Tags)), a.Tags...)
			}
			out.QuestionHistory[i] = a
		}
	}
	out.Misconceptions = CloneFlags(p.Misconceptions)
	return &out
}

// HasStartedLesson reports whether the learner opened the lesson.
func (p *Progress) HasStartedLesson(slug string) bool {
	return containsString(p.StartedLessons, slug)
}

// HasCompletedLesson reports whether the learner finished the lesson.
func (p *Progress) HasCompletedLesson(slug string) bool {
	return containsString(p.CompletedLessons, slug)
}

// HasCompletedQuiz reports whether a score is recorded for the quiz.
func (p *Progress) HasCompletedQuiz(id string) bool {
	_, ok := p.QuizScores[id]
	return ok
}

// LessonEntries joins catalog lessons with the snapshot's lesson progress.
func (p *Progress) LessonEntries(c Catalog) []LessonEntry {
	out := make([]LessonEntry, len(c.Lessons))
	for i, l := range c.Lessons {
		out[i] = LessonEntry{
			Lesson:    l,
			Started:   p.HasStartedLesson(l.Slug),
			Completed: p.HasCompletedLesson(l.Slug),
		}
	}
	return out
}

// QuizEntries joins catalog quizzes with the snapshot's quiz scores.
func (p *Progress) QuizEntries(c Catalog) []QuizEntry {
	out := make([]QuizEntry, len(c.Quizzes))
	for i, q := range c.Quizzes {
		out[i] = QuizEntry{Quiz: q, Completed: p.HasCompletedQuiz(q.ID)}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
