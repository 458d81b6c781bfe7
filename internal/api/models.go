package api

import (
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/adaptive"
	"github.com/phrazzld/stargazer/internal/domain/mastery"
	"github.com/phrazzld/stargazer/internal/domain/misconception"
)

// AnswerRequest is the body of POST /api/answers.
type AnswerRequest struct {
	QuestionID       string   `json:"questionId" validate:"required,max=200"`
	QuizID           string   `json:"quizId" validate:"max=200"`
	Tags             []string `json:"tags" validate:"required,min=1,max=17,dive,required"`
	Difficulty       int      `json:"difficulty" validate:"required,oneof=1 2 3"`
	IsCorrect        *bool    `json:"isCorrect" validate:"required"`
	SelectedAnswerID string   `json:"selectedAnswerId" validate:"max=200"`
	CorrectAnswerID  string   `json:"correctAnswerId" validate:"max=200"`
}

// ToEvent converts the validated request into a domain answer event. Tags
// outside the taxonomy are passed through; the engine ignores them.
func (r AnswerRequest) ToEvent() domain.AnswerEvent {
	tags := make([]domain.Tag, len(r.Tags))
	for i, t := range r.Tags {
		tags[i] = domain.Tag(t)
	}
	return domain.AnswerEvent{
		QuestionID:       r.QuestionID,
		QuizID:           r.QuizID,
		Tags:             tags,
		Difficulty:       domain.Difficulty(r.Difficulty),
		IsCorrect:        r.IsCorrect != nil && *r.IsCorrect,
		SelectedAnswerID: r.SelectedAnswerID,
		CorrectAnswerID:  r.CorrectAnswerID,
	}
}

// AnswerResponse reports the per-tag mastery changes of one answer.
type AnswerResponse struct {
	QuestionID  string                    `json:"questionId"`
	AttemptedAt time.Time                 `json:"attemptedAt"`
	Deltas      []mastery.TagDelta        `json:"deltas"`
	Detections  []misconception.Detection `json:"detections"`
	IgnoredTags []string                  `json:"ignoredTags,omitempty"`
}

// TagResponse is one taxonomy entry.
type TagResponse struct {
	Tag   domain.Tag      `json:"tag"`
	Label string          `json:"label"`
	Group domain.TagGroup `json:"group"`
}

// TagMasteryResponse is a tag's statistics with display metadata.
type TagMasteryResponse struct {
	TagResponse
	Mastery      float64    `json:"mastery"`
	Seen         int        `json:"seen"`
	Correct      int        `json:"correct"`
	Wrong        int        `json:"wrong"`
	LastSeenAt   *time.Time `json:"lastSeenAt"`
	NextReviewAt *time.Time `json:"nextReviewAt"`
}

// MasteryResponse is the body of GET /api/mastery.
type MasteryResponse struct {
	OverallMastery float64              `json:"overallMastery"`
	Attempts       int                  `json:"attempts"`
	Tags           []TagMasteryResponse `json:"tags"`
}

// ResolveResponse is the body of POST /api/misconceptions/{ruleID}/resolve.
type ResolveResponse struct {
	RuleID   string `json:"ruleId"`
	Resolved bool   `json:"resolved"`
}

// LessonResponse is the body of the lesson progress endpoints.
type LessonResponse struct {
	Slug    string `json:"slug"`
	Changed bool   `json:"changed"`
}

func tagResponse(tag domain.Tag) TagResponse {
	return TagResponse{Tag: tag, Label: tag.Label(), Group: tag.Group()}
}

func tagMasteryResponse(stat domain.TagStat) TagMasteryResponse {
	return TagMasteryResponse{
		TagResponse:  tagResponse(stat.Tag),
		Mastery:      stat.Mastery,
		Seen:         stat.Seen,
		Correct:      stat.Correct,
		Wrong:        stat.Wrong,
		LastSeenAt:   stat.LastSeenAt,
		NextReviewAt: stat.NextReviewAt,
	}
}

func tagMasteryResponses(stats []domain.TagStat) []TagMasteryResponse {
	out := make([]TagMasteryResponse, len(stats))
	for i, s := range stats {
		out[i] = tagMasteryResponse(s)
	}
	return out
}

func masteryResponse(summary adaptive.Summary) MasteryResponse {
	return MasteryResponse{
		OverallMastery: summary.OverallMastery,
		Attempts:       summary.Attempts,
		Tags:           tagMasteryResponses(summary.TagStats),
	}
}
