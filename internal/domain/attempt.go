package domain

import (
	"errors"
	"fmt"
	"time"
)

// Difficulty grades a question from 1 (easy) to 3 (hard).
type Difficulty int

// Difficulty levels
const (
	DifficultyEasy   Difficulty = 1
	DifficultyMedium Difficulty = 2
	DifficultyHard   Difficulty = 3
)

// IsValid reports whether the difficulty is one of the known levels.
func (d Difficulty) IsValid() bool {
	return d >= DifficultyEasy && d <= DifficultyHard
}

// Answer validation errors
var (
	ErrEmptyQuestionID   = errors.New("question ID cannot be empty")
	ErrEmptyTags         = errors.New("answer must name at least one tag")
	ErrInvalidDifficulty = errors.New("difficulty must be 1, 2 or 3")
)

// AnswerEvent is one answered question as reported by the quiz UI.
type AnswerEvent struct {
	QuestionID       string     `json:"questionId"`
	QuizID           string     `json:"quizId"`
	Tags             []Tag      `json:"tags"`
	Difficulty       Difficulty `json:"difficulty"`
	IsCorrect        bool       `json:"isCorrect"`
	SelectedAnswerID string     `json:"selectedAnswerId"`
	CorrectAnswerID  string     `json:"correctAnswerId"`
}

// Validate checks the event at an outer boundary. The engine itself accepts
// events that fail validation and degrades gracefully.
func (e AnswerEvent) Validate() error {
	if e.QuestionID == "" {
		return ErrEmptyQuestionID
	}
	if len(e.Tags) == 0 {
		return ErrEmptyTags
	}
	if !e.Difficulty.IsValid() {
		return fmt.Errorf("%w: got %d", ErrInvalidDifficulty, e.Difficulty)
	}
	return nil
}

// QuestionAttempt is the immutable history record of one answered question.
type QuestionAttempt struct {
	QuestionID       string     `json:"questionId"`
	QuizID           string     `json:"quizId"`
	Tags             []Tag      `json:"tags"`
	Difficulty       Difficulty `json:"difficulty"`
	IsCorrect        bool       `json:"isCorrect"`
	SelectedAnswerID string     `json:"selectedAnswerId"`
	CorrectAnswerID  string     `json:"correctAnswerId"`
	AttemptedAt      time.Time  `json:"attemptedAt"`
}

// NewQuestionAttempt records the event at the given time.
func NewQuestionAttempt(e AnswerEvent, at time.Time) QuestionAttempt {
	tags := make([]Tag, len(e.Tags))
	copy(tags, e.Tags)
	return QuestionAttempt{
		QuestionID:       e.QuestionID,
		QuizID:           e.QuizID,
		Tags:             tags,
		Difficulty:       e.Difficulty,
		IsCorrect:        e.IsCorrect,
		SelectedAnswerID: e.SelectedAnswerID,
		CorrectAnswerID:  e.CorrectAnswerID,
		AttemptedAt:      at,
	}
}

// HasTag reports whether the attempt names the tag.
func (a QuestionAttempt) HasTag(tag Tag) bool {
	return hasTag(a.Tags, tag)
}
