package adaptive

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/mastery"
)

// NewProgress returns the snapshot of a learner who has done nothing yet.
func NewProgress() *domain.Progress {
	return MigrateProgress(nil)
}

// MigrateProgress brings a snapshot of any supported schema version up to
// domain.CurrentSchemaVersion. Absent collections become empty, missing tags
// are backfilled at zero, and data owned by other features is kept as is.
// Migrating a current snapshot returns an equal snapshot. The input is not
// modified.
func MigrateProgress(p *domain.Progress) *domain.Progress {
	out := p.Clone()
	if out == nil {
		out = &domain.Progress{}
	}

	// v1 -> v2: tag statistics and history
	out.TagStats = mastery.MigrateTagStats(out.TagStats)
	if out.QuestionHistory == nil {
		out.QuestionHistory = make([]domain.QuestionAttempt, 0)
	}

	// v2 -> v3: misconceptions and the recommendation cache
	if out.Misconceptions == nil {
		out.Misconceptions = make([]domain.MisconceptionFlag, 0)
	}
	if out.SchemaVersion < domain.SchemaV3 {
		out.Recommendations = domain.InvalidRecommendations()
	}

	if out.StartedLessons == nil {
		out.StartedLessons = make([]string, 0)
	}
	if out.CompletedLessons == nil {
		out.CompletedLessons = make([]string, 0)
	}
	if out.Bookmarks == nil {
		out.Bookmarks = make([]string, 0)
	}
	if out.Badges == nil {
		out.Badges = make([]domain.Badge, 0)
	}
	if out.QuizScores == nil {
		out.QuizScores = make(map[string]domain.QuizScore)
	}

	out.SchemaVersion = domain.CurrentSchemaVersion
	return out
}

// DecodeProgress parses a stored snapshot and migrates it. Empty data yields
// a new snapshot. Snapshots written by a newer schema are rejected rather
// than silently downgraded.
func DecodeProgress(data []byte) (*domain.Progress, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewProgress(), nil
	}

	var p domain.Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: progress snapshot: %v", domain.ErrInvalidFormat, err)
	}
	if p.SchemaVersion > domain.CurrentSchemaVersion {
		return nil, fmt.Errorf("%w: %d (current %d)",
			domain.ErrUnsupportedSchema, p.SchemaVersion, domain.CurrentSchemaVersion)
	}
	return MigrateProgress(&p), nil
}

// EncodeProgress serializes a snapshot for the progress store.
func EncodeProgress(p *domain.Progress) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode progress snapshot: %w", err)
	}
	return data, nil
}
