package misconception

import (
	"errors"
	"fmt"

	"github.com/phrazzld/stargazer/internal/domain"
)

// Rule validation errors
var (
	ErrInvalidPattern = errors.New("invalid misconception pattern")
	ErrInvalidRule    = errors.New("invalid misconception rule")
	ErrDuplicateRule  = errors.New("duplicate misconception rule ID")
)

// Rule is a static, code-defined misconception definition. Rules are
// configuration: they are never persisted, only referenced by ID from flags.
type Rule struct {
	ID                    string       `json:"id"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	Pattern               Pattern      `json:"pattern"`
	MinTriggerCount       int          `json:"minTriggerCount"`
	RelatedTags           []domain.Tag `json:"relatedTags"`
	RecommendedLessonSlug string       `json:"recommendedLessonSlug,omitempty"`
	UserMessage           string       `json:"userMessage"`
}

// Validate checks the rule definition.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty ID", ErrInvalidRule)
	}
	if r.MinTriggerCount < 1 {
		return fmt.Errorf("%w: %s: minTriggerCount must be at least 1", ErrInvalidRule, r.ID)
	}
	if err := r.Pattern.Validate(); err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}
	return nil
}

// DefaultRules returns the built-in rule library in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:                    "seasons-distance",
			Title:                 "Seasons come from distance to the Sun",
			Description:           "Chooses orbital distance instead of axial tilt to explain the seasons.",
			Pattern:               ConfusedPair("distance-from-sun", "axial-tilt", 2),
			MinTriggerCount:       1,
			RelatedTags:           []domain.Tag{domain.TagSeasons, domain.TagOrbits},
			RecommendedLessonSlug: "why-we-have-seasons",
			UserMessage:           "Earth is actually closest to the Sun in January. Seasons come from the tilt of Earth's axis.",
		},
		{
			ID:                    "moon-phases-shadow",
			Title:                 "Moon phases are Earth's shadow",
			Description:           "Explains lunar phases with Earth's shadow instead of the viewing angle of the sunlit half.",
			Pattern:               ConfusedPair("earth-shadow", "sunlit-half-angle", 2),
			MinTriggerCount:       1,
			RelatedTags:           []domain.Tag{domain.TagMoonPhases, domain.TagMoons},
			RecommendedLessonSlug: "phases-of-the-moon",
			UserMessage:           "Earth's shadow only reaches the Moon during an eclipse. Phases show how much of the sunlit half we can see.",
		},
		{
			ID:                    "light-year-time",
			Title:                 "A light-year measures time",
			Description:           "Treats the light-year as a unit of time rather than distance.",
			Pattern:               ConfusedPair("unit-of-time", "unit-of-distance", 2),
			MinTriggerCount:       1,
			RelatedTags:           []domain.Tag{domain.TagLight, domain.TagGalaxies},
			RecommendedLessonSlug: "measuring-cosmic-distances",
			UserMessage:           "A light-year is the distance light travels in one year, about 9.5 trillion kilometres.",
		},
		{
			ID:                    "heavier-falls-faster",
			Title:                 "Heavier objects fall faster",
			Description:           "Expects gravitational acceleration to depend on the falling object's mass.",
			Pattern:               ConfusedPair("heavier-falls-faster", "same-acceleration", 2),
			MinTriggerCount:       1,
			RelatedTags:           []domain.Tag{domain.TagGravity},
			RecommendedLessonSlug: "gravity-basics",
			UserMessage:           "Without air resistance, a hammer and a feather fall together, as Apollo 15 showed on the Moon.",
		},
		{
			ID:                    "black-hole-vacuum",
			Title:                 "Black holes suck everything in",
			Description:           "Persistently low accuracy on black hole questions, typical of the cosmic-vacuum-cleaner picture.",
			Pattern:               LowMasteryPersistent(domain.TagBlackHoles, 4, 0.25),
			MinTriggerCount:       2,
			RelatedTags:           []domain.Tag{domain.TagBlackHoles, domain.TagGravity},
			RecommendedLessonSlug: "black-holes-demystified",
			UserMessage:           "From far away a black hole pulls like any object of the same mass. Only near the event horizon is escape impossible.",
		},
		{
			ID:                    "orbits-falling",
			Title:                 "Orbiting objects escape gravity",
			Description:           "Repeated wrong answers on orbits, usually from thinking there is no gravity in orbit.",
			Pattern:               ConsecutiveWrong(domain.TagOrbits, 3),
			MinTriggerCount:       2,
			RelatedTags:           []domain.Tag{domain.TagOrbits, domain.TagGravity},
			RecommendedLessonSlug: "how-orbits-work",
			UserMessage:           "Astronauts in orbit are constantly falling around Earth. Gravity is still about 90% as strong there.",
		},
		{
			ID:              "topic-streak",
			Title:           "Stuck on a topic",
			Description:     "Several wrong answers in a row on the same topic.",
			Pattern:         ConsecutiveWrong("", 4),
			MinTriggerCount: 1,
			UserMessage:     "You've missed a few in a row here. Revisiting the lesson before the next quiz usually helps.",
		},
	}
}
