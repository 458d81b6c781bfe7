package recommend

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/misconception"
)

// ErrNilParams is returned when a generator is built without parameters.
var ErrNilParams = errors.New("recommendation params cannot be nil")

// idNamespace scopes the name-based recommendation IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://stargazer.app/recommendations"))

// Input is everything a generation reads. It is never modified.
type Input struct {
	Lessons []domain.LessonEntry
	Quizzes []domain.QuizEntry
	Stats   domain.TagStats
	History []domain.QuestionAttempt
	Active  []misconception.ActiveMisconception
	Now     time.Time
}

// Generator produces ranked recommendations and applies the cache policy.
type Generator interface {
	// Generate returns at most Params().Limit items, highest priority first.
	// Identical inputs always yield identical output.
	Generate(in Input) []domain.Recommendation

	// Current returns the cached state when it is Valid and fresh at in.Now.
	// Otherwise it generates a new state and reports true so the caller can
	// store it.
	Current(cache domain.RecommendationCache, in Input) (domain.RecommendationState, bool)

	// Params exposes the parameters the generator was built with.
	Params() *Params
}

type defaultGenerator struct {
	params *Params
}

// NewDefaultGenerator creates a generator with default parameters
func NewDefaultGenerator() Generator {
	return &defaultGenerator{params: NewDefaultParams()}
}

// NewGeneratorWithParams creates a generator with custom parameters.
func NewGeneratorWithParams(params *Params) (Generator, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultGenerator{params: params}, nil
}

func (g *defaultGenerator) Params() *Params {
	return g.params
}

func (g *defaultGenerator) Generate(in Input) []domain.Recommendation {
	candidates := make([]candidate, 0)
	candidates = append(candidates, misconceptionCandidates(in)...)
	candidates = append(candidates, reviewCandidates(in)...)
	candidates = append(candidates, lowMasteryCandidates(in, g.params)...)
	candidates = append(candidates, notStartedCandidates(in)...)
	candidates = append(candidates, incompleteCandidates(in)...)

	// Stable: equal priorities keep source order, then within-source order.
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return b.rec.Priority - a.rec.Priority
	})

	picked := make([]domain.Recommendation, 0, g.params.Limit)
	targets := make(map[string]bool)
	driven := make(map[domain.RecommendationType]map[domain.Tag]bool)

	for _, c := range candidates {
		if len(picked) == g.params.Limit {
			break
		}
		if targets[c.rec.TargetSlug] {
			continue
		}
		used := driven[c.rec.Type]
		if used == nil {
			used = make(map[domain.Tag]bool)
			driven[c.rec.Type] = used
		}
		if alreadyDriven(used, c.drivers) {
			continue
		}

		rec := c.rec
		rec.ID = recommendationID(rec)
		rec.CreatedAt = in.Now
		picked = append(picked, rec)

		targets[rec.TargetSlug] = true
		for _, tag := range c.drivers {
			used[tag] = true
		}
	}
	return picked
}

func (g *defaultGenerator) Current(
	cache domain.RecommendationCache,
	in Input,
) (domain.RecommendationState, bool) {
	if state, ok := cache.Lookup(in.Now); ok {
		return state, false
	}
	return Wrap(g.Generate(in), in.Now, g.params.CacheTTL), true
}

// Wrap builds the cache envelope for a generated set.
func Wrap(items []domain.Recommendation, now time.Time, ttl time.Duration) domain.RecommendationState {
	if items == nil {
		items = make([]domain.Recommendation, 0)
	}
	return domain.RecommendationState{
		Items:       items,
		GeneratedAt: now,
		ValidUntil:  now.Add(ttl),
	}
}

// alreadyDriven reports whether every driver tag already produced a pick of
// the same type. Candidates without drivers are never rejected here.
func alreadyDriven(used map[domain.Tag]bool, drivers []domain.Tag) bool {
	if len(drivers) == 0 {
		return false
	}
	for _, tag := range drivers {
		if !used[tag] {
			return false
		}
	}
	return true
}

func recommendationID(r domain.Recommendation) string {
	name := strings.Join([]string{string(r.Type), r.TargetSlug, string(r.Reason.Type)}, "|")
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}
