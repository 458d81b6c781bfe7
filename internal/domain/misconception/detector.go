package misconception

import (
	"fmt"
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
)

// Detection reports one rule that fired during an evaluation.
type Detection struct {
	RuleID       string `json:"ruleId"`
	TriggerCount int    `json:"triggerCount"`
	// BecameActive is true when this firing made the flag reach MinTriggerCount.
	BecameActive bool `json:"becameActive"`
}

// ActiveMisconception is an unresolved flag joined with its rule metadata.
type ActiveMisconception struct {
	RuleID                string       `json:"ruleId"`
	Title                 string       `json:"title"`
	Description           string       `json:"description"`
	UserMessage           string       `json:"userMessage"`
	RelatedTags           []domain.Tag `json:"relatedTags"`
	RecommendedLessonSlug string       `json:"recommendedLessonSlug,omitempty"`
	TriggerCount          int          `json:"triggerCount"`
	DetectedAt            time.Time    `json:"detectedAt"`
}

// Detector evaluates a fixed rule library against the attempt history.
type Detector struct {
	rules []Rule
	index map[string]int
}

// NewDetector builds a detector over the given rules, evaluated in order.
func NewDetector(rules []Rule) (*Detector, error) {
	d := &Detector{
		rules: make([]Rule, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	copy(d.rules, rules)
	for i, r := range d.rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := d.index[r.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRule, r.ID)
		}
		d.index[r.ID] = i
	}
	return d, nil
}

// NewDefaultDetector builds a detector over DefaultRules.
func NewDefaultDetector() *Detector {
	d, err := NewDetector(DefaultRules())
	if err != nil {
		// ALLOW-PANIC: the built-in rule library is static and covered by tests
		panic(fmt.Sprintf("invalid built-in misconception rules: %v", err))
	}
	return d
}

// Rules returns the rule library in evaluation order.
func (d *Detector) Rules() []Rule {
	out := make([]Rule, len(d.rules))
	copy(out, d.rules)
	return out
}

// Rule looks up a rule by ID.
func (d *Detector) Rule(id string) (Rule, bool) {
	i, ok := d.index[id]
	if !ok {
		return Rule{}, false
	}
	return d.rules[i], true
}

// Evaluate runs every rule against the full history and returns the updated
// flags plus what fired. A firing rule creates its flag with TriggerCount 1
// or increments the existing unresolved flag. Resolved flags are left alone.
// The input slice is not modified.
func (d *Detector) Evaluate(
	flags []domain.MisconceptionFlag,
	attempts []domain.QuestionAttempt,
	now time.Time,
) ([]domain.MisconceptionFlag, []Detection) {
	next := domain.CloneFlags(flags)
	if next == nil {
		next = make([]domain.MisconceptionFlag, 0)
	}
	var detections []Detection

	for _, rule := range d.rules {
		pos := findFlag(next, rule.ID)
		if pos >= 0 && next[pos].Resolved {
			continue
		}
		if !rule.Pattern.Matches(attempts) {
			continue
		}

		if pos < 0 {
			next = append(next, domain.MisconceptionFlag{
				RuleID:       rule.ID,
				DetectedAt:   now,
				TriggerCount: 1,
			})
			pos = len(next) - 1
		} else {
			next[pos].TriggerCount++
		}

		detections = append(detections, Detection{
			RuleID:       rule.ID,
			TriggerCount: next[pos].TriggerCount,
			BecameActive: next[pos].TriggerCount == rule.MinTriggerCount,
		})
	}

	return next, detections
}

// Resolve marks the rule's flag as resolved. It reports false, and returns
// the flags unchanged, when the flag is absent or already resolved.
func (d *Detector) Resolve(
	flags []domain.MisconceptionFlag,
	ruleID string,
	now time.Time,
) ([]domain.MisconceptionFlag, bool) {
	pos := findFlag(flags, ruleID)
	if pos < 0 || flags[pos].Resolved {
		return flags, false
	}
	next := domain.CloneFlags(flags)
	resolvedAt := now
	next[pos].Resolved = true
	next[pos].ResolvedAt = &resolvedAt
	return next, true
}

// Active returns the unresolved flags that reached their rule's
// MinTriggerCount, in detection order. Flags for rules no longer in the
// library are skipped.
func (d *Detector) Active(flags []domain.MisconceptionFlag) []ActiveMisconception {
	active := make([]ActiveMisconception, 0)
	for _, f := range flags {
		if f.Resolved {
			continue
		}
		rule, ok := d.Rule(f.RuleID)
		if !ok || f.TriggerCount < rule.MinTriggerCount {
			continue
		}
		active = append(active, ActiveMisconception{
			RuleID:                rule.ID,
			Title:                 rule.Title,
			Description:           rule.Description,
			UserMessage:           rule.UserMessage,
			RelatedTags:           append([]domain.Tag(nil), rule.RelatedTags...),
			RecommendedLessonSlug: rule.RecommendedLessonSlug,
			TriggerCount:          f.TriggerCount,
			DetectedAt:            f.DetectedAt,
		})
	}
	return active
}

func findFlag(flags []domain.MisconceptionFlag, ruleID string) int {
	for i, f := range flags {
		if f.RuleID == ruleID {
			return i
		}
	}
	return -1
}
