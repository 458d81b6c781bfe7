package domain

import "time"

// MisconceptionFlag is the persisted detection state for one rule.
// There is at most one flag per rule.
type MisconceptionFlag struct {
	RuleID       string     `json:"ruleId"`
	DetectedAt   time.Time  `json:"detectedAt"`
	TriggerCount int        `json:"triggerCount"`
	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// CloneFlags returns a deep copy of the flags.
func CloneFlags(flags []MisconceptionFlag) []MisconceptionFlag {
	if flags == nil {
		return nil
	}
	out := make([]MisconceptionFlag, len(flags))
	for i, f := range flags {
		f.ResolvedAt = cloneTime(f.ResolvedAt)
		out[i] = f
	}
	return out
}
