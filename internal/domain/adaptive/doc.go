// Package adaptive implements the learner-model snapshot transitions.
//
// An Engine wires the mastery tracker, the misconception detector and the
// recommendation generator together. Each operation reads a progress
// snapshot and returns a complete new snapshot, so the statistics update,
// history append, flag evaluation and cache invalidation of one answer are
// observed together or not at all. Persistence is left to the caller.
package adaptive
