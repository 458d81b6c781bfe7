// Package domain contains the learner-model entities of the application:
// the tag taxonomy, per-tag statistics, the answer history, misconception
// flags, recommendations and the progress snapshot that carries them.
// It is independent of any storage or delivery mechanism.
package domain
