// Package mastery implements per-tag skill tracking and spaced review
// scheduling.
//
// The update rule moves a tag's mastery by a fixed delta scaled by question
// difficulty and clamps it to [0,1]. Each update also picks the next review
// date from the answer outcome and the resulting mastery. The scheduler
// functions in this package are pure reads over a domain.TagStats map.
package mastery
