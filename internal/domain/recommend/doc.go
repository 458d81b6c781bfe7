// Package recommend turns the learner model into a short, ranked list of
// what to do next.
//
// Candidates come from four sources in fixed order: active misconceptions,
// due reviews, weak or unseen tags, and started lessons. They are ranked by
// priority with a stable sort, deduplicated by target, and cut to a small
// limit. Generation is a pure function of its Input, so the same learner state
// at the same instant always produces the same list, IDs included.
//
// Generated sets are cached in the snapshot as a domain.RecommendationCache.
// Current serves a Valid cache until its TTL passes; any mastery update
// replaces the cache with the Invalid state, forcing regeneration.
package recommend
