// Package service holds the learning service, the single entry point the HTTP
// API and the CLI use to read and change a learner's progress.
//
// Every change follows the same cycle: load the stored snapshot, migrate it,
// apply one pure engine transition, encode it and write it back with the
// revision it was read at. A write that loses the revision race is retried
// from a fresh read. Events are emitted only after the write succeeds.
package service
