// Package badger provides the embedded BadgerDB progress store, the default
// backend for a learner's local installation.
package badger
