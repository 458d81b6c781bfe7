// Package events carries learner state change notifications
// (mastery.updated, misconception.detected, misconception.resolved) from the
// learning service to any registered handlers.
//
// The primary components are:
// - Event: a typed notification with a JSON payload
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
