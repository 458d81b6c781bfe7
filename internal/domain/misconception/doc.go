// Package misconception detects recurring error patterns in a learner's
// answer history and tracks the resulting flags.
//
// Rules are static data. A Detector evaluates every rule after each recorded
// answer, creating or incrementing a MisconceptionFlag when a rule fires. A
// flag is active once its trigger count reaches the rule's MinTriggerCount
// and stays active until the learner resolves it. Resolution is permanent:
// resolved flags are never incremented or re-created.
package misconception
