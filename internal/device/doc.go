// Package device implements the per-device binding engine and mode
// sequencer.
//
// A Device declares console and uploader slots, each with match
// criteria, and a set of named modes, each a sequence of actuator
// steps with its own match criteria. Run drives one long-lived
// goroutine per device that binds slots to registry entries as they
// appear and unbinds them as they disappear; SetMode drives a device
// through one mode's actuator sequence, serialised against other
// SetMode calls by a single per-device lock held for the whole
// transition. Run does not take that lock.
//
// Binding is first-match-wins and permanent: once a slot is bound to
// an id it stays bound until that id is unregistered, even if a later
// registration would also match. Unbinding never triggers a rescan —
// only a fresh Added event can fill a freed slot.
package device
