// Package registry provides a generic, concurrency-safe collection of
// named, matchable resources with a lossy change-monitoring feed.
//
// # Ownership
//
// Unlike the reference implementation's Arc<dyn Trait> resource handles,
// a Go caller that has obtained an Item value via Lookup, FindByName or
// Find holds a normal Go value (typically an interface wrapping a
// pointer); the garbage collector keeps it alive for as long as that
// value is reachable, independent of whether the registry still has the
// entry in its map. No explicit reference counting is needed to keep a
// long-running operation's resource alive past its unregistration — see
// DESIGN.md for the full discussion.
package registry
