// Package events carries "data changed" signals between components.
//
// The review engine and the word service emit events when user data changes
// on the server; the refresh coordinator listens and re-fetches stats. Emitters
// never know who is listening, which keeps the services free of references to
// each other.
//
// The primary components are:
//   - Event: a typed, timestamped signal with a JSON payload
//   - EventHandler: implemented by listeners
//   - EventEmitter: implemented by InMemoryEventEmitter
package events
