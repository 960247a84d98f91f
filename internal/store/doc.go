// Package store defines the local persistence contract of the client: a small
// key/value store with three logical slots (current identity, due-word
// snapshot, last sync time). Implementations live under internal/platform.
package store
