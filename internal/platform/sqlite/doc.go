// Package sqlite provides the durable implementation of store.Store on top of
// an embedded SQLite database (modernc.org/sqlite, no cgo). The schema is
// managed with goose migrations embedded in the binary and applied on Open.
package sqlite
