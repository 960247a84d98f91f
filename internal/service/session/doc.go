// Package session owns the client's belief about who is logged in.
//
// The Manager reconciles the identity persisted in the local store with the
// server at startup, resolves-or-creates users on login, and always ends in
// the Unauthenticated state on logout whatever the server says.
package session
