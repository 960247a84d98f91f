// Package api is the client for the vocabulary service's HTTP contract.
//
// A Client is constructed once per process with a base URL and optional
// transport, timeout, logger and token issuer. Each exported method maps to
// one logical operation on the username-scoped routes and returns either the
// decoded result or an *Error whose Kind is ErrCommunication, ErrServer,
// ErrNotFound or ErrValidation. Failures are logged with the operation name
// and always returned to the caller.
package api
