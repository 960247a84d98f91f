// Package domain contains the value types the vocabulary client works with:
// identities, due items, word details, grades and statistics. Scheduling
// metadata is owned by the server; these types only mirror what it returns.
package domain
