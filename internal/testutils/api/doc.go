// Package api provides an in-process fake of the vocabulary service for
// tests. It serves the username-scoped contract on chi behind an
// httptest.Server, keeps its state in memory, counts calls per route and can
// inject failures, delays and held responses per route.
//
// The cookie-session routes (/auth/me, /user) are mounted only to count
// calls; they always answer 401.
package api
