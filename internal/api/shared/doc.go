// Package shared holds the request-scoped values, session cookie helpers
// and JSON response writers used by both the api handlers and their
// middleware.
package shared
