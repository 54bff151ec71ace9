// Package middleware provides the HTTP middleware that attaches trace IDs
// and request loggers and resolves the signed-in user.
package middleware
