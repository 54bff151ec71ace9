// Package service contains the application use cases for grams and users.
// Services coordinate domain validation with the repositories defined in
// internal/store and translate store errors into the service sentinels the
// API layer understands.
//
// Services never depend on a concrete database implementation; the only
// database handle they see is the one hidden behind GramRepository's
// transaction hook.
package service
