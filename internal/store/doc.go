// Package store defines the persistence interfaces for users and grams,
// the error taxonomy shared by every implementation, and the transaction
// helper services use to group operations.
package store
