package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/grams-api/internal/store"
)

// GramRepositoryAdapter adapts a store.GramStore and the *sql.DB it runs on
// to GramRepository.
type GramRepositoryAdapter struct {
	store.GramStore
	db *sql.DB
}

var _ GramRepository = (*GramRepositoryAdapter)(nil)

// NewGramRepositoryAdapter panics if either argument is nil.
func NewGramRepositoryAdapter(gramStore store.GramStore, db *sql.DB) *GramRepositoryAdapter {
	if gramStore == nil {
		panic("gram store cannot be nil")
	}
	if db == nil {
		panic("db cannot be nil")
	}
	return &GramRepositoryAdapter{GramStore: gramStore, db: db}
}

// RunInTransaction implements GramRepository.RunInTransaction on top of
// store.RunInTransaction.
func (a *GramRepositoryAdapter) RunInTransaction(
	ctx context.Context,
	fn func(ctx context.Context, repo GramRepository) error,
) error {
	return store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &GramRepositoryAdapter{GramStore: a.GramStore.WithTx(tx), db: a.db})
	})
}
