package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/domain"
)

// GramStore defines the interface for gram data persistence.
type GramStore interface {
	// Create validates and saves a new gram.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, gram *domain.Gram) error

	// GetByID retrieves a gram by its unique ID.
	// Returns ErrGramNotFound if the gram does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Gram, error)

	// GetByIDForUpdate is GetByID with a row lock held until the surrounding
	// transaction ends. Only meaningful on a store returned by WithTx.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gram, error)

	// List returns grams newest first. An empty page is an empty slice, never nil.
	List(ctx context.Context, limit, offset int) ([]*domain.Gram, error)

	// Count returns the total number of grams.
	Count(ctx context.Context) (int, error)

	// Update saves the message and UpdatedAt of an existing gram.
	// Returns ErrGramNotFound if no row matched.
	Update(ctx context.Context, gram *domain.Gram) error

	// WithTx returns a GramStore bound to tx.
	WithTx(tx *sql.Tx) GramStore
}
