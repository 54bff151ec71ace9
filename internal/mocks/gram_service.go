package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/service"
)

// MockGramService implements service.GramService. Each method returns the
// zero value unless its function field is set.
type MockGramService struct {
	ListGramsFn  func(ctx context.Context, limit, offset int) ([]*domain.Gram, int, error)
	GetGramFn    func(ctx context.Context, id uuid.UUID) (*domain.Gram, error)
	CreateGramFn func(ctx context.Context, userID uuid.UUID, message string) (*domain.Gram, error)
	UpdateGramFn func(ctx context.Context, id uuid.UUID, message string) (*domain.Gram, error)
}

var _ service.GramService = (*MockGramService)(nil)

func (m *MockGramService) ListGrams(ctx context.Context, limit, offset int) ([]*domain.Gram, int, error) {
	if m.ListGramsFn != nil {
		return m.ListGramsFn(ctx, limit, offset)
	}
	return []*domain.Gram{}, 0, nil
}

func (m *MockGramService) GetGram(ctx context.Context, id uuid.UUID) (*domain.Gram, error) {
	if m.GetGramFn != nil {
		return m.GetGramFn(ctx, id)
	}
	return nil, service.ErrGramNotFound
}

func (m *MockGramService) CreateGram(ctx context.Context, userID uuid.UUID, message string) (*domain.Gram, error) {
	if m.CreateGramFn != nil {
		return m.CreateGramFn(ctx, userID, message)
	}
	return domain.NewGram(userID, message)
}

func (m *MockGramService) UpdateGram(ctx context.Context, id uuid.UUID, message string) (*domain.Gram, error) {
	if m.UpdateGramFn != nil {
		return m.UpdateGramFn(ctx, id, message)
	}
	return nil, service.ErrGramNotFound
}
