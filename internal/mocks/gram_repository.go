package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/service"
	"github.com/phrazzld/grams-api/internal/store"
)

// MockGramRepository is an in-memory service.GramRepository. Stored grams
// are copied on the way in and out, so callers never alias stored state.
// Owners are not checked unless Users is set.
type MockGramRepository struct {
	CreateFn func(ctx context.Context, gram *domain.Gram) error
	UpdateFn func(ctx context.Context, gram *domain.Gram) error
	ListFn   func(ctx context.Context, limit, offset int) ([]*domain.Gram, error)

	// Users, when set, rejects grams whose owner it does not know.
	Users store.UserStore

	// TxCount counts RunInTransaction calls.
	TxCount int

	txMu  sync.Mutex
	mu    sync.Mutex
	grams map[uuid.UUID]domain.Gram
}

var _ service.GramRepository = (*MockGramRepository)(nil)

// NewMockGramRepository creates an empty repository.
func NewMockGramRepository() *MockGramRepository {
	return &MockGramRepository{grams: make(map[uuid.UUID]domain.Gram)}
}

func (m *MockGramRepository) Create(ctx context.Context, gram *domain.Gram) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, gram)
	}
	if err := gram.Validate(); err != nil {
		return err
	}
	if m.Users != nil {
		if _, err := m.Users.GetByID(ctx, gram.UserID); err != nil {
			return store.ErrInvalidEntity
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.grams[gram.ID]; exists {
		return store.ErrDuplicate
	}
	m.grams[gram.ID] = *gram
	return nil
}

func (m *MockGramRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Gram, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.grams[id]
	if !ok {
		return nil, store.ErrGramNotFound
	}
	return &g, nil
}

func (m *MockGramRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gram, error) {
	return m.GetByID(ctx, id)
}

func (m *MockGramRepository) List(ctx context.Context, limit, offset int) ([]*domain.Gram, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, limit, offset)
	}

	all := m.All()
	grams := []*domain.Gram{}
	for i := offset; i < len(all) && len(grams) < limit; i++ {
		grams = append(grams, all[i])
	}
	return grams, nil
}

func (m *MockGramRepository) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.grams), nil
}

func (m *MockGramRepository) Update(ctx context.Context, gram *domain.Gram) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, gram)
	}
	if err := gram.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.grams[gram.ID]; !ok {
		return store.ErrGramNotFound
	}
	m.grams[gram.ID] = *gram
	return nil
}

// RunInTransaction serializes fn against other transactions and restores
// the previous contents when fn fails.
func (m *MockGramRepository) RunInTransaction(
	ctx context.Context,
	fn func(ctx context.Context, repo service.GramRepository) error,
) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.TxCount++
	snapshot := make(map[uuid.UUID]domain.Gram, len(m.grams))
	for id, g := range m.grams {
		snapshot[id] = g
	}
	m.mu.Unlock()

	if err := fn(ctx, m); err != nil {
		m.mu.Lock()
		m.grams = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// Put stores gram directly, bypassing validation.
func (m *MockGramRepository) Put(gram *domain.Gram) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grams[gram.ID] = *gram
}

// All returns every stored gram, newest first.
func (m *MockGramRepository) All() []*domain.Gram {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Gram, 0, len(m.grams))
	for _, g := range m.grams {
		g := g
		out = append(out, &g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
