package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/platform/logger"
)

// Paging bounds for ListGrams.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// GramRepository is the persistence surface GramService depends on.
type GramRepository interface {
	Create(ctx context.Context, gram *domain.Gram) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Gram, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gram, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Gram, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, gram *domain.Gram) error

	// RunInTransaction calls fn with a repository bound to a single
	// transaction, committing when fn returns nil.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context, repo GramRepository) error) error
}

// GramService provides the gram use cases behind the HTTP controllers.
type GramService interface {
	// ListGrams returns one page of grams, newest first, and the total count.
	ListGrams(ctx context.Context, limit, offset int) ([]*domain.Gram, int, error)

	// GetGram returns ErrGramNotFound when id does not exist.
	GetGram(ctx context.Context, id uuid.UUID) (*domain.Gram, error)

	// CreateGram stores a new gram owned by userID. Invalid input returns
	// domain.ValidationErrors and nothing is stored.
	CreateGram(ctx context.Context, userID uuid.UUID, message string) (*domain.Gram, error)

	// UpdateGram replaces the message of an existing gram. ErrGramNotFound
	// is reported before any validation error.
	UpdateGram(ctx context.Context, id uuid.UUID, message string) (*domain.Gram, error)
}

type gramServiceImpl struct {
	repo   GramRepository
	logger *slog.Logger
}

// NewGramService creates a GramService. It panics if repo is nil.
func NewGramService(repo GramRepository, logger *slog.Logger) GramService {
	if repo == nil {
		panic("gram repository cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &gramServiceImpl{
		repo:   repo,
		logger: logger.With(slog.String("component", "gram_service")),
	}
}

// NormalizePage applies the default and maximum page size and clamps a
// negative offset to zero.
func NormalizePage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *gramServiceImpl) ListGrams(ctx context.Context, limit, offset int) ([]*domain.Gram, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	limit, offset = NormalizePage(limit, offset)

	grams, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		log.Error("failed to list grams", slog.String("error", err.Error()))
		return nil, 0, NewServiceError("gram", "list", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		log.Error("failed to count grams", slog.String("error", err.Error()))
		return nil, 0, NewServiceError("gram", "count", err)
	}
	return grams, total, nil
}

func (s *gramServiceImpl) GetGram(ctx context.Context, id uuid.UUID) (*domain.Gram, error) {
	gram, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("gram", "get", err)
	}
	return gram, nil
}

func (s *gramServiceImpl) CreateGram(ctx context.Context, userID uuid.UUID, message string) (*domain.Gram, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	gram, err := domain.NewGram(userID, message)
	if err != nil {
		log.Debug("rejected invalid gram", slog.String("error", err.Error()))
		return nil, NewServiceError("gram", "create", err)
	}

	if err := s.repo.Create(ctx, gram); err != nil {
		err = NewServiceError("gram", "create", err)
		if !errors.Is(err, ErrOwnerMissing) {
			log.Error("failed to create gram", slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("gram created",
		slog.String("gram_id", gram.ID.String()),
		slog.String("user_id", userID.String()))
	return gram, nil
}

func (s *gramServiceImpl) UpdateGram(ctx context.Context, id uuid.UUID, message string) (*domain.Gram, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Gram
	err := s.repo.RunInTransaction(ctx, func(ctx context.Context, repo GramRepository) error {
		gram, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := gram.UpdateMessage(message); err != nil {
			return err
		}
		if err := repo.Update(ctx, gram); err != nil {
			return err
		}
		updated = gram
		return nil
	})
	if err != nil {
		err = NewServiceError("gram", "update", err)
		var se *ServiceError
		if errors.As(err, &se) {
			log.Error("failed to update gram",
				slog.String("error", err.Error()),
				slog.String("gram_id", id.String()))
		}
		return nil, err
	}

	log.Info("gram updated", slog.String("gram_id", id.String()))
	return updated, nil
}
