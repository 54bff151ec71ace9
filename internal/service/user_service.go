package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/platform/logger"
	"github.com/phrazzld/grams-api/internal/store"
)

// UserService provides account operations for registration and sign-in.
type UserService interface {
	// CreateUser registers a new account. Returns domain.ValidationErrors
	// for bad input and ErrEmailTaken when the email is already registered.
	CreateUser(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	logger    *slog.Logger
}

// NewUserService creates a new UserService. It panics if userStore is nil.
func NewUserService(userStore store.UserStore, logger *slog.Logger) *UserServiceImpl {
	if userStore == nil {
		panic("user store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

var _ UserService = (*UserServiceImpl)(nil)

// CreateUser registers a new account.
func (s *UserServiceImpl) CreateUser(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		log.Debug("rejected invalid registration", slog.String("error", err.Error()))
		return nil, NewServiceError("user", "create", err)
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		err = NewServiceError("user", "create", err)
		if errors.Is(err, ErrEmailTaken) {
			log.Debug("attempted to register existing email")
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupError(ctx, err, slog.String("user_id", userID.String()))
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *UserServiceImpl) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.lookupError(ctx, err)
	}
	return user, nil
}

func (s *UserServiceImpl) lookupError(ctx context.Context, err error, attrs ...any) error {
	err = NewServiceError("user", "get", err)
	if !errors.Is(err, ErrUserNotFound) {
		logger.FromContextOrDefault(ctx, s.logger).
			Error("failed to retrieve user", append(attrs, slog.String("error", err.Error()))...)
	}
	return err
}
