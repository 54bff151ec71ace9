package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/platform/logger"
	"github.com/phrazzld/grams-api/internal/store"
)

const gramColumns = `id, user_id, message, created_at, updated_at`

// PostgresGramStore implements store.GramStore on PostgreSQL.
type PostgresGramStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.GramStore = (*PostgresGramStore)(nil)

// NewPostgresGramStore creates a gram store over db.
// If logger is nil, a default logger will be used.
func NewPostgresGramStore(db store.DBTX, logger *slog.Logger) *PostgresGramStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGramStore{
		db:     db,
		logger: logger.With(slog.String("component", "gram_store")),
	}
}

// WithTx implements store.GramStore.WithTx.
func (s *PostgresGramStore) WithTx(tx *sql.Tx) store.GramStore {
	return &PostgresGramStore{db: tx, logger: s.logger}
}

// Create implements store.GramStore.Create.
func (s *PostgresGramStore) Create(ctx context.Context, gram *domain.Gram) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := gram.Validate(); err != nil {
		log.Debug("gram validation failed", slog.String("error", err.Error()))
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO grams (`+gramColumns+`)
		VALUES ($1, $2, $3, $4, $5)`,
		gram.ID, gram.UserID, gram.Message, gram.CreatedAt, gram.UpdatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("gram owner does not exist",
				slog.String("gram_id", gram.ID.String()),
				slog.String("user_id", gram.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found", store.ErrInvalidEntity, gram.UserID)
		}
		log.Error("failed to create gram",
			slog.String("error", err.Error()),
			slog.String("gram_id", gram.ID.String()))
		return store.NewStoreError("gram", "create", "insert failed", MapError(err))
	}

	log.Info("gram created",
		slog.String("gram_id", gram.ID.String()),
		slog.String("user_id", gram.UserID.String()))
	return nil
}

// GetByID implements store.GramStore.GetByID.
func (s *PostgresGramStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Gram, error) {
	return s.getOne(ctx, `SELECT `+gramColumns+` FROM grams WHERE id = $1`, id)
}

// GetByIDForUpdate implements store.GramStore.GetByIDForUpdate.
func (s *PostgresGramStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Gram, error) {
	return s.getOne(ctx, `SELECT `+gramColumns+` FROM grams WHERE id = $1 FOR UPDATE`, id)
}

func (s *PostgresGramStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.Gram, error) {
	var g domain.Gram
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&g.ID, &g.UserID, &g.Message, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGramNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load gram",
			slog.String("error", err.Error()),
			slog.String("gram_id", id.String()))
		return nil, store.NewStoreError("gram", "get", "query failed", MapError(err))
	}
	return &g, nil
}

// List implements store.GramStore.List.
func (s *PostgresGramStore) List(ctx context.Context, limit, offset int) ([]*domain.Gram, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+gramColumns+`
		FROM grams
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		log.Error("failed to list grams", slog.String("error", err.Error()))
		return nil, store.NewStoreError("gram", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	grams := []*domain.Gram{}
	for rows.Next() {
		var g domain.Gram
		if err := rows.Scan(&g.ID, &g.UserID, &g.Message, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, store.NewStoreError("gram", "list", "scan failed", err)
		}
		grams = append(grams, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("gram", "list", "iteration failed", err)
	}
	return grams, nil
}

// Count implements store.GramStore.Count.
func (s *PostgresGramStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grams`).Scan(&n); err != nil {
		return 0, store.NewStoreError("gram", "count", "query failed", MapError(err))
	}
	return n, nil
}

// Update implements store.GramStore.Update.
func (s *PostgresGramStore) Update(ctx context.Context, gram *domain.Gram) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := gram.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE grams SET message = $1, updated_at = $2
		WHERE id = $3`,
		gram.Message, gram.UpdatedAt, gram.ID)
	if err != nil {
		log.Error("failed to update gram",
			slog.String("error", err.Error()),
			slog.String("gram_id", gram.ID.String()))
		return store.NewStoreError("gram", "update", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrGramNotFound); err != nil {
		return err
	}

	log.Debug("gram updated", slog.String("gram_id", gram.ID.String()))
	return nil
}
