//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/domain"
	"github.com/phrazzld/grams-api/internal/platform/postgres"
	"github.com/phrazzld/grams-api/internal/store"
	"github.com/phrazzld/grams-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func createUser(t *testing.T, ctx context.Context, tx *sql.Tx, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "secretPassword")
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil).Create(ctx, user))
	return user
}

func TestIntegration_UserStore(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)
		user := createUser(t, ctx, tx, "Integration@Example.com")

		byEmail, err := users.GetByEmail(ctx, "integration@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(byEmail.HashedPassword), []byte("secretPassword")))

		_, err = users.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		createUser(t, ctx, tx, "dupe@example.com")

		dupe, err := domain.NewUser("dupe@example.com", "otherPassword")
		require.NoError(t, err)
		err = postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil).Create(ctx, dupe)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestIntegration_GramStore(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		grams := postgres.NewPostgresGramStore(tx, nil)
		owner := createUser(t, ctx, tx, "owner@example.com")

		older, err := domain.NewGram(owner.ID, "older")
		require.NoError(t, err)
		older.CreatedAt = older.CreatedAt.Add(-time.Hour)
		require.NoError(t, grams.Create(ctx, older))

		newer, err := domain.NewGram(owner.ID, "newer")
		require.NoError(t, err)
		require.NoError(t, grams.Create(ctx, newer))

		count, err := grams.Count(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, 2)

		page, err := grams.List(ctx, 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.True(t, !page[0].CreatedAt.Before(page[1].CreatedAt))

		locked, err := grams.GetByIDForUpdate(ctx, older.ID)
		require.NoError(t, err)
		require.NoError(t, locked.UpdateMessage("Changed value"))
		require.NoError(t, grams.Update(ctx, locked))

		reloaded, err := grams.GetByID(ctx, older.ID)
		require.NoError(t, err)
		assert.Equal(t, "Changed value", reloaded.Message)
	})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		orphan, err := domain.NewGram(uuid.New(), "Hello!")
		require.NoError(t, err)
		err = postgres.NewPostgresGramStore(tx, nil).Create(ctx, orphan)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestIntegration_WithTxIsolation(t *testing.T) {
	db := testdb.GetTestDBWithT(t)
	ctx := context.Background()

	var gramID uuid.UUID
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		owner := createUser(t, ctx, tx, "rollback@example.com")
		gram, err := domain.NewGram(owner.ID, "Initial value")
		require.NoError(t, err)
		require.NoError(t, postgres.NewPostgresGramStore(tx, nil).Create(ctx, gram))
		gramID = gram.ID
	})

	// The outer transaction was rolled back, so nothing leaked.
	_, err := postgres.NewPostgresGramStore(db, nil).GetByID(ctx, gramID)
	assert.ErrorIs(t, err, store.ErrGramNotFound)
}
