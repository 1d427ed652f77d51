package database_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"snake-backend/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	db := createDB(t)
	ctx := context.Background()

	user, err := database.CreateUser(ctx, db, " Alice@Example.com ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = database.CreateUser(ctx, db, "alice@example.com", "other")
	assert.ErrorIs(t, err, database.ErrEmailTaken)

	found, err := database.FindUserByEmail(ctx, db, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Id, found.Id)

	_, err = database.FindUserByEmail(ctx, db, "bob@example.com")
	assert.ErrorIs(t, err, database.ErrUserNotFound)
}

func TestUpdatePasswordHash(t *testing.T) {
	db := createDB(t)
	ctx := context.Background()

	user, err := database.CreateUser(ctx, db, "alice@example.com", "old")
	require.NoError(t, err)

	require.NoError(t, database.UpdatePasswordHash(ctx, db, user.Id, "new"))

	found, err := database.FindUserByEmail(ctx, db, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "new", found.PasswordHash)

	assert.ErrorIs(t, database.UpdatePasswordHash(ctx, db, uuid.New(), "x"), database.ErrUserNotFound)
}

func TestCreateUserConcurrentDuplicates(t *testing.T) {
	db := createDB(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := database.CreateUser(ctx, db, "race@example.com", "hash")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errors.Is(err, database.ErrEmailTaken), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)
}
