package users

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/dbtest"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Email:        "ada@example.com",
		PasswordHash: "digest",
		FirstName:    "Ada",
		LastName:     "Lovelace",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.IsAdmin)

	byEmail, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", byID.LastName)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Email: "dup@example.com", PasswordHash: "x", FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Email: "dup@example.com", PasswordHash: "y", FirstName: "C", LastName: "D"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))
}

func TestRepositoryUpdateKeepsIdentity(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: "u@example.com", PasswordHash: "x", FirstName: "Old", LastName: "Name"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	updated, err := repo.Update(ctx, created.ID, map[string]any{
		"first_name": "New",
		"id":         uuid.New(),
		"created_at": time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "New", updated.FirstName)
	assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Millisecond)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = repo.Update(ctx, uuid.New(), map[string]any{"first_name": "ghost"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListFindByIDsAndDelete(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()

	a, err := repo.Create(ctx, CreateUserDTO{Email: "a@example.com", PasswordHash: "x", FirstName: "A", LastName: "A"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, CreateUserDTO{Email: "b@example.com", PasswordHash: "x", FirstName: "B", LastName: "B", IsAdmin: true})
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := repo.FindByIDs(ctx, []uuid.UUID{b.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.True(t, some[0].IsAdmin)

	deleted, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUserDTOOmitsPasswordHash(t *testing.T) {
	model := CreateUserDTO{Email: "a@example.com", PasswordHash: "secret-digest", FirstName: "A", LastName: "B"}.ToModel(time.Now())
	raw, err := json.Marshal(NewDTO(model))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-digest")
	assert.NotContains(t, string(raw), "password")
	assert.Contains(t, string(raw), `"first_name":"A"`)
}
