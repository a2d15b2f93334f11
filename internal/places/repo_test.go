package places

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/pkg/db/dbtest"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

func seedAmenity(t *testing.T, conn *gorm.DB, name string) models.Amenity {
	t.Helper()
	a := models.Amenity{Base: models.NewBase(time.Now()), Name: name}
	require.NoError(t, conn.Create(&a).Error)
	return a
}

func newPlace(owner uuid.UUID, title string) *models.Place {
	return &models.Place{
		Title:     title,
		Price:     decimal.RequireFromString("99.90"),
		Latitude:  10,
		Longitude: 20,
		OwnerID:   owner,
	}
}

func TestRepositoryCRUD(t *testing.T) {
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)
	ctx := context.Background()
	owner := uuid.New()

	place := newPlace(owner, "Loft")
	require.NoError(t, repo.Create(ctx, place))
	require.NotEqual(t, uuid.Nil, place.ID)
	assert.False(t, place.CreatedAt.IsZero())

	got, err := repo.FindByID(ctx, place.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("99.90").Equal(got.Price))
	assert.Nil(t, got.Description)

	updated, err := repo.Update(ctx, place.ID, map[string]any{"price": decimal.NewFromInt(150), "latitude": -45.5})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(updated.Price))
	assert.Equal(t, -45.5, updated.Latitude)
	assert.Equal(t, owner, updated.OwnerID)

	ids, err := repo.IDsByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{place.ID}, ids)

	deleted, err := repo.Delete(ctx, place.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.FindByID(ctx, place.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryAmenityLinks(t *testing.T) {
	conn := dbtest.Open(t).DB()
	repo := NewRepository(conn)
	ctx := context.Background()

	wifi := seedAmenity(t, conn, "Wi-Fi")
	pool := seedAmenity(t, conn, "Pool")
	sauna := seedAmenity(t, conn, "Sauna")

	first := newPlace(uuid.New(), "First")
	second := newPlace(uuid.New(), "Second")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.ReplaceAmenities(ctx, first.ID, []uuid.UUID{wifi.ID, pool.ID}))
	require.NoError(t, repo.ReplaceAmenities(ctx, second.ID, []uuid.UUID{wifi.ID}))

	linked, err := repo.AmenitiesFor(ctx, []uuid.UUID{first.ID, second.ID})
	require.NoError(t, err)
	require.Len(t, linked[first.ID], 2)
	assert.Equal(t, "Pool", linked[first.ID][0].Name)
	assert.Equal(t, "Wi-Fi", linked[first.ID][1].Name)
	require.Len(t, linked[second.ID], 1)

	require.NoError(t, repo.ReplaceAmenities(ctx, first.ID, []uuid.UUID{sauna.ID}))
	linked, err = repo.AmenitiesFor(ctx, []uuid.UUID{first.ID})
	require.NoError(t, err)
	require.Len(t, linked[first.ID], 1)
	assert.Equal(t, sauna.ID, linked[first.ID][0].ID)

	n, err := repo.DetachAmenity(ctx, wifi.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	linked, err = repo.AmenitiesFor(ctx, []uuid.UUID{second.ID})
	require.NoError(t, err)
	assert.Empty(t, linked[second.ID])

	n, err = repo.DeleteAmenityLinks(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepositoryDeleteByOwner(t *testing.T) {
	repo := NewRepository(dbtest.Open(t).DB())
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, repo.Create(ctx, newPlace(owner, "A")))
	require.NoError(t, repo.Create(ctx, newPlace(owner, "B")))
	keep := newPlace(uuid.New(), "C")
	require.NoError(t, repo.Create(ctx, keep))

	n, err := repo.DeleteByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	remaining, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)
}

func TestNewDTONestsReferences(t *testing.T) {
	owner := &models.User{Base: models.NewBase(time.Now()), FirstName: "Ada", LastName: "L", Email: "ada@x.com", PasswordHash: "digest"}
	place := newPlace(owner.ID, "Loft")
	place.Base = models.NewBase(time.Now())
	amenity := models.Amenity{Base: models.NewBase(time.Now()), Name: "Wi-Fi"}

	dto := NewDTO(place, owner, []models.Amenity{amenity})
	raw, err := json.Marshal(dto)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 99.9, decoded["price"])
	ownerView := decoded["owner"].(map[string]any)
	assert.Equal(t, "ada@x.com", ownerView["email"])
	assert.NotContains(t, string(raw), "digest")
	assert.NotContains(t, decoded, "owner_id")
	amenities := decoded["amenities"].([]any)
	require.Len(t, amenities, 1)
	assert.Equal(t, "Wi-Fi", amenities[0].(map[string]any)["name"])
	assert.Equal(t, []any{}, decoded["reviews"])

	author := uuid.New()
	review := models.Review{Base: models.NewBase(time.Now()), Text: "Cosy", Rating: 4, UserID: author, PlaceID: place.ID}
	raw, err = json.Marshal(dto.WithReviews([]models.Review{review}))
	require.NoError(t, err)
	decoded = nil
	require.NoError(t, json.Unmarshal(raw, &decoded))
	reviews := decoded["reviews"].([]any)
	require.Len(t, reviews, 1)
	nested := reviews[0].(map[string]any)
	assert.Equal(t, "Cosy", nested["text"])
	assert.Equal(t, 4.0, nested["rating"])
	assert.Equal(t, author.String(), nested["user_id"])
	assert.NotContains(t, nested, "place_id")
}
