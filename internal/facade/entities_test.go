package facade

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-dev/hbnb-backend/internal/policy"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

func TestCreatePlaceRequiresAuthentication(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.facade.CreatePlace(context.Background(), policy.Anonymous(), CreatePlaceInput{Title: "x", Price: decimal.NewFromInt(1)})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestCreatePlaceOwnerClaims(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	alice, aliceP := fx.user(t, "alice@hbnb.io")
	bob, _ := fx.user(t, "bob@hbnb.io")

	_, err := fx.facade.CreatePlace(ctx, aliceP, CreatePlaceInput{Title: "Loft", Price: decimal.NewFromInt(10), OwnerID: &bob.ID})
	requireCode(t, err, pkgerrors.CodeForbidden)

	own, err := fx.facade.CreatePlace(ctx, aliceP, CreatePlaceInput{Title: "Loft", Price: decimal.NewFromInt(10), OwnerID: &alice.ID})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, own.Owner.ID)

	delegated, err := fx.facade.CreatePlace(ctx, fx.admin, CreatePlaceInput{Title: "Barn", Price: decimal.NewFromInt(10), OwnerID: &bob.ID})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, delegated.Owner.ID)
}

func TestCreatePlaceWithUnknownReferencesWritesNothing(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, aliceP := fx.user(t, "alice@hbnb.io")

	ghost := uuid.New()
	_, err := fx.facade.CreatePlace(ctx, fx.admin, CreatePlaceInput{Title: "Ghost", Price: decimal.NewFromInt(1), OwnerID: &ghost})
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = fx.facade.CreatePlace(ctx, aliceP, CreatePlaceInput{Title: "Ghost", Price: decimal.NewFromInt(1), OwnerID: &ghost})
	requireCode(t, err, pkgerrors.CodeForbidden)

	wifi, err := fx.facade.CreateAmenity(ctx, aliceP, CreateAmenityInput{Name: "Wifi"})
	require.NoError(t, err)
	_, err = fx.facade.CreatePlace(ctx, aliceP, CreatePlaceInput{
		Title:      "Half",
		Price:      decimal.NewFromInt(1),
		AmenityIDs: []uuid.UUID{wifi.ID, uuid.New()},
	})
	requireCode(t, err, pkgerrors.CodeNotFound)

	assert.Zero(t, count(t, fx.client, "places"))
	assert.Zero(t, count(t, fx.client, "place_amenity"))
}

func TestCreatePlaceValidation(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, p := fx.user(t, "alice@hbnb.io")

	cases := map[string]CreatePlaceInput{
		"latitude":  {Title: "a", Price: decimal.NewFromInt(1), Latitude: 91},
		"longitude": {Title: "a", Price: decimal.NewFromInt(1), Longitude: -180.5},
		"nan":       {Title: "a", Price: decimal.NewFromInt(1), Latitude: math.NaN()},
		"price":     {Title: "a", Price: decimal.NewFromInt(-1)},
		"title":     {Title: "   ", Price: decimal.NewFromInt(1)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fx.facade.CreatePlace(ctx, p, in)
			requireCode(t, err, pkgerrors.CodeValidation)
		})
	}
	assert.Zero(t, count(t, fx.client, "places"))
}

func TestCreatePlaceRoundsPriceAndSortsAmenities(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, p := fx.user(t, "alice@hbnb.io")

	pool, err := fx.facade.CreateAmenity(ctx, p, CreateAmenityInput{Name: "Pool"})
	require.NoError(t, err)
	ac, err := fx.facade.CreateAmenity(ctx, p, CreateAmenityInput{Name: "Air conditioning"})
	require.NoError(t, err)

	place, err := fx.facade.CreatePlace(ctx, p, CreatePlaceInput{
		Title:      "  Villa  ",
		Price:      decimal.RequireFromString("99.999"),
		AmenityIDs: []uuid.UUID{pool.ID, ac.ID, pool.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Villa", place.Title)
	assert.Equal(t, 100.0, place.Price)
	require.Len(t, place.Amenities, 2)
	assert.Equal(t, "Air conditioning", place.Amenities[0].Name)
	assert.Equal(t, "Pool", place.Amenities[1].Name)
}

func TestUpdatePlaceOwnership(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, owner := fx.user(t, "owner@hbnb.io")
	_, stranger := fx.user(t, "stranger@hbnb.io")
	place := fx.place(t, owner)

	title := "Renamed"
	_, err := fx.facade.UpdatePlace(ctx, stranger, place.ID, UpdatePlaceInput{Title: &title})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = fx.facade.UpdatePlace(ctx, policy.Anonymous(), place.ID, UpdatePlaceInput{Title: &title})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	updated, err := fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	byAdmin := "Admin touched"
	updated, err = fx.facade.UpdatePlace(ctx, fx.admin, place.ID, UpdatePlaceInput{Title: &byAdmin})
	require.NoError(t, err)
	assert.Equal(t, "Admin touched", updated.Title)

	_, err = fx.facade.UpdatePlace(ctx, owner, uuid.New(), UpdatePlaceInput{Title: &title})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdatePlaceRejectsInvalidMerge(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, owner := fx.user(t, "owner@hbnb.io")
	place := fx.place(t, owner)

	lat := -90.01
	_, err := fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{Latitude: &lat})
	requireCode(t, err, pkgerrors.CodeValidation)

	for _, lng := range []float64{180.01, -180.01} {
		lng := lng
		_, err = fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{Longitude: &lng})
		requireCode(t, err, pkgerrors.CodeValidation)
	}

	negative := decimal.NewFromInt(-5)
	_, err = fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{Price: &negative})
	requireCode(t, err, pkgerrors.CodeValidation)

	stored, err := fx.facade.GetPlace(ctx, policy.Anonymous(), place.ID)
	require.NoError(t, err)
	assert.Equal(t, place.Latitude, stored.Latitude)
	assert.Equal(t, place.Longitude, stored.Longitude)
	assert.Equal(t, place.Price, stored.Price)
}

func TestUpdatePlaceAmenitiesOnlyRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, owner := fx.user(t, "owner@hbnb.io")
	wifi, err := fx.facade.CreateAmenity(ctx, owner, CreateAmenityInput{Name: "Wifi"})
	require.NoError(t, err)
	place := fx.place(t, owner)

	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, fx.client.DB().Table("places").Where("id = ?", place.ID).Update("updated_at", past).Error)

	linked := []uuid.UUID{wifi.ID}
	updated, err := fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{AmenityIDs: &linked})
	require.NoError(t, err)
	require.Len(t, updated.Amenities, 1)
	assert.True(t, updated.UpdatedAt.After(past.Add(30*time.Minute)), "updated_at %s not refreshed", updated.UpdatedAt)
	assert.Equal(t, place.Title, updated.Title)
	assert.Equal(t, place.CreatedAt.Unix(), updated.CreatedAt.Unix())
}

func TestUpdatePlaceReplacesAmenitiesAtomically(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, owner := fx.user(t, "owner@hbnb.io")
	wifi, err := fx.facade.CreateAmenity(ctx, owner, CreateAmenityInput{Name: "Wifi"})
	require.NoError(t, err)
	pool, err := fx.facade.CreateAmenity(ctx, owner, CreateAmenityInput{Name: "Pool"})
	require.NoError(t, err)
	place := fx.place(t, owner, wifi.ID)

	title := "Should not stick"
	broken := []uuid.UUID{pool.ID, uuid.New()}
	_, err = fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{Title: &title, AmenityIDs: &broken})
	requireCode(t, err, pkgerrors.CodeNotFound)

	stored, err := fx.facade.GetPlace(ctx, policy.Anonymous(), place.ID)
	require.NoError(t, err)
	assert.Equal(t, place.Title, stored.Title)
	require.Len(t, stored.Amenities, 1)
	assert.Equal(t, wifi.ID, stored.Amenities[0].ID)

	replacement := []uuid.UUID{pool.ID}
	updated, err := fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{AmenityIDs: &replacement})
	require.NoError(t, err)
	require.Len(t, updated.Amenities, 1)
	assert.Equal(t, pool.ID, updated.Amenities[0].ID)

	empty := []uuid.UUID{}
	updated, err = fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{AmenityIDs: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Amenities)
}

func TestUpdatePlaceClearsDescription(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, owner := fx.user(t, "owner@hbnb.io")
	desc := "Quiet"
	place, err := fx.facade.CreatePlace(ctx, owner, CreatePlaceInput{Title: "Den", Description: &desc, Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	require.NotNil(t, place.Description)

	blank := ""
	updated, err := fx.facade.UpdatePlace(ctx, owner, place.ID, UpdatePlaceInput{Description: &blank})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
}

func TestListPlaceReviews(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, owner := fx.user(t, "owner@hbnb.io")
	_, guest := fx.user(t, "guest@hbnb.io")
	place := fx.place(t, owner)
	other := fx.place(t, guest)

	_, err := fx.facade.CreateReview(ctx, guest, CreateReviewInput{Text: "good", Rating: 4, PlaceID: place.ID})
	require.NoError(t, err)
	_, err = fx.facade.CreateReview(ctx, owner, CreateReviewInput{Text: "fine", Rating: 3, PlaceID: other.ID})
	require.NoError(t, err)

	list, err := fx.facade.ListPlaceReviews(ctx, policy.Anonymous(), place.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].Text)

	view, err := fx.facade.GetPlace(ctx, policy.Anonymous(), place.ID)
	require.NoError(t, err)
	require.Len(t, view.Reviews, 1)
	assert.Equal(t, list[0].ID, view.Reviews[0].ID)
	assert.Equal(t, 4, view.Reviews[0].Rating)
	assert.Equal(t, guest.UserID, view.Reviews[0].UserID)

	all, err := fx.facade.ListPlaces(ctx, policy.Anonymous())
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		require.Len(t, p.Reviews, 1, p.Title)
	}

	_, err = fx.facade.ListPlaceReviews(ctx, policy.Anonymous(), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateReviewChecks(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, owner := fx.user(t, "owner@hbnb.io")
	guest, guestP := fx.user(t, "guest@hbnb.io")
	place := fx.place(t, owner)

	_, err := fx.facade.CreateReview(ctx, policy.Anonymous(), CreateReviewInput{Text: "x", Rating: 3, PlaceID: place.ID})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	for _, rating := range []int{0, 6, -1} {
		_, err = fx.facade.CreateReview(ctx, guestP, CreateReviewInput{Text: "x", Rating: rating, PlaceID: place.ID})
		requireCode(t, err, pkgerrors.CodeValidation)
	}
	_, err = fx.facade.CreateReview(ctx, guestP, CreateReviewInput{Text: " ", Rating: 3, PlaceID: place.ID})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = fx.facade.CreateReview(ctx, guestP, CreateReviewInput{Text: "x", Rating: 3, PlaceID: uuid.New()})
	requireCode(t, err, pkgerrors.CodeNotFound)

	_, err = fx.facade.CreateReview(ctx, owner, CreateReviewInput{Text: "x", Rating: 3, PlaceID: place.ID, UserID: &guest.ID})
	requireCode(t, err, pkgerrors.CodeForbidden)

	onBehalf, err := fx.facade.CreateReview(ctx, fx.admin, CreateReviewInput{Text: "proxy", Rating: 3, PlaceID: place.ID, UserID: &guest.ID})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, onBehalf.User.ID)
	assert.Equal(t, int64(1), count(t, fx.client, "reviews"))
}

func TestUpdateAndDeleteReview(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	_, owner := fx.user(t, "owner@hbnb.io")
	_, guest := fx.user(t, "guest@hbnb.io")
	_, stranger := fx.user(t, "stranger@hbnb.io")
	place := fx.place(t, owner)

	review, err := fx.facade.CreateReview(ctx, guest, CreateReviewInput{Text: "ok", Rating: 3, PlaceID: place.ID})
	require.NoError(t, err)

	rating := 5
	_, err = fx.facade.UpdateReview(ctx, stranger, review.ID, UpdateReviewInput{Rating: &rating})
	requireCode(t, err, pkgerrors.CodeForbidden)

	for _, bad := range []int{0, 6, 9} {
		bad := bad
		_, err = fx.facade.UpdateReview(ctx, guest, review.ID, UpdateReviewInput{Rating: &bad})
		requireCode(t, err, pkgerrors.CodeValidation)
	}
	unchanged, err := fx.facade.GetReview(ctx, policy.Anonymous(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, unchanged.Rating)

	updated, err := fx.facade.UpdateReview(ctx, guest, review.ID, UpdateReviewInput{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "ok", updated.Text)

	requireCode(t, fx.facade.DeleteReview(ctx, stranger, review.ID), pkgerrors.CodeForbidden)
	require.NoError(t, fx.facade.DeleteReview(ctx, fx.admin, review.ID))
	requireCode(t, fx.facade.DeleteReview(ctx, guest, review.ID), pkgerrors.CodeNotFound)

	again, err := fx.facade.CreateReview(ctx, guest, CreateReviewInput{Text: "back", Rating: 4, PlaceID: place.ID})
	require.NoError(t, err)
	got, err := fx.facade.GetReview(ctx, policy.Anonymous(), again.ID)
	require.NoError(t, err)
	assert.Equal(t, "back", got.Text)
}

func TestAmenityLifecycle(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	creator, creatorP := fx.user(t, "creator@hbnb.io")
	_, stranger := fx.user(t, "stranger@hbnb.io")

	_, err := fx.facade.CreateAmenity(ctx, policy.Anonymous(), CreateAmenityInput{Name: "Wifi"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	wifi, err := fx.facade.CreateAmenity(ctx, creatorP, CreateAmenityInput{Name: " Wifi "})
	require.NoError(t, err)
	assert.Equal(t, "Wifi", wifi.Name)
	require.NotNil(t, wifi.OwnerID)
	assert.Equal(t, creator.ID, *wifi.OwnerID)

	_, err = fx.facade.CreateAmenity(ctx, stranger, CreateAmenityInput{Name: "WIFI"})
	requireCode(t, err, pkgerrors.CodeConflict)

	long := "this amenity name is far too long to be accepted by the store"
	_, err = fx.facade.CreateAmenity(ctx, creatorP, CreateAmenityInput{Name: long})
	requireCode(t, err, pkgerrors.CodeValidation)

	renamed := "Fast wifi"
	_, err = fx.facade.UpdateAmenity(ctx, stranger, wifi.ID, UpdateAmenityInput{Name: &renamed})
	requireCode(t, err, pkgerrors.CodeForbidden)
	updated, err := fx.facade.UpdateAmenity(ctx, creatorP, wifi.ID, UpdateAmenityInput{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Fast wifi", updated.Name)

	sameName := "fast WIFI"
	updated, err = fx.facade.UpdateAmenity(ctx, creatorP, wifi.ID, UpdateAmenityInput{Name: &sameName})
	require.NoError(t, err)
	assert.Equal(t, "fast WIFI", updated.Name)

	place := fx.place(t, creatorP, wifi.ID)
	requireCode(t, fx.facade.DeleteAmenity(ctx, stranger, wifi.ID), pkgerrors.CodeForbidden)
	require.NoError(t, fx.facade.DeleteAmenity(ctx, creatorP, wifi.ID))

	stored, err := fx.facade.GetPlace(ctx, policy.Anonymous(), place.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Amenities)
	list, err := fx.facade.ListAmenities(ctx, policy.Anonymous())
	require.NoError(t, err)
	assert.Empty(t, list)
}
