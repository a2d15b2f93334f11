package facade

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb-dev/hbnb-backend/internal/auth"
	"github.com/hbnb-dev/hbnb-backend/internal/places"
	"github.com/hbnb-dev/hbnb-backend/internal/policy"
	"github.com/hbnb-dev/hbnb-backend/internal/users"
	"github.com/hbnb-dev/hbnb-backend/pkg/config"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/dbtest"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/metrics"
	"github.com/hbnb-dev/hbnb-backend/pkg/security"
)

type fixture struct {
	facade *Facade
	client *db.Client
	auth   *recordingAuth
	admin  policy.Principal
}

// recordingAuth remembers whose sessions were revoked.
type recordingAuth struct {
	auth.Service
	revoked []uuid.UUID
}

func (r *recordingAuth) RevokeUser(ctx context.Context, userID uuid.UUID) error {
	r.revoked = append(r.revoked, userID)
	return r.Service.RevokeUser(ctx, userID)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	client := dbtest.Open(t)
	hasher := security.NewArgon2Hasher(config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	authSvc, err := auth.NewService(auth.ServiceParams{
		DB:        client,
		Hasher:    hasher,
		JWTConfig: config.JWTConfig{Secret: "secret", Issuer: "hbnb", ExpirationMinutes: 15},
	})
	require.NoError(t, err)
	recorder := &recordingAuth{Service: authSvc}

	f, err := New(Params{
		DB:      client,
		Auth:    recorder,
		Metrics: metrics.NewUseCaseMetrics(prometheus.NewRegistry()),
	})
	require.NoError(t, err)

	root, err := authSvc.CreateByAdmin(context.Background(), register("root@hbnb.io"), true)
	require.NoError(t, err)
	return &fixture{
		facade: f,
		client: client,
		auth:   recorder,
		admin:  policy.Principal{UserID: root.ID, IsAdmin: true},
	}
}

func register(email string) auth.RegisterInput {
	return auth.RegisterInput{FirstName: "Ada", LastName: "Lovelace", Email: email, Password: "correct-horse"}
}

func (fx *fixture) user(t *testing.T, email string) (*users.UserDTO, policy.Principal) {
	t.Helper()
	u, err := fx.facade.CreateUser(context.Background(), policy.Anonymous(), register(email))
	require.NoError(t, err)
	return u, policy.Principal{UserID: u.ID}
}

func (fx *fixture) place(t *testing.T, p policy.Principal, amenities ...uuid.UUID) *places.PlaceDTO {
	t.Helper()
	place, err := fx.facade.CreatePlace(context.Background(), p, CreatePlaceInput{
		Title:      "Cabin",
		Price:      decimal.RequireFromString("120.50"),
		Latitude:   45.5,
		Longitude:  -73.6,
		AmenityIDs: amenities,
	})
	require.NoError(t, err)
	return place
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code(), typed.Message())
}

func count(t *testing.T, client *db.Client, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, client.DB().Table(table).Count(&n).Error)
	return n
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Params{})
	require.Error(t, err)

	_, err = New(Params{DB: dbtest.Open(t)})
	require.Error(t, err)
}

func TestReviewLifecycleAcrossRoles(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	_, alice := fx.user(t, "alice@hbnb.io")
	bob, err := fx.facade.AdminCreateUser(ctx, fx.admin, AdminCreateUserInput{RegisterInput: register("bob@hbnb.io"), IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, bob.IsAdmin)
	bobP := policy.Principal{UserID: bob.ID, IsAdmin: true}

	place := fx.place(t, alice)
	assert.Equal(t, alice.UserID, place.Owner.ID)

	_, err = fx.facade.CreateReview(ctx, alice, CreateReviewInput{Text: "mine", Rating: 5, PlaceID: place.ID})
	requireCode(t, err, pkgerrors.CodeSelfReview)

	_, carol := fx.user(t, "carol@hbnb.io")
	review, err := fx.facade.CreateReview(ctx, carol, CreateReviewInput{Text: "Lovely", Rating: 4, PlaceID: place.ID})
	require.NoError(t, err)
	assert.Equal(t, carol.UserID, review.User.ID)
	assert.Equal(t, place.ID, review.Place.ID)

	_, err = fx.facade.CreateReview(ctx, carol, CreateReviewInput{Text: "Again", Rating: 3, PlaceID: place.ID})
	requireCode(t, err, pkgerrors.CodeDuplicate)

	require.NoError(t, fx.facade.DeletePlace(ctx, bobP, place.ID))

	_, err = fx.facade.GetPlace(ctx, policy.Anonymous(), place.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	list, err := fx.facade.ListReviews(ctx, policy.Anonymous())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSelfRegistrationNeverGrantsAdmin(t *testing.T) {
	fx := newFixture(t)
	u, p := fx.user(t, "plain@hbnb.io")
	assert.False(t, u.IsAdmin)

	_, err := fx.facade.AdminCreateUser(context.Background(), p, AdminCreateUserInput{RegisterInput: register("x@hbnb.io"), IsAdmin: true})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = fx.facade.AdminCreateUser(context.Background(), policy.Anonymous(), AdminCreateUserInput{RegisterInput: register("y@hbnb.io")})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	fx := newFixture(t)
	fx.user(t, "dup@hbnb.io")

	_, err := fx.facade.CreateUser(context.Background(), policy.Anonymous(), register("  DUP@hbnb.io "))
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateUserPermissions(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u, self := fx.user(t, "self@hbnb.io")
	other, _ := fx.user(t, "other@hbnb.io")

	name := "Grace"
	updated, err := fx.facade.UpdateUser(ctx, self, u.ID, UpdateUserInput{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Grace", updated.FirstName)

	email := "new@hbnb.io"
	_, err = fx.facade.UpdateUser(ctx, self, u.ID, UpdateUserInput{Email: &email})
	requireCode(t, err, pkgerrors.CodeForbidden)

	promote := true
	_, err = fx.facade.UpdateUser(ctx, self, u.ID, UpdateUserInput{IsAdmin: &promote})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = fx.facade.UpdateUser(ctx, self, other.ID, UpdateUserInput{FirstName: &name})
	requireCode(t, err, pkgerrors.CodeForbidden)

	taken := "other@hbnb.io"
	_, err = fx.facade.UpdateUser(ctx, fx.admin, u.ID, UpdateUserInput{Email: &taken})
	requireCode(t, err, pkgerrors.CodeConflict)

	updated, err = fx.facade.UpdateUser(ctx, fx.admin, u.ID, UpdateUserInput{Email: &email, IsAdmin: &promote})
	require.NoError(t, err)
	assert.Equal(t, "new@hbnb.io", updated.Email)
	assert.True(t, updated.IsAdmin)

	blank := "  "
	_, err = fx.facade.UpdateUser(ctx, self, u.ID, UpdateUserInput{LastName: &blank})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateUserPasswordIsUsableForLogin(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	u, _ := fx.user(t, "pw@hbnb.io")

	secret := "brand-new-secret"
	_, err := fx.facade.UpdateUser(ctx, fx.admin, u.ID, UpdateUserInput{Password: &secret})
	require.NoError(t, err)

	verified, err := fx.facade.auth.VerifyCredentials(ctx, "pw@hbnb.io", secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, verified.ID)

	short := "short"
	_, err = fx.facade.UpdateUser(ctx, fx.admin, u.ID, UpdateUserInput{Password: &short})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	owner, ownerP := fx.user(t, "owner@hbnb.io")
	_, guestP := fx.user(t, "guest@hbnb.io")

	wifi, err := fx.facade.CreateAmenity(ctx, ownerP, CreateAmenityInput{Name: "Wifi"})
	require.NoError(t, err)
	owned := fx.place(t, ownerP, wifi.ID)
	other := fx.place(t, guestP, wifi.ID)

	_, err = fx.facade.CreateReview(ctx, guestP, CreateReviewInput{Text: "ok", Rating: 3, PlaceID: owned.ID})
	require.NoError(t, err)
	kept, err := fx.facade.CreateReview(ctx, fx.admin, CreateReviewInput{Text: "nice", Rating: 5, PlaceID: other.ID})
	require.NoError(t, err)
	_, err = fx.facade.CreateReview(ctx, ownerP, CreateReviewInput{Text: "meh", Rating: 2, PlaceID: other.ID})
	require.NoError(t, err)

	require.Error(t, fx.facade.DeleteUser(ctx, ownerP, owner.ID))
	require.NoError(t, fx.facade.DeleteUser(ctx, fx.admin, owner.ID))

	_, err = fx.facade.GetUser(ctx, policy.Anonymous(), owner.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = fx.facade.GetPlace(ctx, policy.Anonymous(), owned.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	remaining, err := fx.facade.ListReviews(ctx, policy.Anonymous())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	amenity, err := fx.facade.GetAmenity(ctx, policy.Anonymous(), wifi.ID)
	require.NoError(t, err)
	assert.Nil(t, amenity.OwnerID)

	survivor, err := fx.facade.GetPlace(ctx, policy.Anonymous(), other.ID)
	require.NoError(t, err)
	require.Len(t, survivor.Amenities, 1)
	assert.Equal(t, int64(1), count(t, fx.client, "place_amenity"))
}

func TestDeletedAdminLosesRights(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	second, err := fx.facade.AdminCreateUser(ctx, fx.admin, AdminCreateUserInput{RegisterInput: register("second@hbnb.io"), IsAdmin: true})
	require.NoError(t, err)
	victim, _ := fx.user(t, "victim@hbnb.io")
	stale := policy.Principal{UserID: second.ID, IsAdmin: true}

	require.NoError(t, fx.facade.DeleteUser(ctx, fx.admin, second.ID))
	assert.Contains(t, fx.auth.revoked, second.ID)

	err = fx.facade.DeleteUser(ctx, stale, victim.ID)
	requireCode(t, err, pkgerrors.CodeUnauthorized)
	_, err = fx.facade.CreateAmenity(ctx, stale, CreateAmenityInput{Name: "Sauna"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = fx.facade.GetUser(ctx, policy.Anonymous(), victim.ID)
	require.NoError(t, err)
}

func TestDemotedAdminActsAsPlainUser(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)

	second, err := fx.facade.AdminCreateUser(ctx, fx.admin, AdminCreateUserInput{RegisterInput: register("second@hbnb.io"), IsAdmin: true})
	require.NoError(t, err)
	victim, _ := fx.user(t, "victim@hbnb.io")
	stale := policy.Principal{UserID: second.ID, IsAdmin: true}

	demote := false
	updated, err := fx.facade.UpdateUser(ctx, fx.admin, second.ID, UpdateUserInput{IsAdmin: &demote})
	require.NoError(t, err)
	assert.False(t, updated.IsAdmin)
	assert.Equal(t, []uuid.UUID{second.ID}, fx.auth.revoked)

	err = fx.facade.DeleteUser(ctx, stale, victim.ID)
	requireCode(t, err, pkgerrors.CodeForbidden)
	email := "taken@hbnb.io"
	_, err = fx.facade.UpdateUser(ctx, stale, victim.ID, UpdateUserInput{Email: &email})
	requireCode(t, err, pkgerrors.CodeForbidden)

	name := "Still Me"
	_, err = fx.facade.UpdateUser(ctx, stale, second.ID, UpdateUserInput{FirstName: &name})
	require.NoError(t, err)
	assert.Len(t, fx.auth.revoked, 1, "renaming leaves sessions alone")
}

func TestDeleteUnknownUserIsNotFound(t *testing.T) {
	fx := newFixture(t)
	err := fx.facade.DeleteUser(context.Background(), fx.admin, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}
