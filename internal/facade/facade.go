// Package facade composes policy, resolution, validation and storage into
// one use case per entity and action. Every mutation runs in a single
// transaction, so a failed check never leaves a partial write behind.
package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/internal/amenities"
	"github.com/hbnb-dev/hbnb-backend/internal/auth"
	"github.com/hbnb-dev/hbnb-backend/internal/places"
	"github.com/hbnb-dev/hbnb-backend/internal/policy"
	"github.com/hbnb-dev/hbnb-backend/internal/resolver"
	"github.com/hbnb-dev/hbnb-backend/internal/reviews"
	"github.com/hbnb-dev/hbnb-backend/internal/users"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
	"github.com/hbnb-dev/hbnb-backend/pkg/metrics"
)

// Users is the user-facing surface consumed by the HTTP layer.
type Users interface {
	CreateUser(ctx context.Context, p policy.Principal, in auth.RegisterInput) (*users.UserDTO, error)
	AdminCreateUser(ctx context.Context, p policy.Principal, in AdminCreateUserInput) (*users.UserDTO, error)
	GetUser(ctx context.Context, p policy.Principal, id uuid.UUID) (*users.UserDTO, error)
	ListUsers(ctx context.Context, p policy.Principal) ([]users.UserDTO, error)
	UpdateUser(ctx context.Context, p policy.Principal, id uuid.UUID, in UpdateUserInput) (*users.UserDTO, error)
	DeleteUser(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

type Places interface {
	CreatePlace(ctx context.Context, p policy.Principal, in CreatePlaceInput) (*places.PlaceDTO, error)
	GetPlace(ctx context.Context, p policy.Principal, id uuid.UUID) (*places.PlaceDTO, error)
	ListPlaces(ctx context.Context, p policy.Principal) ([]places.PlaceDTO, error)
	UpdatePlace(ctx context.Context, p policy.Principal, id uuid.UUID, in UpdatePlaceInput) (*places.PlaceDTO, error)
	DeletePlace(ctx context.Context, p policy.Principal, id uuid.UUID) error
	ListPlaceReviews(ctx context.Context, p policy.Principal, placeID uuid.UUID) ([]reviews.ReviewDTO, error)
}

type Reviews interface {
	CreateReview(ctx context.Context, p policy.Principal, in CreateReviewInput) (*reviews.ReviewDTO, error)
	GetReview(ctx context.Context, p policy.Principal, id uuid.UUID) (*reviews.ReviewDTO, error)
	ListReviews(ctx context.Context, p policy.Principal) ([]reviews.ReviewDTO, error)
	UpdateReview(ctx context.Context, p policy.Principal, id uuid.UUID, in UpdateReviewInput) (*reviews.ReviewDTO, error)
	DeleteReview(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

type Amenities interface {
	CreateAmenity(ctx context.Context, p policy.Principal, in CreateAmenityInput) (*amenities.AmenityDTO, error)
	GetAmenity(ctx context.Context, p policy.Principal, id uuid.UUID) (*amenities.AmenityDTO, error)
	ListAmenities(ctx context.Context, p policy.Principal) ([]amenities.AmenityDTO, error)
	UpdateAmenity(ctx context.Context, p policy.Principal, id uuid.UUID, in UpdateAmenityInput) (*amenities.AmenityDTO, error)
	DeleteAmenity(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

// API is the full use-case surface.
type API interface {
	Users
	Places
	Reviews
	Amenities
}

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Params bundles the collaborators of the facade. Logger and Metrics are
// optional.
type Params struct {
	DB      txRunner
	Auth    auth.Service
	Logger  *logger.Logger
	Metrics *metrics.UseCaseMetrics
}

// Facade is constructed once at startup and shared by every handler; it
// holds no per-request state.
type Facade struct {
	db      txRunner
	auth    auth.Service
	logg    *logger.Logger
	metrics *metrics.UseCaseMetrics
}

var _ API = (*Facade)(nil)

func New(params Params) (*Facade, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Auth == nil {
		return nil, fmt.Errorf("auth service is required")
	}
	return &Facade{
		db:      params.DB,
		auth:    params.Auth,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// repos binds every repository and the resolver to one connection, either
// the pool or an open transaction.
type repos struct {
	users     *users.Repository
	places    *places.Repository
	reviews   *reviews.Repository
	amenities *amenities.Repository
	resolve   *resolver.Resolver
}

func reposFor(conn *gorm.DB) repos {
	r := repos{
		users:     users.NewRepository(conn),
		places:    places.NewRepository(conn),
		reviews:   reviews.NewRepository(conn),
		amenities: amenities.NewRepository(conn),
	}
	r.resolve = resolver.New(r.users, r.places, r.amenities)
	return r
}

func (f *Facade) read() repos {
	return reposFor(f.db.DB())
}

func (f *Facade) inTx(ctx context.Context, fn func(r repos) error) error {
	return f.db.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

// gate rejects anonymous callers of gated operations before any lookup, so
// they see 401 rather than a 404 for a record they may not touch anyway.
func gate(p policy.Principal, kind policy.Kind, action policy.Action) error {
	if action != policy.ActionRead && p.IsAnonymous() {
		return policy.Authorize(p, kind, action, policy.Target{}).Err()
	}
	return nil
}

// actor reloads an authenticated caller so a deleted or demoted account
// stops acting with the rights its token was issued for.
func (f *Facade) actor(ctx context.Context, p policy.Principal) (policy.Principal, error) {
	if p.IsAnonymous() {
		return p, nil
	}
	user, err := f.read().users.FindByID(ctx, p.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return policy.Principal{}, pkgerrors.Unauthenticated("account no longer exists")
	}
	if err != nil {
		return policy.Principal{}, storeErr(err, "user", "", "load caller")
	}
	p.IsAdmin = user.IsAdmin
	return p, nil
}

func (f *Facade) observe(kind policy.Kind, action policy.Action, start time.Time, err error) {
	f.metrics.Observe(string(kind), string(action), start, err)
}

// logMutation records a successful change. Callers must never pass
// credentials in fields.
func (f *Facade) logMutation(ctx context.Context, p policy.Principal, kind policy.Kind, event string, id uuid.UUID, fields map[string]any) {
	if f.logg == nil {
		return
	}
	ctx = f.logg.WithEntity(ctx, string(kind), id.String())
	ctx = f.logg.WithActorRole(ctx, p.Role())
	if !p.IsAnonymous() {
		ctx = f.logg.WithUserID(ctx, p.UserID.String())
	}
	if len(fields) > 0 {
		ctx = f.logg.WithFields(ctx, fields)
	}
	f.logg.Info(ctx, fmt.Sprintf("%s.%s", kind, event))
}

// storeErr passes typed errors through and hides everything else behind a
// generic internal error.
func storeErr(err error, kind, id string, action string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && id != "" {
		return pkgerrors.NotFound(kind, id)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("%s %s", action, kind))
}
