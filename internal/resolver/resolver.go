// Package resolver turns foreign-key ids into loaded records, failing with
// the exact reference that could not be found.
package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type placeFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Place, error)
}

type amenityFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Amenity, error)
}

// Resolver loads referenced entities before a mutation.
type Resolver struct {
	users     userFinder
	places    placeFinder
	amenities amenityFinder
}

func New(users userFinder, places placeFinder, amenities amenityFinder) *Resolver {
	return &Resolver{users: users, places: places, amenities: amenities}
}

func (r *Resolver) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("user", id, err)
	}
	return user, nil
}

func (r *Resolver) Place(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	place, err := r.places.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("place", id, err)
	}
	return place, nil
}

// Amenities resolves ids in order, dropping duplicates. The first id with no
// matching record is reported.
func (r *Resolver) Amenities(ctx context.Context, ids []uuid.UUID) ([]models.Amenity, error) {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return []models.Amenity{}, nil
	}

	found, err := r.amenities.FindByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load amenities")
	}
	byID := make(map[uuid.UUID]models.Amenity, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}

	out := make([]models.Amenity, 0, len(unique))
	for _, id := range unique {
		a, ok := byID[id]
		if !ok {
			return nil, pkgerrors.NotFound("amenity", id.String())
		}
		out = append(out, a)
	}
	return out, nil
}

func lookupError(kind string, id uuid.UUID, err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.NotFound(kind, id.String())
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("load %s", kind))
}
