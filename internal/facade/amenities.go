package facade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/internal/amenities"
	"github.com/hbnb-dev/hbnb-backend/internal/policy"
	"github.com/hbnb-dev/hbnb-backend/internal/validation"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

// CreateAmenity registers a named tag owned by the caller. Names are unique
// regardless of case.
func (f *Facade) CreateAmenity(ctx context.Context, p policy.Principal, in CreateAmenityInput) (_ *amenities.AmenityDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindAmenity, policy.ActionCreate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	if err := policy.Authorize(p, policy.KindAmenity, policy.ActionCreate, policy.Target{}).Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if err := validation.Amenity(validation.AmenityFields{Name: name}); err != nil {
		return nil, err
	}

	var created *models.Amenity
	err = f.inTx(ctx, func(r repos) error {
		if err := ensureAmenityNameFree(ctx, r, name, uuid.Nil); err != nil {
			return err
		}
		ownerID := p.UserID
		amenity := &models.Amenity{Base: models.NewBase(time.Now()), Name: name, OwnerID: &ownerID}
		if err := r.amenities.Create(ctx, amenity); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Uniqueness("amenity", "name", name)
			}
			return storeErr(err, "amenity", "", "create")
		}
		created = amenity
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logMutation(ctx, p, policy.KindAmenity, "created", created.ID, nil)
	return amenities.FromModel(created), nil
}

func (f *Facade) GetAmenity(ctx context.Context, p policy.Principal, id uuid.UUID) (*amenities.AmenityDTO, error) {
	amenity, err := f.read().amenities.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "amenity", id.String(), "load")
	}
	return amenities.FromModel(amenity), nil
}

func (f *Facade) ListAmenities(ctx context.Context, p policy.Principal) ([]amenities.AmenityDTO, error) {
	list, err := f.read().amenities.List(ctx)
	if err != nil {
		return nil, storeErr(err, "amenity", "", "list")
	}
	return amenities.FromModels(list), nil
}

// UpdateAmenity renames an amenity created by the caller, or any amenity
// for an admin.
func (f *Facade) UpdateAmenity(ctx context.Context, p policy.Principal, id uuid.UUID, in UpdateAmenityInput) (_ *amenities.AmenityDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindAmenity, policy.ActionUpdate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	if err := gate(p, policy.KindAmenity, policy.ActionUpdate); err != nil {
		return nil, err
	}

	var updated *models.Amenity
	err = f.inTx(ctx, func(r repos) error {
		amenity, err := r.amenities.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, "amenity", id.String(), "load")
		}
		if err := policy.Authorize(p, policy.KindAmenity, policy.ActionUpdate, amenityTarget(amenity)).Err(); err != nil {
			return err
		}
		if in.Name == nil {
			updated = amenity
			return nil
		}

		name := strings.TrimSpace(*in.Name)
		if err := validation.Amenity(validation.AmenityFields{Name: name}); err != nil {
			return err
		}
		if err := ensureAmenityNameFree(ctx, r, name, id); err != nil {
			return err
		}
		if updated, err = r.amenities.Update(ctx, id, map[string]any{"name": name}); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Uniqueness("amenity", "name", name)
			}
			return storeErr(err, "amenity", id.String(), "update")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logMutation(ctx, p, policy.KindAmenity, "updated", id, nil)
	return amenities.FromModel(updated), nil
}

// DeleteAmenity detaches the amenity from every place, then removes it.
// Places themselves are untouched.
func (f *Facade) DeleteAmenity(ctx context.Context, p policy.Principal, id uuid.UUID) (err error) {
	defer func(start time.Time) { f.observe(policy.KindAmenity, policy.ActionDelete, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return err
	}

	if err := gate(p, policy.KindAmenity, policy.ActionDelete); err != nil {
		return err
	}

	var detached int64
	err = f.inTx(ctx, func(r repos) error {
		amenity, err := r.amenities.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, "amenity", id.String(), "load")
		}
		if err := policy.Authorize(p, policy.KindAmenity, policy.ActionDelete, amenityTarget(amenity)).Err(); err != nil {
			return err
		}
		if detached, err = r.places.DetachAmenity(ctx, id); err != nil {
			return storeErr(err, "amenity", id.String(), "detach")
		}
		deleted, err := r.amenities.Delete(ctx, id)
		if err != nil {
			return storeErr(err, "amenity", id.String(), "delete")
		}
		if !deleted {
			return pkgerrors.NotFound("amenity", id.String())
		}
		return nil
	})
	if err != nil {
		return err
	}
	f.logMutation(ctx, p, policy.KindAmenity, "deleted", id, map[string]any{"cascade_amenity_links": detached})
	return nil
}

func amenityTarget(a *models.Amenity) policy.Target {
	target := policy.Target{ID: a.ID}
	if a.OwnerID != nil {
		target.OwnerID = *a.OwnerID
	}
	return target
}

// ensureAmenityNameFree fails when another amenity already uses name,
// compared case-insensitively. self is excluded from the check.
func ensureAmenityNameFree(ctx context.Context, r repos, name string, self uuid.UUID) error {
	existing, err := r.amenities.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != self:
		return pkgerrors.Uniqueness("amenity", "name", name)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return storeErr(err, "amenity", "", "check name for")
	}
	return nil
}
