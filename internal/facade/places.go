package facade

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/internal/places"
	"github.com/hbnb-dev/hbnb-backend/internal/policy"
	"github.com/hbnb-dev/hbnb-backend/internal/reviews"
	"github.com/hbnb-dev/hbnb-backend/internal/validation"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

const priceScale = 2

// CreatePlace lists a place for the caller. Only admins may name another
// owner; everyone else is denied rather than silently reassigned.
func (f *Facade) CreatePlace(ctx context.Context, p policy.Principal, in CreatePlaceInput) (_ *places.PlaceDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindPlace, policy.ActionCreate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	target := policy.Target{ClaimedOwnerID: in.OwnerID}
	if err := policy.Authorize(p, policy.KindPlace, policy.ActionCreate, target).Err(); err != nil {
		return nil, err
	}
	ownerID := p.UserID
	if in.OwnerID != nil {
		ownerID = *in.OwnerID
	}

	var view *places.PlaceDTO
	err = f.inTx(ctx, func(r repos) error {
		owner, err := r.resolve.User(ctx, ownerID)
		if err != nil {
			return err
		}
		linked, err := r.resolve.Amenities(ctx, in.AmenityIDs)
		if err != nil {
			return err
		}

		place := &models.Place{
			Base:        models.NewBase(time.Now()),
			Title:       strings.TrimSpace(in.Title),
			Description: normalizeDescription(in.Description),
			Price:       in.Price.Round(priceScale),
			Latitude:    in.Latitude,
			Longitude:   in.Longitude,
			OwnerID:     owner.ID,
		}
		if err := validation.Place(placeFields(place)); err != nil {
			return err
		}
		if err := r.places.Create(ctx, place); err != nil {
			return storeErr(err, "place", "", "create")
		}
		if err := r.places.ReplaceAmenities(ctx, place.ID, amenityIDs(linked)); err != nil {
			return storeErr(err, "place", "", "attach amenities to")
		}
		view = places.NewDTO(place, owner, sortAmenities(linked))
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logMutation(ctx, p, policy.KindPlace, "created", view.ID, map[string]any{
		"owner_id":  ownerID.String(),
		"amenities": len(view.Amenities),
	})
	return view, nil
}

func (f *Facade) GetPlace(ctx context.Context, p policy.Principal, id uuid.UUID) (*places.PlaceDTO, error) {
	r := f.read()
	place, err := r.resolve.Place(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := placeViews(ctx, r, []models.Place{*place})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (f *Facade) ListPlaces(ctx context.Context, p policy.Principal) ([]places.PlaceDTO, error) {
	r := f.read()
	list, err := r.places.List(ctx)
	if err != nil {
		return nil, storeErr(err, "place", "", "list")
	}
	return placeViews(ctx, r, list)
}

// UpdatePlace patches a place owned by the caller (or any place for an
// admin). A supplied amenity set replaces the current one wholesale and
// must resolve completely.
func (f *Facade) UpdatePlace(ctx context.Context, p policy.Principal, id uuid.UUID, in UpdatePlaceInput) (_ *places.PlaceDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindPlace, policy.ActionUpdate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	if err := gate(p, policy.KindPlace, policy.ActionUpdate); err != nil {
		return nil, err
	}

	var view *places.PlaceDTO
	err = f.inTx(ctx, func(r repos) error {
		place, err := r.resolve.Place(ctx, id)
		if err != nil {
			return err
		}
		target := policy.Target{ID: place.ID, OwnerID: place.OwnerID}
		if err := policy.Authorize(p, policy.KindPlace, policy.ActionUpdate, target).Err(); err != nil {
			return err
		}

		var linked []models.Amenity
		if in.AmenityIDs != nil {
			if linked, err = r.resolve.Amenities(ctx, *in.AmenityIDs); err != nil {
				return err
			}
		}

		changes := applyPlaceUpdate(place, in)
		if err := validation.Place(placeFields(place)); err != nil {
			return err
		}
		// A new amenity set is a change to the place too, so updated_at
		// moves even when no column is patched.
		if len(changes) > 0 || in.AmenityIDs != nil {
			if _, err := r.places.Update(ctx, id, changes); err != nil {
				return storeErr(err, "place", id.String(), "update")
			}
		}
		if in.AmenityIDs != nil {
			if err := r.places.ReplaceAmenities(ctx, id, amenityIDs(linked)); err != nil {
				return storeErr(err, "place", id.String(), "attach amenities to")
			}
		}

		saved, err := r.resolve.Place(ctx, id)
		if err != nil {
			return err
		}
		views, err := placeViews(ctx, r, []models.Place{*saved})
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logMutation(ctx, p, policy.KindPlace, "updated", id, map[string]any{"amenities_replaced": in.AmenityIDs != nil})
	return view, nil
}

// DeletePlace removes the place with its reviews and amenity links.
func (f *Facade) DeletePlace(ctx context.Context, p policy.Principal, id uuid.UUID) (err error) {
	defer func(start time.Time) { f.observe(policy.KindPlace, policy.ActionDelete, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return err
	}

	if err := gate(p, policy.KindPlace, policy.ActionDelete); err != nil {
		return err
	}

	var counts cascadeCounts
	err = f.inTx(ctx, func(r repos) error {
		place, err := r.resolve.Place(ctx, id)
		if err != nil {
			return err
		}
		target := policy.Target{ID: place.ID, OwnerID: place.OwnerID}
		if err := policy.Authorize(p, policy.KindPlace, policy.ActionDelete, target).Err(); err != nil {
			return err
		}
		if counts.reviews, err = r.reviews.DeleteByPlaces(ctx, id); err != nil {
			return storeErr(err, "review", "", "delete")
		}
		if counts.links, err = r.places.DeleteAmenityLinks(ctx, id); err != nil {
			return storeErr(err, "place", id.String(), "detach amenities from")
		}
		deleted, err := r.places.Delete(ctx, id)
		if err != nil {
			return storeErr(err, "place", id.String(), "delete")
		}
		if !deleted {
			return pkgerrors.NotFound("place", id.String())
		}
		counts.places = 1
		return nil
	})
	if err != nil {
		return err
	}
	f.logMutation(ctx, p, policy.KindPlace, "deleted", id, counts.fields())
	return nil
}

// ListPlaceReviews returns the reviews of one place.
func (f *Facade) ListPlaceReviews(ctx context.Context, p policy.Principal, placeID uuid.UUID) ([]reviews.ReviewDTO, error) {
	r := f.read()
	if _, err := r.resolve.Place(ctx, placeID); err != nil {
		return nil, err
	}
	list, err := r.reviews.ListByPlace(ctx, placeID)
	if err != nil {
		return nil, storeErr(err, "review", "", "list")
	}
	return reviewViews(ctx, r, list)
}

// applyPlaceUpdate merges in onto place and returns the column patch.
func applyPlaceUpdate(place *models.Place, in UpdatePlaceInput) map[string]any {
	changes := map[string]any{}
	if in.Title != nil {
		place.Title = strings.TrimSpace(*in.Title)
		changes["title"] = place.Title
	}
	if in.Description != nil {
		place.Description = normalizeDescription(in.Description)
		changes["description"] = place.Description
	}
	if in.Price != nil {
		place.Price = in.Price.Round(priceScale)
		changes["price"] = place.Price
	}
	if in.Latitude != nil {
		place.Latitude = *in.Latitude
		changes["latitude"] = place.Latitude
	}
	if in.Longitude != nil {
		place.Longitude = *in.Longitude
		changes["longitude"] = place.Longitude
	}
	return changes
}

func placeFields(p *models.Place) validation.PlaceFields {
	return validation.PlaceFields{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
	}
}

func normalizeDescription(desc *string) *string {
	if desc == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func amenityIDs(list []models.Amenity) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	return ids
}

func sortAmenities(list []models.Amenity) []models.Amenity {
	out := append([]models.Amenity(nil), list...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// placeViews resolves the nested owner, amenities and reviews for a batch
// of places with one query each.
func placeViews(ctx context.Context, r repos, list []models.Place) ([]places.PlaceDTO, error) {
	ownerIDs := make([]uuid.UUID, 0, len(list))
	placeIDs := make([]uuid.UUID, 0, len(list))
	for _, p := range list {
		ownerIDs = append(ownerIDs, p.OwnerID)
		placeIDs = append(placeIDs, p.ID)
	}

	owners, err := r.users.FindByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, storeErr(err, "user", "", "load")
	}
	ownerByID := make(map[uuid.UUID]*models.User, len(owners))
	for i := range owners {
		ownerByID[owners[i].ID] = &owners[i]
	}
	linked, err := r.places.AmenitiesFor(ctx, placeIDs)
	if err != nil {
		return nil, storeErr(err, "amenity", "", "load")
	}
	reviewed, err := r.reviews.GroupByPlaces(ctx, placeIDs)
	if err != nil {
		return nil, storeErr(err, "review", "", "load")
	}

	out := make([]places.PlaceDTO, 0, len(list))
	for i := range list {
		p := &list[i]
		out = append(out, *places.NewDTO(p, ownerByID[p.OwnerID], linked[p.ID]).WithReviews(reviewed[p.ID]))
	}
	return out, nil
}
