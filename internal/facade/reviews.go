package facade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/internal/policy"
	"github.com/hbnb-dev/hbnb-backend/internal/reviews"
	"github.com/hbnb-dev/hbnb-backend/internal/validation"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

// CreateReview records the caller's review of a place. Owners cannot review
// their own place and a user reviews a place at most once.
func (f *Facade) CreateReview(ctx context.Context, p policy.Principal, in CreateReviewInput) (_ *reviews.ReviewDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindReview, policy.ActionCreate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	target := policy.Target{ClaimedOwnerID: in.UserID}
	if err := policy.Authorize(p, policy.KindReview, policy.ActionCreate, target).Err(); err != nil {
		return nil, err
	}
	authorID := p.UserID
	if in.UserID != nil {
		authorID = *in.UserID
	}

	var view *reviews.ReviewDTO
	err = f.inTx(ctx, func(r repos) error {
		author, err := r.resolve.User(ctx, authorID)
		if err != nil {
			return err
		}
		place, err := r.resolve.Place(ctx, in.PlaceID)
		if err != nil {
			return err
		}

		review := &models.Review{
			Base:    models.NewBase(time.Now()),
			Text:    strings.TrimSpace(in.Text),
			Rating:  in.Rating,
			UserID:  author.ID,
			PlaceID: place.ID,
		}
		if err := validation.Review(reviewFields(review)); err != nil {
			return err
		}
		if place.OwnerID == author.ID {
			return pkgerrors.SelfReview()
		}
		if _, err := r.reviews.FindByUserAndPlace(ctx, author.ID, place.ID); err == nil {
			return pkgerrors.DuplicateReview()
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return storeErr(err, "review", "", "check")
		}

		if err := r.reviews.Create(ctx, review); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.DuplicateReview()
			}
			return storeErr(err, "review", "", "create")
		}
		view = reviews.NewDTO(review, author, place)
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logMutation(ctx, p, policy.KindReview, "created", view.ID, map[string]any{
		"place_id": in.PlaceID.String(),
		"rating":   view.Rating,
	})
	return view, nil
}

func (f *Facade) GetReview(ctx context.Context, p policy.Principal, id uuid.UUID) (*reviews.ReviewDTO, error) {
	r := f.read()
	review, err := r.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "review", id.String(), "load")
	}
	views, err := reviewViews(ctx, r, []models.Review{*review})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (f *Facade) ListReviews(ctx context.Context, p policy.Principal) ([]reviews.ReviewDTO, error) {
	r := f.read()
	list, err := r.reviews.List(ctx)
	if err != nil {
		return nil, storeErr(err, "review", "", "list")
	}
	return reviewViews(ctx, r, list)
}

// UpdateReview changes text and rating only; author and place are fixed.
func (f *Facade) UpdateReview(ctx context.Context, p policy.Principal, id uuid.UUID, in UpdateReviewInput) (_ *reviews.ReviewDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindReview, policy.ActionUpdate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	if err := gate(p, policy.KindReview, policy.ActionUpdate); err != nil {
		return nil, err
	}

	var view *reviews.ReviewDTO
	err = f.inTx(ctx, func(r repos) error {
		review, err := r.reviews.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, "review", id.String(), "load")
		}
		target := policy.Target{ID: review.ID, OwnerID: review.UserID}
		if err := policy.Authorize(p, policy.KindReview, policy.ActionUpdate, target).Err(); err != nil {
			return err
		}

		changes := map[string]any{}
		if in.Text != nil {
			review.Text = strings.TrimSpace(*in.Text)
			changes["text"] = review.Text
		}
		if in.Rating != nil {
			review.Rating = *in.Rating
			changes["rating"] = review.Rating
		}
		if err := validation.Review(reviewFields(review)); err != nil {
			return err
		}
		if len(changes) > 0 {
			if review, err = r.reviews.Update(ctx, id, changes); err != nil {
				return storeErr(err, "review", id.String(), "update")
			}
		}
		views, err := reviewViews(ctx, r, []models.Review{*review})
		if err != nil {
			return err
		}
		view = &views[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	f.logMutation(ctx, p, policy.KindReview, "updated", id, nil)
	return view, nil
}

func (f *Facade) DeleteReview(ctx context.Context, p policy.Principal, id uuid.UUID) (err error) {
	defer func(start time.Time) { f.observe(policy.KindReview, policy.ActionDelete, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return err
	}

	if err := gate(p, policy.KindReview, policy.ActionDelete); err != nil {
		return err
	}

	err = f.inTx(ctx, func(r repos) error {
		review, err := r.reviews.FindByID(ctx, id)
		if err != nil {
			return storeErr(err, "review", id.String(), "load")
		}
		target := policy.Target{ID: review.ID, OwnerID: review.UserID}
		if err := policy.Authorize(p, policy.KindReview, policy.ActionDelete, target).Err(); err != nil {
			return err
		}
		deleted, err := r.reviews.Delete(ctx, id)
		if err != nil {
			return storeErr(err, "review", id.String(), "delete")
		}
		if !deleted {
			return pkgerrors.NotFound("review", id.String())
		}
		return nil
	})
	if err != nil {
		return err
	}
	f.logMutation(ctx, p, policy.KindReview, "deleted", id, nil)
	return nil
}

func reviewFields(r *models.Review) validation.ReviewFields {
	return validation.ReviewFields{Text: r.Text, Rating: r.Rating}
}

// reviewViews resolves authors and places for a batch of reviews.
func reviewViews(ctx context.Context, r repos, list []models.Review) ([]reviews.ReviewDTO, error) {
	userIDs := make([]uuid.UUID, 0, len(list))
	placeIDs := make([]uuid.UUID, 0, len(list))
	for _, rv := range list {
		userIDs = append(userIDs, rv.UserID)
		placeIDs = append(placeIDs, rv.PlaceID)
	}

	authors, err := r.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, storeErr(err, "user", "", "load")
	}
	authorByID := make(map[uuid.UUID]*models.User, len(authors))
	for i := range authors {
		authorByID[authors[i].ID] = &authors[i]
	}
	placeList, err := r.places.FindByIDs(ctx, placeIDs)
	if err != nil {
		return nil, storeErr(err, "place", "", "load")
	}
	placeByID := make(map[uuid.UUID]*models.Place, len(placeList))
	for i := range placeList {
		placeByID[placeList[i].ID] = &placeList[i]
	}

	out := make([]reviews.ReviewDTO, 0, len(list))
	for i := range list {
		rv := &list[i]
		out = append(out, *reviews.NewDTO(rv, authorByID[rv.UserID], placeByID[rv.PlaceID]))
	}
	return out, nil
}
