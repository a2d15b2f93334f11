package facade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/internal/auth"
	"github.com/hbnb-dev/hbnb-backend/internal/policy"
	"github.com/hbnb-dev/hbnb-backend/internal/users"
	"github.com/hbnb-dev/hbnb-backend/internal/validation"
	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

// CreateUser is public self-registration; the result is never an admin.
func (f *Facade) CreateUser(ctx context.Context, p policy.Principal, in auth.RegisterInput) (_ *users.UserDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindUser, policy.ActionCreate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	if err := policy.Authorize(p, policy.KindUser, policy.ActionCreate, policy.Target{}).Err(); err != nil {
		return nil, err
	}
	user, err := f.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	f.logMutation(ctx, p, policy.KindUser, "created", user.ID, nil)
	return users.NewDTO(user), nil
}

// AdminCreateUser is the privileged path that may set is_admin.
func (f *Facade) AdminCreateUser(ctx context.Context, p policy.Principal, in AdminCreateUserInput) (_ *users.UserDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindUser, policy.ActionCreate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	if err := policy.Authorize(p, policy.KindUser, policy.ActionCreate, policy.Target{Elevated: true}).Err(); err != nil {
		return nil, err
	}
	user, err := f.auth.CreateByAdmin(ctx, in.RegisterInput, in.IsAdmin)
	if err != nil {
		return nil, err
	}
	f.logMutation(ctx, p, policy.KindUser, "created", user.ID, map[string]any{"is_admin": user.IsAdmin})
	return users.NewDTO(user), nil
}

func (f *Facade) GetUser(ctx context.Context, p policy.Principal, id uuid.UUID) (*users.UserDTO, error) {
	user, err := f.read().resolve.User(ctx, id)
	if err != nil {
		return nil, err
	}
	return users.NewDTO(user), nil
}

func (f *Facade) ListUsers(ctx context.Context, p policy.Principal) ([]users.UserDTO, error) {
	list, err := f.read().users.List(ctx)
	if err != nil {
		return nil, storeErr(err, "user", "", "list")
	}
	return users.NewDTOs(list), nil
}

// UpdateUser lets a user rename themselves; every other field, and every
// other user, needs an admin. Email changes re-check uniqueness.
func (f *Facade) UpdateUser(ctx context.Context, p policy.Principal, id uuid.UUID, in UpdateUserInput) (_ *users.UserDTO, err error) {
	defer func(start time.Time) { f.observe(policy.KindUser, policy.ActionUpdate, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return nil, err
	}

	target := policy.Target{ID: id, Fields: in.Fields()}
	if err := policy.Authorize(p, policy.KindUser, policy.ActionUpdate, target).Err(); err != nil {
		return nil, err
	}

	var digest string
	if in.Password != nil {
		if err := validation.Password(*in.Password); err != nil {
			return nil, err
		}
		if digest, err = f.auth.HashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	var (
		updated     *users.UserDTO
		roleChanged bool
	)
	err = f.inTx(ctx, func(r repos) error {
		current, err := r.resolve.User(ctx, id)
		if err != nil {
			return err
		}

		fields := validation.UserFields{FirstName: current.FirstName, LastName: current.LastName, Email: current.Email}
		changes := map[string]any{}
		if in.FirstName != nil {
			fields.FirstName = strings.TrimSpace(*in.FirstName)
			changes["first_name"] = fields.FirstName
		}
		if in.LastName != nil {
			fields.LastName = strings.TrimSpace(*in.LastName)
			changes["last_name"] = fields.LastName
		}
		if in.Email != nil {
			email, err := validation.NormalizeEmail(*in.Email)
			if err != nil {
				return err
			}
			fields.Email = email
			if email != current.Email {
				changes["email"] = email
			}
		}
		if err := validation.User(fields); err != nil {
			return err
		}
		if digest != "" {
			changes["password_hash"] = digest
		}
		if in.IsAdmin != nil {
			changes["is_admin"] = *in.IsAdmin
			roleChanged = current.IsAdmin != *in.IsAdmin
		}

		if email, ok := changes["email"].(string); ok {
			other, err := r.users.FindByEmail(ctx, email)
			switch {
			case err == nil && other.ID != id:
				return pkgerrors.Uniqueness("user", "email", email)
			case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
				return storeErr(err, "user", "", "check email for")
			}
		}

		if len(changes) == 0 {
			updated = users.NewDTO(current)
			return nil
		}
		saved, err := r.users.Update(ctx, id, changes)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.Uniqueness("user", "email", fields.Email)
			}
			return storeErr(err, "user", id.String(), "update")
		}
		updated = users.NewDTO(saved)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if roleChanged {
		f.revokeSessions(ctx, id)
	}
	f.logMutation(ctx, p, policy.KindUser, "updated", id, map[string]any{"fields": target.Fields})
	return updated, nil
}

// DeleteUser removes the user together with their places, the reviews on
// those places and the reviews they wrote. Amenities they created survive
// without a creator.
func (f *Facade) DeleteUser(ctx context.Context, p policy.Principal, id uuid.UUID) (err error) {
	defer func(start time.Time) { f.observe(policy.KindUser, policy.ActionDelete, start, err) }(time.Now())
	if p, err = f.actor(ctx, p); err != nil {
		return err
	}

	if err := policy.Authorize(p, policy.KindUser, policy.ActionDelete, policy.Target{ID: id}).Err(); err != nil {
		return err
	}

	var counts cascadeCounts
	err = f.inTx(ctx, func(r repos) error {
		if _, err := r.resolve.User(ctx, id); err != nil {
			return err
		}
		placeIDs, err := r.places.IDsByOwner(ctx, id)
		if err != nil {
			return storeErr(err, "place", "", "list owned")
		}
		if counts.reviews, err = r.reviews.DeleteByPlaces(ctx, placeIDs...); err != nil {
			return storeErr(err, "review", "", "delete")
		}
		if counts.links, err = r.places.DeleteAmenityLinks(ctx, placeIDs...); err != nil {
			return storeErr(err, "place", "", "detach amenities from")
		}
		if counts.places, err = r.places.DeleteByOwner(ctx, id); err != nil {
			return storeErr(err, "place", "", "delete")
		}
		authored, err := r.reviews.DeleteByUser(ctx, id)
		if err != nil {
			return storeErr(err, "review", "", "delete")
		}
		counts.reviews += authored
		if _, err := r.amenities.ClearOwner(ctx, id); err != nil {
			return storeErr(err, "amenity", "", "release")
		}
		deleted, err := r.users.Delete(ctx, id)
		if err != nil {
			return storeErr(err, "user", id.String(), "delete")
		}
		if !deleted {
			return pkgerrors.NotFound("user", id.String())
		}
		return nil
	})
	if err != nil {
		return err
	}
	f.revokeSessions(ctx, id)
	f.logMutation(ctx, p, policy.KindUser, "deleted", id, counts.fields())
	return nil
}

// revokeSessions ends the sessions of a deleted user or one whose admin flag
// changed. The change is already committed, so a failure is only logged;
// actor still refuses stale rights on every mutation.
func (f *Facade) revokeSessions(ctx context.Context, id uuid.UUID) {
	if err := f.auth.RevokeUser(ctx, id); err != nil {
		f.logg.Error(f.logg.WithEntity(ctx, string(policy.KindUser), id.String()), "user.session_revoke_failed", err)
	}
}

type cascadeCounts struct {
	places  int64
	reviews int64
	links   int64
}

func (c cascadeCounts) fields() map[string]any {
	return map[string]any{
		"cascade_places":        c.places,
		"cascade_reviews":       c.reviews,
		"cascade_amenity_links": c.links,
	}
}
