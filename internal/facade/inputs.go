package facade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hbnb-dev/hbnb-backend/internal/auth"
)

// AdminCreateUserInput is the privileged admission payload.
type AdminCreateUserInput struct {
	auth.RegisterInput
	IsAdmin bool
}

// UpdateUserInput names every user attribute a caller may try to change.
// Nil fields are left untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	IsAdmin   *bool
}

// Fields lists the attributes the update would change.
func (in UpdateUserInput) Fields() []string {
	var out []string
	if in.FirstName != nil {
		out = append(out, "first_name")
	}
	if in.LastName != nil {
		out = append(out, "last_name")
	}
	if in.Email != nil {
		out = append(out, "email")
	}
	if in.Password != nil {
		out = append(out, "password")
	}
	if in.IsAdmin != nil {
		out = append(out, "is_admin")
	}
	return out
}

// CreatePlaceInput carries a new listing. OwnerID defaults to the caller.
type CreatePlaceInput struct {
	Title       string
	Description *string
	Price       decimal.Decimal
	Latitude    float64
	Longitude   float64
	OwnerID     *uuid.UUID
	AmenityIDs  []uuid.UUID
}

// UpdatePlaceInput is a partial place update. A non-nil AmenityIDs replaces
// the whole amenity set; an empty description clears it.
type UpdatePlaceInput struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Latitude    *float64
	Longitude   *float64
	AmenityIDs  *[]uuid.UUID
}

// CreateReviewInput carries a new review. UserID defaults to the caller.
type CreateReviewInput struct {
	Text    string
	Rating  int
	PlaceID uuid.UUID
	UserID  *uuid.UUID
}

type UpdateReviewInput struct {
	Text   *string
	Rating *int
}

type CreateAmenityInput struct {
	Name string
}

type UpdateAmenityInput struct {
	Name *string
}
