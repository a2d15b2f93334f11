// Package validation holds the field-level invariants of every entity. The
// checks are pure, fail on the first violation and always name the field.
package validation

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

const (
	MaxPersonNameLen  = 50
	MaxPlaceTitleLen  = 100
	MaxAmenityNameLen = 50
	MinRating         = 1
	MaxRating         = 5
	MinLatitude       = -90.0
	MaxLatitude       = 90.0
	MinLongitude      = -180.0
	MaxLongitude      = 180.0
	MinPasswordLen    = 8
	MaxPasswordLen    = 128
)

// maxPrice is the first value that no longer fits numeric(12,2).
var maxPrice = decimal.New(1, 10)

var validate = validator.New()

type UserFields struct {
	FirstName string
	LastName  string
	Email     string
}

type PlaceFields struct {
	Title       string
	Description *string
	Price       decimal.Decimal
	Latitude    float64
	Longitude   float64
}

type ReviewFields struct {
	Text   string
	Rating int
}

type AmenityFields struct {
	Name string
}

// User checks names and that Email is already normalized and well formed.
func User(f UserFields) error {
	if err := boundedText("first_name", f.FirstName, MaxPersonNameLen); err != nil {
		return err
	}
	if err := boundedText("last_name", f.LastName, MaxPersonNameLen); err != nil {
		return err
	}
	if _, err := NormalizeEmail(f.Email); err != nil {
		return err
	}
	return nil
}

// NormalizeEmail trims and lower-cases raw after checking its syntax.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", pkgerrors.FieldInvalid("email", "is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", pkgerrors.FieldInvalid("email", "must be a valid email address")
	}
	return email, nil
}

// Password enforces the length window on a plaintext secret.
func Password(secret string) error {
	n := utf8.RuneCountInString(secret)
	switch {
	case strings.TrimSpace(secret) == "":
		return pkgerrors.FieldInvalid("password", "is required")
	case n < MinPasswordLen:
		return pkgerrors.FieldInvalid("password", "must be at least 8 characters")
	case n > MaxPasswordLen:
		return pkgerrors.FieldInvalid("password", "must be at most 128 characters")
	}
	return nil
}

func Place(f PlaceFields) error {
	if err := boundedText("title", f.Title, MaxPlaceTitleLen); err != nil {
		return err
	}
	if f.Price.IsNegative() {
		return pkgerrors.FieldInvalid("price", "must be greater than or equal to 0")
	}
	if f.Price.GreaterThanOrEqual(maxPrice) {
		return pkgerrors.FieldInvalid("price", "must be less than 10000000000")
	}
	if math.IsNaN(f.Latitude) || f.Latitude < MinLatitude || f.Latitude > MaxLatitude {
		return pkgerrors.FieldInvalid("latitude", "must be between -90 and 90")
	}
	if math.IsNaN(f.Longitude) || f.Longitude < MinLongitude || f.Longitude > MaxLongitude {
		return pkgerrors.FieldInvalid("longitude", "must be between -180 and 180")
	}
	return nil
}

func Review(f ReviewFields) error {
	if strings.TrimSpace(f.Text) == "" {
		return pkgerrors.FieldInvalid("text", "is required")
	}
	if f.Rating < MinRating || f.Rating > MaxRating {
		return pkgerrors.FieldInvalid("rating", "must be between 1 and 5")
	}
	return nil
}

func Amenity(f AmenityFields) error {
	return boundedText("name", f.Name, MaxAmenityNameLen)
}

func boundedText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return pkgerrors.FieldInvalid(field, "is required")
	}
	if utf8.RuneCountInString(value) > max {
		return pkgerrors.FieldInvalid(field, "must be at most "+strconv.Itoa(max)+" characters")
	}
	return nil
}
