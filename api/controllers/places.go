package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hbnb-dev/hbnb-backend/api/middleware"
	"github.com/hbnb-dev/hbnb-backend/api/responses"
	"github.com/hbnb-dev/hbnb-backend/api/validators"
	"github.com/hbnb-dev/hbnb-backend/internal/facade"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

type createPlaceRequest struct {
	Title       string           `json:"title" validate:"required"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Latitude    *float64         `json:"latitude" validate:"required"`
	Longitude   *float64         `json:"longitude" validate:"required"`
	OwnerID     *string          `json:"owner_id,omitempty" validate:"omitempty,uuid"`
	Amenities   []string         `json:"amenities,omitempty"`
}

func (r createPlaceRequest) toInput() (facade.CreatePlaceInput, error) {
	in := facade.CreatePlaceInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       *r.Price,
		Latitude:    *r.Latitude,
		Longitude:   *r.Longitude,
	}
	if r.OwnerID != nil {
		owner, err := uuid.Parse(*r.OwnerID)
		if err != nil {
			return in, pkgerrors.FieldInvalid("owner_id", "must be a valid id")
		}
		in.OwnerID = &owner
	}
	ids, err := validators.ParseUUIDs("amenities", r.Amenities)
	if err != nil {
		return in, err
	}
	in.AmenityIDs = ids
	return in, nil
}

// updatePlaceRequest has no owner_id: ownership is immutable and the
// decoder rejects the key as unknown.
type updatePlaceRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Latitude    *float64         `json:"latitude,omitempty"`
	Longitude   *float64         `json:"longitude,omitempty"`
	Amenities   *[]string        `json:"amenities,omitempty"`
}

func (r updatePlaceRequest) toInput() (facade.UpdatePlaceInput, error) {
	in := facade.UpdatePlaceInput{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
	if r.Amenities != nil {
		ids, err := validators.ParseUUIDs("amenities", *r.Amenities)
		if err != nil {
			return in, err
		}
		in.AmenityIDs = &ids
	}
	return in, nil
}

func CreatePlace(svc facade.Places, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "place service unavailable"))
			return
		}

		var body createPlaceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		place, err := svc.CreatePlace(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, place)
	}
}

func ListPlaces(svc facade.Places, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListPlaces(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetPlace(svc facade.Places, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "placeId", "place")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		place, err := svc.GetPlace(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, place)
	}
}

func UpdatePlace(svc facade.Places, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "placeId", "place")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updatePlaceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		place, err := svc.UpdatePlace(r.Context(), middleware.PrincipalFromContext(r.Context()), id, in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, place)
	}
}

func DeletePlace(svc facade.Places, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "placeId", "place")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeletePlace(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func ListPlaceReviews(svc facade.Places, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "placeId", "place")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListPlaceReviews(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
