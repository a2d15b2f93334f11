package controllers

import (
	"net/http"

	"github.com/hbnb-dev/hbnb-backend/api/middleware"
	"github.com/hbnb-dev/hbnb-backend/api/responses"
	"github.com/hbnb-dev/hbnb-backend/api/validators"
	"github.com/hbnb-dev/hbnb-backend/internal/facade"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

type amenityRequest struct {
	Name string `json:"name" validate:"required"`
}

func CreateAmenity(svc facade.Amenities, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "amenity service unavailable"))
			return
		}

		var body amenityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amenity, err := svc.CreateAmenity(r.Context(), middleware.PrincipalFromContext(r.Context()), facade.CreateAmenityInput{Name: body.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, amenity)
	}
}

func ListAmenities(svc facade.Amenities, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListAmenities(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetAmenity(svc facade.Amenities, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "amenityId", "amenity")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		amenity, err := svc.GetAmenity(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, amenity)
	}
}

func UpdateAmenity(svc facade.Amenities, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "amenityId", "amenity")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body amenityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		amenity, err := svc.UpdateAmenity(r.Context(), middleware.PrincipalFromContext(r.Context()), id, facade.UpdateAmenityInput{Name: &body.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, amenity)
	}
}

func DeleteAmenity(svc facade.Amenities, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "amenityId", "amenity")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteAmenity(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
