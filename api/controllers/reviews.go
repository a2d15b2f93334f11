package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/api/middleware"
	"github.com/hbnb-dev/hbnb-backend/api/responses"
	"github.com/hbnb-dev/hbnb-backend/api/validators"
	"github.com/hbnb-dev/hbnb-backend/internal/facade"
	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
	"github.com/hbnb-dev/hbnb-backend/pkg/logger"
)

type createReviewRequest struct {
	Text    string  `json:"text" validate:"required"`
	Rating  *int    `json:"rating" validate:"required"`
	PlaceID string  `json:"place_id" validate:"required,uuid"`
	UserID  *string `json:"user_id,omitempty" validate:"omitempty,uuid"`
}

func (r createReviewRequest) toInput() (facade.CreateReviewInput, error) {
	in := facade.CreateReviewInput{Text: r.Text, Rating: *r.Rating}
	placeID, err := uuid.Parse(r.PlaceID)
	if err != nil {
		return in, pkgerrors.FieldInvalid("place_id", "must be a valid id")
	}
	in.PlaceID = placeID
	if r.UserID != nil {
		userID, err := uuid.Parse(*r.UserID)
		if err != nil {
			return in, pkgerrors.FieldInvalid("user_id", "must be a valid id")
		}
		in.UserID = &userID
	}
	return in, nil
}

// updateReviewRequest omits user_id and place_id; both are fixed once the
// review exists.
type updateReviewRequest struct {
	Text   *string `json:"text,omitempty"`
	Rating *int    `json:"rating,omitempty"`
}

func CreateReview(svc facade.Reviews, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		var body createReviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		in, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.CreateReview(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

func ListReviews(svc facade.Reviews, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListReviews(r.Context(), middleware.PrincipalFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetReview(svc facade.Reviews, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "reviewId", "review")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		review, err := svc.GetReview(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

func UpdateReview(svc facade.Reviews, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "reviewId", "review")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateReviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.UpdateReview(r.Context(), middleware.PrincipalFromContext(r.Context()), id, facade.UpdateReviewInput{
			Text:   body.Text,
			Rating: body.Rating,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, review)
	}
}

func DeleteReview(svc facade.Reviews, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathUUID(r, "reviewId", "review")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteReview(r.Context(), middleware.PrincipalFromContext(r.Context()), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
