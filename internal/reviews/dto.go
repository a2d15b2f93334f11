package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

type AuthorSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

type PlaceSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// ReviewDTO is the outward representation of a review with its author and
// place resolved.
type ReviewDTO struct {
	ID        uuid.UUID      `json:"id"`
	Text      string         `json:"text"`
	Rating    int            `json:"rating"`
	User      *AuthorSummary `json:"user"`
	Place     *PlaceSummary  `json:"place"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewDTO(r *models.Review, author *models.User, place *models.Place) *ReviewDTO {
	if r == nil {
		return nil
	}
	dto := &ReviewDTO{
		ID:        r.ID,
		Text:      r.Text,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if author != nil {
		dto.User = &AuthorSummary{ID: author.ID, FirstName: author.FirstName, LastName: author.LastName}
	}
	if place != nil {
		dto.Place = &PlaceSummary{ID: place.ID, Title: place.Title}
	}
	return dto
}
