package places

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

// OwnerSummary is the nested owner view of a place.
type OwnerSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

// AmenitySummary is the nested amenity view of a place.
type AmenitySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReviewSummary is the nested review view of a place.
type ReviewSummary struct {
	ID     uuid.UUID `json:"id"`
	Text   string    `json:"text"`
	Rating int       `json:"rating"`
	UserID uuid.UUID `json:"user_id"`
}

// PlaceDTO is the outward representation of a place with resolved references.
type PlaceDTO struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Price       float64          `json:"price"`
	Latitude    float64          `json:"latitude"`
	Longitude   float64          `json:"longitude"`
	Owner       *OwnerSummary    `json:"owner"`
	Amenities   []AmenitySummary `json:"amenities"`
	Reviews     []ReviewSummary  `json:"reviews"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewDTO assembles the outward view. owner may be nil if it vanished
// between reads; amenities are expected in display order.
func NewDTO(p *models.Place, owner *models.User, amenities []models.Amenity) *PlaceDTO {
	if p == nil {
		return nil
	}
	dto := &PlaceDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Amenities:   make([]AmenitySummary, 0, len(amenities)),
		Reviews:     []ReviewSummary{},
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if owner != nil {
		dto.Owner = &OwnerSummary{
			ID:        owner.ID,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
			Email:     owner.Email,
		}
	}
	for _, a := range amenities {
		dto.Amenities = append(dto.Amenities, AmenitySummary{ID: a.ID, Name: a.Name})
	}
	return dto
}

// WithReviews replaces the nested reviews, keeping their order.
func (d *PlaceDTO) WithReviews(list []models.Review) *PlaceDTO {
	d.Reviews = make([]ReviewSummary, 0, len(list))
	for _, r := range list {
		d.Reviews = append(d.Reviews, ReviewSummary{ID: r.ID, Text: r.Text, Rating: r.Rating, UserID: r.UserID})
	}
	return d
}
