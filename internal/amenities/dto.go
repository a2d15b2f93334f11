package amenities

import (
	"time"

	"github.com/google/uuid"

	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

type AmenityDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	OwnerID   *uuid.UUID `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func FromModel(a *models.Amenity) *AmenityDTO {
	if a == nil {
		return nil
	}
	return &AmenityDTO{
		ID:        a.ID,
		Name:      a.Name,
		OwnerID:   a.OwnerID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func FromModels(list []models.Amenity) []AmenityDTO {
	out := make([]AmenityDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
