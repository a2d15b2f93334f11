package models

import "github.com/google/uuid"

// Review is a single user's rating of a place; one per (user, place).
type Review struct {
	Base
	Text    string    `gorm:"column:text;type:text;not null"`
	Rating  int       `gorm:"column:rating;not null"`
	UserID  uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_reviews_user_place"`
	PlaceID uuid.UUID `gorm:"column:place_id;type:uuid;not null;uniqueIndex:idx_reviews_user_place;index"`
}
