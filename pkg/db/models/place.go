package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Place is a rentable listing owned by a single user.
type Place struct {
	Base
	Title       string          `gorm:"column:title;type:varchar(100);not null"`
	Description *string         `gorm:"column:description;type:text"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Latitude    float64         `gorm:"column:latitude;not null"`
	Longitude   float64         `gorm:"column:longitude;not null"`
	OwnerID     uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;index"`
}

// PlaceAmenity is a row of the place <-> amenity association table.
type PlaceAmenity struct {
	PlaceID   uuid.UUID `gorm:"column:place_id;type:uuid;primaryKey"`
	AmenityID uuid.UUID `gorm:"column:amenity_id;type:uuid;primaryKey;index"`
}

func (PlaceAmenity) TableName() string {
	return "place_amenity"
}
