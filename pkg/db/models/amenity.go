package models

import "github.com/google/uuid"

// Amenity is a named tag attached to places. OwnerID records the creating
// user and is cleared when that user is deleted.
type Amenity struct {
	Base
	Name    string     `gorm:"column:name;type:varchar(50);not null;uniqueIndex"`
	OwnerID *uuid.UUID `gorm:"column:owner_id;type:uuid;index"`
}
