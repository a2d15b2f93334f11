package models

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the identity and audit columns shared by every entity.
type Base struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// NewBase mints a fresh id with both timestamps set to now.
func NewBase(now time.Time) Base {
	now = now.UTC()
	return Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// EnsureBase fills in a missing id/timestamps on records built by hand.
func (b *Base) EnsureBase(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now.UTC()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
}
