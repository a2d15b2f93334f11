package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

var immutableColumns = []string{"id", "created_at"}

// PrepareChanges copies a column->value patch without the immutable columns
// and stamps updated_at.
func PrepareChanges(changes map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(changes)+1)
	for k, v := range changes {
		out[k] = v
	}
	for _, col := range immutableColumns {
		delete(out, col)
	}
	out["updated_at"] = now.UTC()
	return out
}

// UpdateByID applies a prepared patch to the row with the given id and
// returns gorm.ErrRecordNotFound when no row matched.
func UpdateByID(ctx context.Context, conn *gorm.DB, model any, id any, changes map[string]any) error {
	res := conn.WithContext(ctx).
		Model(model).
		Where("id = ?", id).
		Updates(PrepareChanges(changes, time.Now()))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByID removes the row with the given id and reports whether it existed.
func DeleteByID(ctx context.Context, conn *gorm.DB, model any, id any) (bool, error) {
	res := conn.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
