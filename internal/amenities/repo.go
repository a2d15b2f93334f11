package amenities

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

// Repository persists amenities.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, amenity *models.Amenity) error {
	amenity.EnsureBase(time.Now())
	return r.db.WithContext(ctx).Create(amenity).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Amenity, error) {
	var amenity models.Amenity
	if err := r.db.WithContext(ctx).First(&amenity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &amenity, nil
}

// FindByName matches names case-insensitively.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Amenity, error) {
	var amenity models.Amenity
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&amenity).Error; err != nil {
		return nil, err
	}
	return &amenity, nil
}

// FindByIDs loads every amenity in ids; missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Amenity, error) {
	var out []models.Amenity
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Amenity, error) {
	var out []models.Amenity
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Amenity, error) {
	if err := db.UpdateByID(ctx, r.db, &models.Amenity{}, id, changes); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return db.DeleteByID(ctx, r.db, &models.Amenity{}, id)
}

// ClearOwner drops the creator reference from amenities created by ownerID.
func (r *Repository) ClearOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Amenity{}).
		Where("owner_id = ?", ownerID).
		Updates(map[string]any{"owner_id": nil, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}
