package reviews

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

// Repository persists reviews.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	review.EnsureBase(time.Now())
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// FindByUserAndPlace returns the single review a user left on a place.
func (r *Repository) FindByUserAndPlace(ctx context.Context, userID, placeID uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Review, error) {
	var out []models.Review
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) ListByPlace(ctx context.Context, placeID uuid.UUID) ([]models.Review, error) {
	var out []models.Review
	if err := r.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GroupByPlaces loads the reviews of every place in placeIDs in one query,
// oldest first within each place.
func (r *Repository) GroupByPlaces(ctx context.Context, placeIDs []uuid.UUID) (map[uuid.UUID][]models.Review, error) {
	out := make(map[uuid.UUID][]models.Review, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}
	var list []models.Review
	if err := r.db.WithContext(ctx).
		Where("place_id IN ?", placeIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	for _, review := range list {
		out[review.PlaceID] = append(out[review.PlaceID], review)
	}
	return out, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Review, error) {
	if err := db.UpdateByID(ctx, r.db, &models.Review{}, id, changes); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return db.DeleteByID(ctx, r.db, &models.Review{}, id)
}

// DeleteByPlaces removes every review on the given places.
func (r *Repository) DeleteByPlaces(ctx context.Context, placeIDs ...uuid.UUID) (int64, error) {
	if len(placeIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("place_id IN ?", placeIDs).Delete(&models.Review{})
	return res.RowsAffected, res.Error
}

// DeleteByUser removes every review authored by userID.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Review{})
	return res.RowsAffected, res.Error
}
