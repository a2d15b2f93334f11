package places

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hbnb-dev/hbnb-backend/pkg/db"
	"github.com/hbnb-dev/hbnb-backend/pkg/db/models"
)

// Repository persists places and their amenity links.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a place; ids and timestamps are filled in when missing.
func (r *Repository) Create(ctx context.Context, place *models.Place) error {
	place.EnsureBase(time.Now())
	return r.db.WithContext(ctx).Create(place).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Place, error) {
	var place models.Place
	if err := r.db.WithContext(ctx).First(&place, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &place, nil
}

// FindByIDs loads every place in ids; missing ids are simply absent.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Place, error) {
	var out []models.Place
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) List(ctx context.Context) ([]models.Place, error) {
	var out []models.Place
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// IDsByOwner returns the ids of every place owned by ownerID.
func (r *Repository) IDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Place{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, changes map[string]any) (*models.Place, error) {
	if err := db.UpdateByID(ctx, r.db, &models.Place{}, id, changes); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return db.DeleteByID(ctx, r.db, &models.Place{}, id)
}

// DeleteByOwner removes every place owned by ownerID.
func (r *Repository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Place{})
	return res.RowsAffected, res.Error
}

// ReplaceAmenities swaps the place's amenity set for amenityIDs.
func (r *Repository) ReplaceAmenities(ctx context.Context, placeID uuid.UUID, amenityIDs []uuid.UUID) error {
	if _, err := r.DeleteAmenityLinks(ctx, placeID); err != nil {
		return err
	}
	if len(amenityIDs) == 0 {
		return nil
	}
	links := make([]models.PlaceAmenity, 0, len(amenityIDs))
	for _, id := range amenityIDs {
		links = append(links, models.PlaceAmenity{PlaceID: placeID, AmenityID: id})
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

// DeleteAmenityLinks detaches the given places from every amenity.
func (r *Repository) DeleteAmenityLinks(ctx context.Context, placeIDs ...uuid.UUID) (int64, error) {
	if len(placeIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("place_id IN ?", placeIDs).Delete(&models.PlaceAmenity{})
	return res.RowsAffected, res.Error
}

// DetachAmenity removes an amenity from every place that references it.
func (r *Repository) DetachAmenity(ctx context.Context, amenityID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("amenity_id = ?", amenityID).Delete(&models.PlaceAmenity{})
	return res.RowsAffected, res.Error
}

// AmenitiesFor loads the amenities attached to each place in placeIDs,
// ordered by name.
func (r *Repository) AmenitiesFor(ctx context.Context, placeIDs []uuid.UUID) (map[uuid.UUID][]models.Amenity, error) {
	out := make(map[uuid.UUID][]models.Amenity, len(placeIDs))
	if len(placeIDs) == 0 {
		return out, nil
	}

	var links []models.PlaceAmenity
	if err := r.db.WithContext(ctx).Where("place_id IN ?", placeIDs).Find(&links).Error; err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return out, nil
	}

	amenityIDs := make([]uuid.UUID, 0, len(links))
	seen := make(map[uuid.UUID]struct{}, len(links))
	for _, link := range links {
		if _, ok := seen[link.AmenityID]; ok {
			continue
		}
		seen[link.AmenityID] = struct{}{}
		amenityIDs = append(amenityIDs, link.AmenityID)
	}

	var amenities []models.Amenity
	if err := r.db.WithContext(ctx).
		Where("id IN ?", amenityIDs).
		Order("name ASC").
		Find(&amenities).Error; err != nil {
		return nil, err
	}

	byPlace := make(map[uuid.UUID]map[uuid.UUID]struct{}, len(placeIDs))
	for _, link := range links {
		if byPlace[link.PlaceID] == nil {
			byPlace[link.PlaceID] = make(map[uuid.UUID]struct{})
		}
		byPlace[link.PlaceID][link.AmenityID] = struct{}{}
	}
	for _, placeID := range placeIDs {
		attached := byPlace[placeID]
		for _, amenity := range amenities {
			if _, ok := attached[amenity.ID]; ok {
				out[placeID] = append(out[placeID], amenity)
			}
		}
	}
	return out, nil
}
