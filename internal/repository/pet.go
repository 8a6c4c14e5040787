package repository

import (
	"context"
	"errors"
	"time"

	"petstore-backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PetFilter enumerates the supported catalog filters. Every predicate is
// parameterized; there is no string-built SQL on this path.
type PetFilter struct {
	Type      string
	Breed     string
	Age       string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Available *bool
	Search    string
	Limit     int
	Offset    int
}

type PetRepository interface {
	List(ctx context.Context, filter PetFilter) ([]*model.Pet, error)
	FindByID(ctx context.Context, tx *gorm.DB, petID string) (*model.Pet, error)
	// MarkUnavailable flips availability only if the pet is still sellable.
	// Returns model.ErrInventoryConflict when the pet is missing or already sold.
	MarkUnavailable(ctx context.Context, tx *gorm.DB, petID string) error
}

type petRepoImpl struct {
	db *gorm.DB
}

func NewPetRepository(db *gorm.DB) PetRepository {
	return &petRepoImpl{
		db: db,
	}
}

func (r *petRepoImpl) List(ctx context.Context, filter PetFilter) ([]*model.Pet, error) {
	q := r.db.WithContext(ctx).Model(&model.Pet{})

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Breed != "" {
		q = q.Where("breed LIKE ?", "%"+filter.Breed+"%")
	}
	if filter.Age != "" {
		q = q.Where("age = ?", filter.Age)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", filter.MaxPrice)
	}
	if filter.Available != nil {
		q = q.Where("available = ?", *filter.Available)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR breed LIKE ? OR description LIKE ?", pattern, pattern, pattern)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var pets []*model.Pet
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&pets).Error
	if err != nil {
		return nil, err
	}

	return pets, nil
}

func (r *petRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, petID string) (*model.Pet, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	var pet model.Pet
	err := db.WithContext(ctx).
		Where("id = ?", petID).
		First(&pet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrPetNotFound
	}
	if err != nil {
		return nil, err
	}

	return &pet, nil
}

func (r *petRepoImpl) MarkUnavailable(ctx context.Context, tx *gorm.DB, petID string) error {
	result := tx.WithContext(ctx).Model(&model.Pet{}).
		Where("id = ? AND available = ?", petID, true).
		Updates(map[string]interface{}{
			"available":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrInventoryConflict
	}
	return nil
}
