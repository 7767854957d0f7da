package repository

import (
	"context"

	"gorm.io/gorm"

	"autoshop/internal/model"
)

// PartRepository defines inventory persistence operations.
type PartRepository interface {
	Create(ctx context.Context, part *model.Part) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) error
	FindByID(ctx context.Context, id uint) (*model.Part, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Part, error)
	List(ctx context.Context, page Page) (*Paginated[model.Part], error)
	CountTicketReferences(ctx context.Context, partID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type partRepository struct {
	db *gorm.DB
}

// NewPartRepository creates a new inventory repository.
func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepository{db: db}
}

// Create creates a new part.
func (r *partRepository) Create(ctx context.Context, part *model.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

// Update applies column changes to a part.
func (r *partRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Part{ID: id}).Updates(changes).Error
}

// FindByID finds a part by ID.
func (r *partRepository) FindByID(ctx context.Context, id uint) (*model.Part, error) {
	var part model.Part
	if err := r.db.WithContext(ctx).First(&part, id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

// FindByIDs returns the parts that exist among ids, ordered by ID.
func (r *partRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Part, error) {
	parts := make([]model.Part, 0, len(ids))
	if len(ids) == 0 {
		return parts, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&parts).Error; err != nil {
		return nil, err
	}
	return parts, nil
}

// List returns one page of parts.
func (r *partRepository) List(ctx context.Context, page Page) (*Paginated[model.Part], error) {
	return paginate[model.Part](ctx, r.db, page)
}

// CountTicketReferences counts the tickets that consume the part.
func (r *partRepository) CountTicketReferences(ctx context.Context, partID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.TicketPart{}).Where("part_id = ?", partID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a part row.
func (r *partRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Part{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
