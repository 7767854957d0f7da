package repository

import (
	"context"

	"gorm.io/gorm"

	"autoshop/internal/model"
)

// MechanicRepository defines mechanic persistence operations.
type MechanicRepository interface {
	Create(ctx context.Context, mechanic *model.Mechanic) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) error
	FindByID(ctx context.Context, id uint) (*model.Mechanic, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Mechanic, error)
	List(ctx context.Context, page Page) (*Paginated[model.Mechanic], error)
	ListTickets(ctx context.Context, mechanicID uint) ([]model.ServiceTicket, error)
	ClearTicketLinks(ctx context.Context, mechanicID uint) error
	Delete(ctx context.Context, id uint) error
}

type mechanicRepository struct {
	db *gorm.DB
}

// NewMechanicRepository creates a new mechanic repository.
func NewMechanicRepository(db *gorm.DB) MechanicRepository {
	return &mechanicRepository{db: db}
}

// Create creates a new mechanic.
func (r *mechanicRepository) Create(ctx context.Context, mechanic *model.Mechanic) error {
	return r.db.WithContext(ctx).Create(mechanic).Error
}

// Update applies column changes to a mechanic.
func (r *mechanicRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Mechanic{ID: id}).Updates(changes).Error
}

// FindByID finds a mechanic by ID.
func (r *mechanicRepository) FindByID(ctx context.Context, id uint) (*model.Mechanic, error) {
	var mechanic model.Mechanic
	if err := r.db.WithContext(ctx).First(&mechanic, id).Error; err != nil {
		return nil, err
	}
	return &mechanic, nil
}

// FindByIDs returns the mechanics that exist among ids, ordered by ID.
func (r *mechanicRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Mechanic, error) {
	mechanics := make([]model.Mechanic, 0, len(ids))
	if len(ids) == 0 {
		return mechanics, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&mechanics).Error; err != nil {
		return nil, err
	}
	return mechanics, nil
}

// List returns one page of mechanics.
func (r *mechanicRepository) List(ctx context.Context, page Page) (*Paginated[model.Mechanic], error) {
	return paginate[model.Mechanic](ctx, r.db, page)
}

// ListTickets returns the tickets a mechanic is assigned to.
func (r *mechanicRepository) ListTickets(ctx context.Context, mechanicID uint) ([]model.ServiceTicket, error) {
	var tickets []model.ServiceTicket
	err := r.db.WithContext(ctx).
		Joins("JOIN mechanic_service_tickets ON mechanic_service_tickets.service_ticket_id = service_tickets.id").
		Where("mechanic_service_tickets.mechanic_id = ?", mechanicID).
		Order("service_tickets.id").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// ClearTicketLinks detaches the mechanic from every ticket.
func (r *mechanicRepository) ClearTicketLinks(ctx context.Context, mechanicID uint) error {
	return r.db.WithContext(ctx).Where("mechanic_id = ?", mechanicID).Delete(&model.TicketMechanic{}).Error
}

// Delete removes a mechanic row.
func (r *mechanicRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Mechanic{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
