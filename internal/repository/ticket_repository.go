package repository

import (
	"context"

	"gorm.io/gorm"

	"autoshop/internal/model"
)

// TicketRepository defines service ticket persistence, including both link collections.
type TicketRepository interface {
	Create(ctx context.Context, ticket *model.ServiceTicket) error
	Update(ctx context.Context, id uint, changes map[string]interface{}) error
	FindByID(ctx context.Context, id uint) (*model.ServiceTicket, error)
	ListByUser(ctx context.Context, userID uint, page Page) (*Paginated[model.ServiceTicket], error)
	ListAllByUser(ctx context.Context, userID uint) ([]model.ServiceTicket, error)
	IDsByUser(ctx context.Context, userID uint) ([]uint, error)
	Delete(ctx context.Context, id uint) error

	MechanicIDs(ctx context.Context, ticketID uint) ([]uint, error)
	AttachMechanics(ctx context.Context, ticketID uint, mechanicIDs []uint) error
	DetachMechanics(ctx context.Context, ticketID uint, mechanicIDs []uint) error
	ClearMechanics(ctx context.Context, ticketID uint) error

	PartIDs(ctx context.Context, ticketID uint) ([]uint, error)
	AttachParts(ctx context.Context, ticketID uint, partIDs []uint) error
	DetachParts(ctx context.Context, ticketID uint, partIDs []uint) error
	ClearParts(ctx context.Context, ticketID uint) error
}

type ticketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new service ticket repository.
func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

// Create inserts the ticket row only; links are attached separately.
func (r *ticketRepository) Create(ctx context.Context, ticket *model.ServiceTicket) error {
	return r.db.WithContext(ctx).Omit("User", "Mechanics", "Parts").Create(ticket).Error
}

// Update applies column changes to a ticket.
func (r *ticketRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.ServiceTicket{ID: id}).Updates(changes).Error
}

// FindByID loads a ticket with its owner, mechanics and parts.
func (r *ticketRepository) FindByID(ctx context.Context, id uint) (*model.ServiceTicket, error) {
	var ticket model.ServiceTicket
	if err := r.db.WithContext(ctx).Scopes(withRelations).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListByUser returns one page of the user's tickets with relations.
func (r *ticketRepository) ListByUser(ctx context.Context, userID uint, page Page) (*Paginated[model.ServiceTicket], error) {
	return paginate[model.ServiceTicket](ctx, r.db.Where("user_id = ?", userID), page, withRelations)
}

// ListAllByUser returns every ticket owned by the user.
func (r *ticketRepository) ListAllByUser(ctx context.Context, userID uint) ([]model.ServiceTicket, error) {
	var tickets []model.ServiceTicket
	if err := r.db.WithContext(ctx).Scopes(withRelations).Where("user_id = ?", userID).Order("id").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// IDsByUser returns the IDs of every ticket owned by the user.
func (r *ticketRepository) IDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.ServiceTicket{}).Where("user_id = ?", userID).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Delete removes the ticket row. Links must be cleared first.
func (r *ticketRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.ServiceTicket{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MechanicIDs returns the IDs of the mechanics assigned to the ticket.
func (r *ticketRepository) MechanicIDs(ctx context.Context, ticketID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.TicketMechanic{}).
		Where("service_ticket_id = ?", ticketID).Order("mechanic_id").Pluck("mechanic_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AttachMechanics inserts link rows; callers pass only IDs not yet linked.
func (r *ticketRepository) AttachMechanics(ctx context.Context, ticketID uint, mechanicIDs []uint) error {
	if len(mechanicIDs) == 0 {
		return nil
	}
	links := make([]model.TicketMechanic, 0, len(mechanicIDs))
	for _, id := range mechanicIDs {
		links = append(links, model.TicketMechanic{ServiceTicketID: ticketID, MechanicID: id})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

// DetachMechanics deletes link rows for the given mechanics.
func (r *ticketRepository) DetachMechanics(ctx context.Context, ticketID uint, mechanicIDs []uint) error {
	if len(mechanicIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("service_ticket_id = ? AND mechanic_id IN ?", ticketID, mechanicIDs).
		Delete(&model.TicketMechanic{}).Error
}

// ClearMechanics removes every mechanic link of the ticket.
func (r *ticketRepository) ClearMechanics(ctx context.Context, ticketID uint) error {
	return r.db.WithContext(ctx).Where("service_ticket_id = ?", ticketID).Delete(&model.TicketMechanic{}).Error
}

// PartIDs returns the IDs of the parts consumed by the ticket.
func (r *ticketRepository) PartIDs(ctx context.Context, ticketID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.TicketPart{}).
		Where("service_ticket_id = ?", ticketID).Order("part_id").Pluck("part_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AttachParts inserts link rows; callers pass only IDs not yet linked.
func (r *ticketRepository) AttachParts(ctx context.Context, ticketID uint, partIDs []uint) error {
	if len(partIDs) == 0 {
		return nil
	}
	links := make([]model.TicketPart, 0, len(partIDs))
	for _, id := range partIDs {
		links = append(links, model.TicketPart{ServiceTicketID: ticketID, PartID: id})
	}
	return r.db.WithContext(ctx).Create(&links).Error
}

// DetachParts deletes link rows for the given parts.
func (r *ticketRepository) DetachParts(ctx context.Context, ticketID uint, partIDs []uint) error {
	if len(partIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("service_ticket_id = ? AND part_id IN ?", ticketID, partIDs).
		Delete(&model.TicketPart{}).Error
}

// ClearParts removes every part link of the ticket.
func (r *ticketRepository) ClearParts(ctx context.Context, ticketID uint) error {
	return r.db.WithContext(ctx).Where("service_ticket_id = ?", ticketID).Delete(&model.TicketPart{}).Error
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User").
		Preload("Mechanics", func(db *gorm.DB) *gorm.DB { return db.Order("mechanics.id") }).
		Preload("Parts", func(db *gorm.DB) *gorm.DB { return db.Order("inventory.id") })
}
