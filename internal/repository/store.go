package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the per-entity repositories bound to one connection or transaction.
type Repositories struct {
	Users     UserRepository
	Mechanics MechanicRepository
	Parts     PartRepository
	Tickets   TicketRepository

	db *gorm.DB
}

// New creates the repository set over db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(db),
		Mechanics: NewMechanicRepository(db),
		Parts:     NewPartRepository(db),
		Tickets:   NewTicketRepository(db),
		db:        db,
	}
}

// WithTransaction executes fn with repositories bound to a single database transaction.
// Any error returned by fn rolls the whole transaction back.
func (r *Repositories) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, New(tx))
	})
}
