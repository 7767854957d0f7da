package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part is an inventory item consumed by service tickets.
type Part struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"size:100;not null;index"`
	PartNumber *string         `json:"part_number,omitempty" gorm:"uniqueIndex;size:64"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Quantity   *int            `json:"quantity,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Relations
	ServiceTickets []ServiceTicket `json:"-" gorm:"many2many:ticket_parts"`
}

// TableName keeps the inventory table name used by existing deployments.
func (Part) TableName() string {
	return "inventory"
}
