package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mechanic is a shop employee that can be assigned to service tickets.
type Mechanic struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	Name      string           `json:"name" gorm:"size:100;not null;index"`
	Phone     string           `json:"phone" gorm:"size:30;not null"`
	Specialty string           `json:"specialty" gorm:"size:100"`
	Salary    *decimal.Decimal `json:"salary,omitempty" gorm:"type:decimal(12,2)"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`

	// Relations
	ServiceTickets []ServiceTicket `json:"-" gorm:"many2many:mechanic_service_tickets"`
}
