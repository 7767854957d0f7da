package model

import "time"

// TicketMechanic is the join row between a service ticket and an assigned mechanic.
type TicketMechanic struct {
	ServiceTicketID uint      `gorm:"primaryKey"`
	MechanicID      uint      `gorm:"primaryKey"`
	CreatedAt       time.Time
}

// TableName implements gorm's tabler.
func (TicketMechanic) TableName() string {
	return "mechanic_service_tickets"
}

// TicketPart is the join row between a service ticket and a consumed part.
type TicketPart struct {
	ServiceTicketID uint      `gorm:"primaryKey"`
	PartID          uint      `gorm:"primaryKey"`
	CreatedAt       time.Time
}

// TableName implements gorm's tabler.
func (TicketPart) TableName() string {
	return "ticket_parts"
}
