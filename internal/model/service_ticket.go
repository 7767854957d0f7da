package model

import "time"

// TicketStatus is the lifecycle state of a service ticket.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusCompleted  TicketStatus = "completed"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// TicketPriority orders tickets for the shop floor.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// ServiceTicket is a repair job opened by a user. UserID is set once at creation.
type ServiceTicket struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"not null;index"`
	Title       string         `json:"title" gorm:"size:200;not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Status      TicketStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Priority    TicketPriority `json:"priority" gorm:"type:varchar(20);not null;default:'normal'"`
	VIN         string         `json:"vin,omitempty" gorm:"column:vin;size:17"`
	ServiceDate *time.Time     `json:"service_date,omitempty" gorm:"type:date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relations
	User      User       `json:"-" gorm:"foreignKey:UserID"`
	Mechanics []Mechanic `json:"-" gorm:"many2many:mechanic_service_tickets"`
	Parts     []Part     `json:"-" gorm:"many2many:ticket_parts"`
}

// Valid reports whether s is a known ticket status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusOpen, TicketStatusInProgress,
		TicketStatusCompleted, TicketStatusClosed, TicketStatusCancelled:
		return true
	}
	return false
}

// Valid reports whether p is a known ticket priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}
