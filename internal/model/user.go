package model

import "time"

// User is a shop customer. Users own service tickets and may carry the admin flag.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:100;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:150;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Phone        string    `json:"phone" gorm:"size:30;not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"default:false;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	ServiceTickets []ServiceTicket `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
