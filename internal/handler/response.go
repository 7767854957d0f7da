package handler

import (
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"

	"autoshop/internal/model"
	"autoshop/internal/repository"
	"autoshop/internal/service"
)

// UserResponse is a user without credentials.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// OwnerSummary is the owner embedded in a ticket; it never carries the owner's tickets.
type OwnerSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MechanicResponse is a mechanic record.
type MechanicResponse struct {
	ID        uint         `json:"id"`
	Name      string       `json:"name"`
	Phone     string       `json:"phone"`
	Specialty string       `json:"specialty"`
	Salary    *json.Number `json:"salary,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func newMechanicResponse(m *model.Mechanic) MechanicResponse {
	resp := MechanicResponse{
		ID:        m.ID,
		Name:      m.Name,
		Phone:     m.Phone,
		Specialty: m.Specialty,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Salary != nil {
		salary := json.Number(m.Salary.String())
		resp.Salary = &salary
	}
	return resp
}

// PartResponse is an inventory record.
type PartResponse struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	PartNumber *string     `json:"part_number"`
	Price      json.Number `json:"price"`
	Quantity   *int        `json:"quantity"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func newPartResponse(p *model.Part) PartResponse {
	return PartResponse{
		ID:         p.ID,
		Name:       p.Name,
		PartNumber: p.PartNumber,
		Price:      json.Number(p.Price.String()),
		Quantity:   p.Quantity,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// PartSummary is a part embedded in a ticket.
type PartSummary struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// TicketResponse is a service ticket with its associations.
type TicketResponse struct {
	ID          uint             `json:"id"`
	UserID      uint             `json:"user_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Priority    string           `json:"priority"`
	VIN         string           `json:"vin,omitempty"`
	ServiceDate *string          `json:"service_date,omitempty"`
	User        *OwnerSummary    `json:"user,omitempty"`
	Mechanics   []service.Member `json:"mechanics"`
	Parts       []PartSummary    `json:"parts"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func newTicketResponse(t *model.ServiceTicket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		VIN:         t.VIN,
		ServiceDate: formatDate(t.ServiceDate),
		Mechanics:   make([]service.Member, 0, len(t.Mechanics)),
		Parts:       make([]PartSummary, 0, len(t.Parts)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.User.ID != 0 {
		resp.User = &OwnerSummary{ID: t.User.ID, Name: t.User.Name, Email: t.User.Email}
	}
	for _, m := range t.Mechanics {
		resp.Mechanics = append(resp.Mechanics, service.Member{ID: m.ID, Name: m.Name})
	}
	for _, p := range t.Parts {
		resp.Parts = append(resp.Parts, PartSummary{ID: p.ID, Name: p.Name, Price: json.Number(p.Price.String())})
	}
	return resp
}

func newTicketResponses(tickets []model.ServiceTicket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, newTicketResponse(&tickets[i]))
	}
	return out
}

// MechanicTicketResponse is the view of a ticket from the assigned mechanic's side.
type MechanicTicketResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	VIN         string  `json:"vin,omitempty"`
	ServiceDate *string `json:"service_date,omitempty"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// paginated renders the list envelope with items under key.
func paginated[T, R any](key string, page *repository.Paginated[T], convert func(*T) R) echo.Map {
	items := make([]R, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, convert(&page.Items[i]))
	}
	return echo.Map{
		key:            items,
		"total":        page.Total,
		"pages":        page.Pages(),
		"current_page": page.Page.Number,
		"per_page":     page.Page.Size,
		"has_next":     page.HasNext(),
		"has_prev":     page.HasPrev(),
	}
}
