package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "autoshop/internal/errors"
	"autoshop/internal/model"
	"autoshop/internal/repository"
)

// MechanicInput carries the fields of a new mechanic.
type MechanicInput struct {
	Name      string
	Phone     string
	Specialty string
	Salary    *decimal.Decimal
}

// MechanicPatch is the allow-list of mechanic fields an admin may change.
type MechanicPatch struct {
	Name      *string
	Phone     *string
	Specialty *string
	Salary    *decimal.Decimal
}

// MechanicService handles mechanic management and ticket assignment.
type MechanicService interface {
	Create(ctx context.Context, input MechanicInput) (*model.Mechanic, error)
	List(ctx context.Context, page repository.Page) (*repository.Paginated[model.Mechanic], error)
	Get(ctx context.Context, id uint) (*model.Mechanic, error)
	Update(ctx context.Context, id uint, patch MechanicPatch) (*model.Mechanic, error)
	Delete(ctx context.Context, id uint) error
	AssignTicket(ctx context.Context, mechanicID, ticketID uint) ([]Member, error)
	Tickets(ctx context.Context, mechanicID uint) ([]model.ServiceTicket, error)
}

type mechanicService struct {
	repos *repository.Repositories
}

// NewMechanicService creates a new mechanic service.
func NewMechanicService(repos *repository.Repositories) MechanicService {
	return &mechanicService{repos: repos}
}

func (s *mechanicService) Create(ctx context.Context, input MechanicInput) (*model.Mechanic, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "is required"
	}
	if strings.TrimSpace(input.Phone) == "" {
		fields["phone"] = "is required"
	}
	if input.Salary != nil && input.Salary.IsNegative() {
		fields["salary"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	mechanic := &model.Mechanic{
		Name:      input.Name,
		Phone:     input.Phone,
		Specialty: input.Specialty,
		Salary:    input.Salary,
	}
	if err := s.repos.Mechanics.Create(ctx, mechanic); err != nil {
		return nil, fmt.Errorf("create mechanic: %w", err)
	}
	return mechanic, nil
}

func (s *mechanicService) List(ctx context.Context, page repository.Page) (*repository.Paginated[model.Mechanic], error) {
	mechanics, err := s.repos.Mechanics.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list mechanics: %w", err)
	}
	return mechanics, nil
}

func (s *mechanicService) Get(ctx context.Context, id uint) (*model.Mechanic, error) {
	mechanic, err := s.repos.Mechanics.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find mechanic", err, apperrors.ErrMechanicNotFound)
	}
	return mechanic, nil
}

func (s *mechanicService) Update(ctx context.Context, id uint, patch MechanicPatch) (*model.Mechanic, error) {
	changes := make(map[string]interface{})
	fields := make(map[string]string)
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			fields["name"] = "must not be empty"
		}
		changes["name"] = *patch.Name
	}
	if patch.Phone != nil {
		if strings.TrimSpace(*patch.Phone) == "" {
			fields["phone"] = "must not be empty"
		}
		changes["phone"] = *patch.Phone
	}
	if patch.Specialty != nil {
		changes["specialty"] = *patch.Specialty
	}
	if patch.Salary != nil {
		if patch.Salary.IsNegative() {
			fields["salary"] = "must not be negative"
		}
		changes["salary"] = *patch.Salary
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	if _, err := s.repos.Mechanics.FindByID(ctx, id); err != nil {
		return nil, storeError("find mechanic", err, apperrors.ErrMechanicNotFound)
	}
	if err := s.repos.Mechanics.Update(ctx, id, changes); err != nil {
		return nil, fmt.Errorf("update mechanic: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete detaches the mechanic from every ticket, then removes it.
func (s *mechanicService) Delete(ctx context.Context, id uint) error {
	return s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := tx.Mechanics.FindByID(ctx, id); err != nil {
			return storeError("find mechanic", err, apperrors.ErrMechanicNotFound)
		}
		if err := tx.Mechanics.ClearTicketLinks(ctx, id); err != nil {
			return fmt.Errorf("clear mechanic links: %w", err)
		}
		return storeError("delete mechanic", tx.Mechanics.Delete(ctx, id), apperrors.ErrMechanicNotFound)
	})
}

// AssignTicket adds the mechanic to the ticket. Assigning twice is a no-op.
// It returns the ticket's resulting mechanic list.
func (s *mechanicService) AssignTicket(ctx context.Context, mechanicID, ticketID uint) ([]Member, error) {
	var members []Member
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := tx.Mechanics.FindByID(ctx, mechanicID); err != nil {
			return storeError("find mechanic", err, apperrors.ErrMechanicNotFound)
		}
		if _, err := tx.Tickets.FindByID(ctx, ticketID); err != nil {
			return storeError("find ticket", err, apperrors.ErrTicketNotFound)
		}
		if err := applyMechanicChange(ctx, tx, ticketID, MembershipChange{Add: []uint{mechanicID}}); err != nil {
			return err
		}
		var err error
		members, err = mechanicMembers(ctx, tx, ticketID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *mechanicService) Tickets(ctx context.Context, mechanicID uint) ([]model.ServiceTicket, error) {
	if _, err := s.repos.Mechanics.FindByID(ctx, mechanicID); err != nil {
		return nil, storeError("find mechanic", err, apperrors.ErrMechanicNotFound)
	}
	tickets, err := s.repos.Mechanics.ListTickets(ctx, mechanicID)
	if err != nil {
		return nil, fmt.Errorf("list mechanic tickets: %w", err)
	}
	return tickets, nil
}
