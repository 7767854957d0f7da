package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"autoshop/internal/auth"
	apperrors "autoshop/internal/errors"
	"autoshop/internal/model"
	"autoshop/internal/repository"
)

const maxVINLength = 17

// TicketInput carries the fields of a new service ticket. Zero values take defaults.
type TicketInput struct {
	Title       string
	Description string
	Status      model.TicketStatus
	Priority    model.TicketPriority
	VIN         string
	ServiceDate *time.Time
	MechanicIDs []uint
	PartIDs     []uint
}

// TicketPatch is the allow-list of ticket fields an owner may change. UserID is never patchable.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *model.TicketStatus
	Priority    *model.TicketPriority
	VIN         *string
	ServiceDate *time.Time
}

// AssociationEdit is the body of an association edit: one change per collection.
type AssociationEdit struct {
	Mechanics MembershipChange
	Parts     MembershipChange
}

// AssociationResult is the full membership of both collections after an edit.
type AssociationResult struct {
	TicketID  uint
	Mechanics []Member
	Parts     []Member
}

// TicketService handles service ticket operations for their owners.
type TicketService interface {
	Create(ctx context.Context, ownerID uint, input TicketInput) (*model.ServiceTicket, error)
	List(ctx context.Context, ownerID uint, page repository.Page) (*repository.Paginated[model.ServiceTicket], error)
	Get(ctx context.Context, identity *auth.Identity, id uint) (*model.ServiceTicket, error)
	Update(ctx context.Context, identity *auth.Identity, id uint, patch TicketPatch) (*model.ServiceTicket, error)
	Delete(ctx context.Context, identity *auth.Identity, id uint) error
	EditAssociations(ctx context.Context, identity *auth.Identity, id uint, edit AssociationEdit) (*AssociationResult, error)
}

type ticketService struct {
	repos *repository.Repositories
	now   func() time.Time
}

// NewTicketService creates a new ticket service.
func NewTicketService(repos *repository.Repositories) TicketService {
	return &ticketService{repos: repos, now: time.Now}
}

// Create opens a ticket for ownerID. Every referenced mechanic and part must
// exist, otherwise nothing is written.
func (s *ticketService) Create(ctx context.Context, ownerID uint, input TicketInput) (*model.ServiceTicket, error) {
	s.applyDefaults(&input)
	if err := validateTicket(input); err != nil {
		return nil, err
	}

	var ticketID uint
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := tx.Users.FindByID(ctx, ownerID); err != nil {
			return storeError("find owner", err, apperrors.ErrUserNotFound)
		}

		mechanicIDs := dedupe(input.MechanicIDs)
		if err := resolveMechanics(ctx, tx, mechanicIDs); err != nil {
			return err
		}
		partIDs := dedupe(input.PartIDs)
		if err := resolveParts(ctx, tx, partIDs); err != nil {
			return err
		}

		ticket := &model.ServiceTicket{
			UserID:      ownerID,
			Title:       input.Title,
			Description: input.Description,
			Status:      input.Status,
			Priority:    input.Priority,
			VIN:         input.VIN,
			ServiceDate: input.ServiceDate,
		}
		if err := tx.Tickets.Create(ctx, ticket); err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}
		if err := tx.Tickets.AttachMechanics(ctx, ticket.ID, mechanicIDs); err != nil {
			return fmt.Errorf("attach mechanics: %w", err)
		}
		if err := tx.Tickets.AttachParts(ctx, ticket.ID, partIDs); err != nil {
			return fmt.Errorf("attach parts: %w", err)
		}
		ticketID = ticket.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	ticket, err := s.repos.Tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, storeError("reload ticket", err, apperrors.ErrTicketNotFound)
	}
	return ticket, nil
}

func (s *ticketService) applyDefaults(input *TicketInput) {
	if strings.TrimSpace(input.Title) == "" {
		input.Title = "Service Ticket - " + s.now().Format("2006-01-02")
	}
	if input.Status == "" {
		input.Status = model.TicketStatusPending
	}
	if input.Priority == "" {
		input.Priority = model.TicketPriorityNormal
	}
}

func validateTicket(input TicketInput) error {
	fields := make(map[string]string)
	if strings.TrimSpace(input.Description) == "" {
		fields["description"] = "is required"
	}
	if !input.Status.Valid() {
		fields["status"] = "is not a known status"
	}
	if !input.Priority.Valid() {
		fields["priority"] = "is not a known priority"
	}
	if len(input.VIN) > maxVINLength {
		fields["vin"] = fmt.Sprintf("must be at most %d characters", maxVINLength)
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError(fields)
	}
	return nil
}

func (s *ticketService) List(ctx context.Context, ownerID uint, page repository.Page) (*repository.Paginated[model.ServiceTicket], error) {
	tickets, err := s.repos.Tickets.ListByUser(ctx, ownerID, page)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// Get returns the ticket when identity owns it. A missing ticket is reported before ownership.
func (s *ticketService) Get(ctx context.Context, identity *auth.Identity, id uint) (*model.ServiceTicket, error) {
	return ownedTicket(ctx, s.repos, identity, id)
}

func (s *ticketService) Update(ctx context.Context, identity *auth.Identity, id uint, patch TicketPatch) (*model.ServiceTicket, error) {
	if _, err := ownedTicket(ctx, s.repos, identity, id); err != nil {
		return nil, err
	}

	changes, err := ticketChanges(patch)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Tickets.Update(ctx, id, changes); err != nil {
		return nil, fmt.Errorf("update ticket: %w", err)
	}

	ticket, err := s.repos.Tickets.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("reload ticket", err, apperrors.ErrTicketNotFound)
	}
	return ticket, nil
}

func ticketChanges(patch TicketPatch) (map[string]interface{}, error) {
	changes := make(map[string]interface{})
	fields := make(map[string]string)

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			fields["title"] = "must not be empty"
		}
		changes["title"] = *patch.Title
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			fields["description"] = "must not be empty"
		}
		changes["description"] = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			fields["status"] = "is not a known status"
		}
		changes["status"] = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			fields["priority"] = "is not a known priority"
		}
		changes["priority"] = *patch.Priority
	}
	if patch.VIN != nil {
		if len(*patch.VIN) > maxVINLength {
			fields["vin"] = fmt.Sprintf("must be at most %d characters", maxVINLength)
		}
		changes["vin"] = *patch.VIN
	}
	if patch.ServiceDate != nil {
		changes["service_date"] = *patch.ServiceDate
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}
	return changes, nil
}

// Delete clears both link collections and removes the ticket.
func (s *ticketService) Delete(ctx context.Context, identity *auth.Identity, id uint) error {
	return s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := ownedTicket(ctx, tx, identity, id); err != nil {
			return err
		}
		return deleteTicket(ctx, tx, id)
	})
}

// EditAssociations applies both membership changes atomically and returns the resulting lists.
func (s *ticketService) EditAssociations(ctx context.Context, identity *auth.Identity, id uint, edit AssociationEdit) (*AssociationResult, error) {
	result := &AssociationResult{TicketID: id}
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := ownedTicket(ctx, tx, identity, id); err != nil {
			return err
		}

		// Resolve everything before the first write.
		if err := resolveMechanics(ctx, tx, edit.Mechanics.referenced()); err != nil {
			return err
		}
		if err := resolveParts(ctx, tx, edit.Parts.referenced()); err != nil {
			return err
		}

		if err := applyMechanicChange(ctx, tx, id, edit.Mechanics); err != nil {
			return err
		}
		if err := applyPartChange(ctx, tx, id, edit.Parts); err != nil {
			return err
		}

		var err error
		if result.Mechanics, err = mechanicMembers(ctx, tx, id); err != nil {
			return err
		}
		result.Parts, err = partMembers(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ownedTicket(ctx context.Context, repos *repository.Repositories, identity *auth.Identity, id uint) (*model.ServiceTicket, error) {
	ticket, err := repos.Tickets.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find ticket", err, apperrors.ErrTicketNotFound)
	}
	if err := auth.RequireSelf(identity, ticket.UserID); err != nil {
		return nil, err
	}
	return ticket, nil
}

// deleteTicket must run inside a transaction.
func deleteTicket(ctx context.Context, tx *repository.Repositories, id uint) error {
	if err := tx.Tickets.ClearMechanics(ctx, id); err != nil {
		return fmt.Errorf("clear ticket mechanics: %w", err)
	}
	if err := tx.Tickets.ClearParts(ctx, id); err != nil {
		return fmt.Errorf("clear ticket parts: %w", err)
	}
	return storeError("delete ticket", tx.Tickets.Delete(ctx, id), apperrors.ErrTicketNotFound)
}

func resolveMechanics(ctx context.Context, repos *repository.Repositories, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := repos.Mechanics.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve mechanics: %w", err)
	}
	foundIDs := make([]uint, 0, len(found))
	for _, m := range found {
		foundIDs = append(foundIDs, m.ID)
	}
	return requireAll("mechanic", ids, foundIDs)
}

func resolveParts(ctx context.Context, repos *repository.Repositories, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := repos.Parts.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve parts: %w", err)
	}
	foundIDs := make([]uint, 0, len(found))
	for _, p := range found {
		foundIDs = append(foundIDs, p.ID)
	}
	return requireAll("part", ids, foundIDs)
}

func applyMechanicChange(ctx context.Context, tx *repository.Repositories, ticketID uint, change MembershipChange) error {
	if change.IsEmpty() {
		return nil
	}
	current, err := tx.Tickets.MechanicIDs(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("load ticket mechanics: %w", err)
	}
	attach, detach := planMembership(current, change)
	if err := tx.Tickets.DetachMechanics(ctx, ticketID, detach); err != nil {
		return fmt.Errorf("detach mechanics: %w", err)
	}
	if err := tx.Tickets.AttachMechanics(ctx, ticketID, attach); err != nil {
		return fmt.Errorf("attach mechanics: %w", err)
	}
	return nil
}

func applyPartChange(ctx context.Context, tx *repository.Repositories, ticketID uint, change MembershipChange) error {
	if change.IsEmpty() {
		return nil
	}
	current, err := tx.Tickets.PartIDs(ctx, ticketID)
	if err != nil {
		return fmt.Errorf("load ticket parts: %w", err)
	}
	attach, detach := planMembership(current, change)
	if err := tx.Tickets.DetachParts(ctx, ticketID, detach); err != nil {
		return fmt.Errorf("detach parts: %w", err)
	}
	if err := tx.Tickets.AttachParts(ctx, ticketID, attach); err != nil {
		return fmt.Errorf("attach parts: %w", err)
	}
	return nil
}

func mechanicMembers(ctx context.Context, repos *repository.Repositories, ticketID uint) ([]Member, error) {
	ids, err := repos.Tickets.MechanicIDs(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket mechanics: %w", err)
	}
	mechanics, err := repos.Mechanics.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load mechanics: %w", err)
	}
	members := make([]Member, 0, len(mechanics))
	for _, m := range mechanics {
		members = append(members, Member{ID: m.ID, Name: m.Name})
	}
	return members, nil
}

func partMembers(ctx context.Context, repos *repository.Repositories, ticketID uint) ([]Member, error) {
	ids, err := repos.Tickets.PartIDs(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("load ticket parts: %w", err)
	}
	parts, err := repos.Parts.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load parts: %w", err)
	}
	members := make([]Member, 0, len(parts))
	for _, p := range parts {
		members = append(members, Member{ID: p.ID, Name: p.Name})
	}
	return members, nil
}
