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

// PartInput carries the fields of a new inventory part.
type PartInput struct {
	Name       string
	PartNumber *string
	Price      decimal.Decimal
	Quantity   *int
}

// PartPatch is the allow-list of part fields an admin may change.
type PartPatch struct {
	Name       *string
	PartNumber *string
	Price      *decimal.Decimal
	Quantity   *int
}

// InventoryService handles the parts catalog.
type InventoryService interface {
	Create(ctx context.Context, input PartInput) (*model.Part, error)
	List(ctx context.Context, page repository.Page) (*repository.Paginated[model.Part], error)
	Get(ctx context.Context, id uint) (*model.Part, error)
	Update(ctx context.Context, id uint, patch PartPatch) (*model.Part, error)
	Delete(ctx context.Context, id uint) error
}

type inventoryService struct {
	repos *repository.Repositories
}

// NewInventoryService creates a new inventory service.
func NewInventoryService(repos *repository.Repositories) InventoryService {
	return &inventoryService{repos: repos}
}

func (s *inventoryService) Create(ctx context.Context, input PartInput) (*model.Part, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(input.Name) == "" {
		fields["name"] = "is required"
	}
	if input.Price.IsNegative() {
		fields["price"] = "must not be negative"
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		fields["quantity"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	part := &model.Part{
		Name:       input.Name,
		PartNumber: normalizePartNumber(input.PartNumber),
		Price:      input.Price,
		Quantity:   input.Quantity,
	}
	if err := s.repos.Parts.Create(ctx, part); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.ErrPartNumberTaken
		}
		return nil, fmt.Errorf("create part: %w", err)
	}
	return part, nil
}

func (s *inventoryService) List(ctx context.Context, page repository.Page) (*repository.Paginated[model.Part], error) {
	parts, err := s.repos.Parts.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	return parts, nil
}

func (s *inventoryService) Get(ctx context.Context, id uint) (*model.Part, error) {
	part, err := s.repos.Parts.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find part", err, apperrors.ErrPartNotFound)
	}
	return part, nil
}

// Update applies only the supplied fields; a price-only patch leaves name and quantity alone.
func (s *inventoryService) Update(ctx context.Context, id uint, patch PartPatch) (*model.Part, error) {
	changes := make(map[string]interface{})
	fields := make(map[string]string)
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			fields["name"] = "must not be empty"
		}
		changes["name"] = *patch.Name
	}
	if patch.PartNumber != nil {
		changes["part_number"] = normalizePartNumber(patch.PartNumber)
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			fields["price"] = "must not be negative"
		}
		changes["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			fields["quantity"] = "must not be negative"
		}
		changes["quantity"] = *patch.Quantity
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	if _, err := s.repos.Parts.FindByID(ctx, id); err != nil {
		return nil, storeError("find part", err, apperrors.ErrPartNotFound)
	}
	if err := s.repos.Parts.Update(ctx, id, changes); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.ErrPartNumberTaken
		}
		return nil, fmt.Errorf("update part: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete refuses while any ticket still references the part.
func (s *inventoryService) Delete(ctx context.Context, id uint) error {
	return s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := tx.Parts.FindByID(ctx, id); err != nil {
			return storeError("find part", err, apperrors.ErrPartNotFound)
		}
		count, err := tx.Parts.CountTicketReferences(ctx, id)
		if err != nil {
			return fmt.Errorf("count part references: %w", err)
		}
		if count > 0 {
			return &apperrors.PartInUseError{TicketCount: count}
		}
		return storeError("delete part", tx.Parts.Delete(ctx, id), apperrors.ErrPartNotFound)
	})
}

// normalizePartNumber maps a blank part number to NULL so it never collides on the unique index.
func normalizePartNumber(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
