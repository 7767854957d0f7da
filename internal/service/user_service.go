package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"autoshop/internal/auth"
	"autoshop/internal/cache"
	apperrors "autoshop/internal/errors"
	"autoshop/internal/model"
	"autoshop/internal/repository"
)

const (
	userCacheTTL      = 5 * time.Minute
	minPasswordLength = 6
)

// UserPatch is the allow-list of user fields a client may change. Nil means untouched.
type UserPatch struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
}

// UserService exposes user domain operations.
type UserService interface {
	List(ctx context.Context, page repository.Page) (*repository.Paginated[model.User], error)
	Get(ctx context.Context, id uint) (*model.User, error)
	Update(ctx context.Context, id uint, patch UserPatch) (*model.User, error)
	Delete(ctx context.Context, id uint) error
	Tickets(ctx context.Context, userID uint) ([]model.ServiceTicket, error)
}

type userService struct {
	repos  *repository.Repositories
	hasher *auth.PasswordHasher
	cache  cache.Store
}

// NewUserService builds a UserService with repositories and cache.
func NewUserService(repos *repository.Repositories, hasher *auth.PasswordHasher, cache cache.Store) UserService {
	return &userService{repos: repos, hasher: hasher, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) List(ctx context.Context, page repository.Page) (*repository.Paginated[model.User], error) {
	users, err := s.repos.Users.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("find user", err, apperrors.ErrUserNotFound)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id uint, patch UserPatch) (*model.User, error) {
	changes, err := s.userChanges(patch)
	if err != nil {
		return nil, err
	}

	if _, err := s.repos.Users.FindByID(ctx, id); err != nil {
		return nil, storeError("find user", err, apperrors.ErrUserNotFound)
	}
	if err := s.repos.Users.Update(ctx, id, changes); err != nil {
		if isDuplicate(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	user, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("reload user", err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

// userChanges validates the patch and turns it into a column map.
func (s *userService) userChanges(patch UserPatch) (map[string]interface{}, error) {
	changes := make(map[string]interface{})
	fields := make(map[string]string)

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			fields["name"] = "must not be empty"
		}
		changes["name"] = *patch.Name
	}
	if patch.Email != nil {
		if !strings.Contains(*patch.Email, "@") {
			fields["email"] = "must be a valid email"
		}
		changes["email"] = *patch.Email
	}
	if patch.Phone != nil {
		if strings.TrimSpace(*patch.Phone) == "" {
			fields["phone"] = "must not be empty"
		}
		changes["phone"] = *patch.Phone
	}
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			fields["password"] = fmt.Sprintf("must be at least %d characters", minPasswordLength)
		} else {
			digest, err := s.hasher.Hash(*patch.Password)
			if err != nil {
				return nil, err
			}
			changes["password_hash"] = digest
		}
	}

	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}
	return changes, nil
}

// Delete removes the user and every ticket it owns, clearing ticket links first.
func (s *userService) Delete(ctx context.Context, id uint) error {
	err := s.repos.WithTransaction(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if _, err := tx.Users.FindByID(ctx, id); err != nil {
			return storeError("find user", err, apperrors.ErrUserNotFound)
		}

		ticketIDs, err := tx.Tickets.IDsByUser(ctx, id)
		if err != nil {
			return fmt.Errorf("list user tickets: %w", err)
		}
		for _, ticketID := range ticketIDs {
			if err := deleteTicket(ctx, tx, ticketID); err != nil {
				return err
			}
		}

		return storeError("delete user", tx.Users.Delete(ctx, id), apperrors.ErrUserNotFound)
	})
	if err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *userService) Tickets(ctx context.Context, userID uint) ([]model.ServiceTicket, error) {
	tickets, err := s.repos.Tickets.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user tickets: %w", err)
	}
	return tickets, nil
}
