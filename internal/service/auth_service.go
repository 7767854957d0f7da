package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"autoshop/internal/auth"
	apperrors "autoshop/internal/errors"
	"autoshop/internal/model"
	"autoshop/internal/repository"
)

// RegisterInput carries the fields required to create a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	Logout(ctx context.Context, identity *auth.Identity) error
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	hasher     *auth.PasswordHasher
	tokenStore auth.TokenStoreInterface
	now        func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	jwtService *auth.JWTService,
	hasher *auth.PasswordHasher,
	tokenStore auth.TokenStoreInterface,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		hasher:     hasher,
		tokenStore: tokenStore,
		now:        time.Now,
	}
}

// Register creates a new user with a hashed password.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: digest,
		Phone:        input.Phone,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.IssueToken(user.ID, user.IsAdmin)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, identity *auth.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return apperrors.ErrTokenInvalid
	}
	ttl := identity.ExpiresAt.Sub(s.now())
	if err := s.tokenStore.RevokeToken(ctx, identity.TokenID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token and rejects revoked ones.
func (s *authService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	identity, err := s.jwtService.ResolveToken(token)
	if err != nil {
		return nil, err
	}
	if identity.TokenID != "" {
		revoked, err := s.tokenStore.IsTokenRevoked(ctx, identity.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, apperrors.ErrTokenRevoked
		}
	}
	return identity, nil
}
