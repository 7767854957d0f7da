package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"autoshop/internal/auth"
	apperrors "autoshop/internal/errors"
	"autoshop/internal/model"
	"autoshop/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 42
	}
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, id uint, changes map[string]interface{}) error {
	args := m.Called(ctx, id, changes)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, page repository.Page) (*repository.Paginated[model.User], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Paginated[model.User]), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func newTestAuthService(repo *MockUserRepository, store *MockTokenStore) (*authService, *auth.JWTService) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	svc := NewAuthService(repo, jwtService, auth.NewPasswordHasher(4), store).(*authService)
	return svc, jwtService
}

func TestAuthService_Register(t *testing.T) {
	input := RegisterInput{Name: "Test User", Email: "test@example.com", Password: "password123", Phone: "555-0100"}

	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "successful registration",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name: "email already registered",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{Email: "test@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name: "concurrent registration hits unique index",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			svc, _ := newTestAuthService(mockRepo, new(MockTokenStore))

			user, err := svc.Register(context.Background(), input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, input.Email, user.Email)
				assert.Equal(t, input.Name, user.Name)
				assert.False(t, user.IsAdmin)
				assert.NotEqual(t, input.Password, user.PasswordHash)
				assert.True(t, auth.NewPasswordHasher(4).Verify(input.Password, user.PasswordHash))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	digest, err := auth.NewPasswordHasher(4).Hash("password123")
	require.NoError(t, err)
	stored := &model.User{ID: 7, Email: "test@example.com", PasswordHash: digest, IsAdmin: true}

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "nope-nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(stored, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "store failure is not a credential error",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, errors.New("connection reset"))
			},
			expectedError: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			svc, jwtService := newTestAuthService(mockRepo, new(MockTokenStore))

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				identity, err := jwtService.ResolveToken(token)
				require.NoError(t, err)
				assert.Equal(t, stored.ID, identity.UserID)
				assert.True(t, identity.IsAdmin)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockStore := new(MockTokenStore)
	svc, jwtService := newTestAuthService(mockRepo, mockStore)

	token, err := jwtService.IssueToken(3, false)
	require.NoError(t, err)
	resolved, err := jwtService.ResolveToken(token)
	require.NoError(t, err)

	mockStore.On("IsTokenRevoked", mock.Anything, resolved.TokenID).Return(false, nil).Once()
	identity, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), identity.UserID)

	mockStore.On("IsTokenRevoked", mock.Anything, resolved.TokenID).Return(true, nil).Once()
	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenMalformed)

	mockStore.AssertExpectations(t)
}

func TestAuthService_Logout(t *testing.T) {
	mockStore := new(MockTokenStore)
	svc, _ := newTestAuthService(new(MockUserRepository), mockStore)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	identity := &auth.Identity{UserID: 1, TokenID: "jti-1", ExpiresAt: now.Add(30 * time.Minute)}
	mockStore.On("RevokeToken", mock.Anything, "jti-1", 30*time.Minute).Return(nil)

	require.NoError(t, svc.Logout(context.Background(), identity))
	assert.ErrorIs(t, svc.Logout(context.Background(), &auth.Identity{UserID: 1}), apperrors.ErrTokenInvalid)
	mockStore.AssertExpectations(t)
}
