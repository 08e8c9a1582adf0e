package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"expenseflow/internal/apperrors"
	"expenseflow/internal/auth"
	"expenseflow/internal/authz"
	"expenseflow/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
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

func (m *MockUserRepository) EmailTakenByOther(ctx context.Context, email string, excludeID uint) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uint, name, email string) error {
	args := m.Called(ctx, id, name, email)
	return args.Error(0)
}

func (m *MockUserRepository) AssignRole(ctx context.Context, id uint, role authz.Role, assignedBy uint, managerID *uint, at time.Time) (int64, error) {
	args := m.Called(ctx, id, role, assignedBy, managerID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ListPendingByCompany(ctx context.Context, companyID uint) ([]model.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) ListManagersByCompany(ctx context.Context, companyID uint) ([]model.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) ListByCompany(ctx context.Context, companyID uint) ([]model.User, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) ListTeam(ctx context.Context, managerID uint) ([]model.User, error) {
	args := m.Called(ctx, managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockCompanyRepository is a mock implementation of CompanyRepository.
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *model.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) CreateWithAdmin(ctx context.Context, company *model.Company, admin *model.User) error {
	args := m.Called(ctx, company, admin)
	return args.Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, email string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, email, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, string, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository, *MockCompanyRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:  "successful signup creates admin",
			email: "founder@example.com",
			setupMock: func(mUser *MockUserRepository, mCompany *MockCompanyRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "founder@example.com").Return(nil, gorm.ErrRecordNotFound)
				mCompany.On("CreateWithAdmin", mock.Anything, mock.AnythingOfType("*model.Company"), mock.AnythingOfType("*model.User")).Return(nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, "founder@example.com", mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:  "email already taken",
			email: "existing@example.com",
			setupMock: func(mUser *MockUserRepository, mCompany *MockCompanyRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "existing@example.com").Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockCompanyRepo := new(MockCompanyRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockUserRepo, mockCompanyRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockUserRepo, mockCompanyRepo, jwtService, mockTokenStore, zap.NewNop())

			accessToken, refreshToken, user, err := service.Signup(
				context.Background(), "Founder", tt.email, "password123", "Acme Corp", "India")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
				assert.Equal(t, authz.RoleAdmin, user.Role)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, "password123", user.PasswordHash)
			}

			mockUserRepo.AssertExpectations(t)
			mockCompanyRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_Join(t *testing.T) {
	tests := []struct {
		name          string
		companyID     uint
		setupMock     func(*MockUserRepository, *MockCompanyRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:      "successful join starts pending",
			companyID: 1,
			setupMock: func(mUser *MockUserRepository, mCompany *MockCompanyRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "newhire@example.com").Return(nil, gorm.ErrRecordNotFound)
				mCompany.On("FindByID", mock.Anything, uint(1)).Return(&model.Company{ID: 1, Name: "Acme Corp"}, nil)
				mUser.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, "newhire@example.com", mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:      "unknown company",
			companyID: 42,
			setupMock: func(mUser *MockUserRepository, mCompany *MockCompanyRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "newhire@example.com").Return(nil, gorm.ErrRecordNotFound)
				mCompany.On("FindByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrCompanyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockCompanyRepo := new(MockCompanyRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockUserRepo, mockCompanyRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockUserRepo, mockCompanyRepo, jwtService, mockTokenStore, zap.NewNop())

			_, _, user, err := service.Join(
				context.Background(), "New Hire", "newhire@example.com", "password123", tt.companyID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, authz.RolePending, user.Role)
				assert.Equal(t, tt.companyID, user.CompanyID)
			}

			mockUserRepo.AssertExpectations(t)
			mockCompanyRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(mUser *MockUserRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           7,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
					Role:         authz.RoleEmployee,
				}, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(7), "test@example.com", mock.Anything).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(mUser *MockUserRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "wrong-password",
			setupMock: func(mUser *MockUserRepository, mToken *MockTokenStore) {
				mUser.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           7,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockUserRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockUserRepo, new(MockCompanyRepository), jwtService, mockTokenStore, zap.NewNop())

			accessToken, refreshToken, user, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, accessToken)
				assert.Empty(t, refreshToken)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, accessToken)
				assert.NotEmpty(t, refreshToken)
				assert.NotNil(t, user)
				assert.Equal(t, tt.email, user.Email)
			}

			mockUserRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refreshToken, err := jwtService.GenerateRefreshToken(7, "test@example.com")
	assert.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(7), "test@example.com", nil)

		service := NewAuthService(new(MockUserRepository), new(MockCompanyRepository), jwtService, mockTokenStore, zap.NewNop())

		accessToken, err := service.RefreshToken(context.Background(), refreshToken)
		assert.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		mockTokenStore.AssertExpectations(t)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(0), "", assert.AnError)

		service := NewAuthService(new(MockUserRepository), new(MockCompanyRepository), jwtService, mockTokenStore, zap.NewNop())

		_, err := service.RefreshToken(context.Background(), refreshToken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), new(MockCompanyRepository), jwtService, new(MockTokenStore), zap.NewNop())

		_, err := service.RefreshToken(context.Background(), "not-a-jwt")
		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})
}
