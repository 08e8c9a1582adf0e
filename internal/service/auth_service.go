package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"expenseflow/internal/apperrors"
	"expenseflow/internal/auth"
	"expenseflow/internal/authz"
	"expenseflow/internal/model"
	"expenseflow/internal/repository"
)

const bcryptCost = 10

// AuthService handles registration and authentication.
type AuthService interface {
	// Signup creates a company and its founding admin in one transaction.
	Signup(ctx context.Context, name, email, password, companyName, country string) (accessToken, refreshToken string, user *model.User, err error)
	// Join registers a user into an existing company with a pending role.
	Join(ctx context.Context, name, email, password string, companyID uint) (accessToken, refreshToken string, user *model.User, err error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, user *model.User, err error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo    repository.UserRepository
	companyRepo repository.CompanyRepository
	jwtService  *auth.JWTService
	tokenStore  auth.TokenStoreInterface
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	companyRepo repository.CompanyRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		jwtService:  jwtService,
		tokenStore:  tokenStore,
		logger:      logger,
	}
}

// Signup creates a company and its founding user. The founder gets the Admin
// role; everyone else enters through Join and starts Pending.
func (s *authService) Signup(ctx context.Context, name, email, password, companyName, country string) (string, string, *model.User, error) {
	if err := s.checkEmailFree(ctx, email); err != nil {
		return "", "", nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", "", nil, fmt.Errorf("hash password: %w", err)
	}

	company := &model.Company{
		Name:     companyName,
		Country:  country,
		Currency: model.DefaultCurrency,
	}
	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         authz.RoleAdmin,
	}
	if err := s.companyRepo.CreateWithAdmin(ctx, company, user); err != nil {
		return "", "", nil, fmt.Errorf("create company and admin: %w", err)
	}

	s.logger.Info("user registered",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("company", company.Name),
		zap.String("country", company.Country))

	return s.issueTokens(ctx, user)
}

// Join registers a user into an existing company. The user stays Pending
// until an admin assigns a role.
func (s *authService) Join(ctx context.Context, name, email, password string, companyID uint) (string, string, *model.User, error) {
	if err := s.checkEmailFree(ctx, email); err != nil {
		return "", "", nil, err
	}

	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", nil, apperrors.ErrCompanyNotFound
		}
		return "", "", nil, fmt.Errorf("find company: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         authz.RolePending,
		CompanyID:    companyID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", "", nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user joined company",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.Uint("company_id", companyID))

	return s.issueTokens(ctx, user)
}

// Login authenticates a user and returns access and refresh tokens. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (string, string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", "", nil, apperrors.ErrInvalidCredentials
	}

	s.logger.Info("user login",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	return s.issueTokens(ctx, user)
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err != nil {
		return "", apperrors.ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", apperrors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Email)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}

func (s *authService) checkEmailFree(ctx context.Context, email string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check user existence: %w", err)
	}
	return nil
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (string, string, *model.User, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return "", "", nil, fmt.Errorf("store refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}
