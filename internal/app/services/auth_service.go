package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/app/models/dto"
	"github.com/ipelms/ipelms/internal/app/repositories"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
	"github.com/ipelms/ipelms/internal/pkg/auth"
)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actorID, targetUserID int64) error
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	userRepo   *repositories.UserRepository
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(userRepo *repositories.UserRepository, jwtService *auth.JWTService, logger zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// validateRegistration checks the registration form fields
func (s *authServiceImpl) validateRegistration(req *dto.RegisterRequest) error {
	if len(strings.TrimSpace(req.Name)) < minNameLength {
		return fmt.Errorf("%w: name must be at least %d characters", apperrors.ErrValidationFailed, minNameLength)
	}
	if !emailRegex.MatchString(strings.TrimSpace(req.Email)) {
		return fmt.Errorf("%w: invalid email format", apperrors.ErrValidationFailed)
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidationFailed, minPasswordLength)
	}
	return nil
}

// Register creates a new student account and returns a token for it.
// Everyone self-registers as a student; roles are elevated per course by
// being listed as an instructor, or globally by an admin edit.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         models.RoleStudent,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userId", user.ID).Str("email", user.Email).Msg("User registered")

	return s.tokenResponseFor(user)
}

// Login verifies credentials and returns a token response.
// Unknown email and wrong password produce the same error.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	s.logger.Info().Int64("userId", user.ID).Msg("User logged in")

	return s.tokenResponseFor(user)
}

// GetProfile returns the public view of the authenticated user.
func (s *authServiceImpl) GetProfile(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := userResponseFor(user)
	return &resp, nil
}

// DeleteUser removes an account. Admin-only at the route level; creator
// references are RESTRICT so a user who still owns courses or content cannot
// be removed, while their enrollments and submissions cascade away.
func (s *authServiceImpl) DeleteUser(ctx context.Context, actorID, targetUserID int64) error {
	if actorID == targetUserID {
		return fmt.Errorf("%w: cannot delete your own account", apperrors.ErrValidationFailed)
	}

	if err := s.userRepo.Delete(ctx, targetUserID); err != nil {
		return err
	}

	s.logger.Info().Int64("userId", targetUserID).Int64("by", actorID).Msg("User deleted")

	return nil
}

func (s *authServiceImpl) tokenResponseFor(user *models.User) (*dto.TokenResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		User:        userResponseFor(user),
	}, nil
}

func userResponseFor(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}
