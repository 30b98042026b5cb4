package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/apperror"
	"github.com/GunarsK-portfolio/notes-service/internal/models"
	"github.com/GunarsK-portfolio/notes-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest represents the registration payload.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"max=50"`
	LastName  string `json:"last_name" binding:"max=50"`
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserInfo is the user representation embedded in auth responses.
type UserInfo struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name,omitempty"`
	LastName  string      `json:"last_name,omitempty"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuthResponse carries the issued token and the authenticated user.
type AuthResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	User      UserInfo `json:"user"`
}

// AuthService defines registration, login and token authentication.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)
}

type authService struct {
	users  repository.UserRepository
	jwt    JWTService
	logger *slog.Logger
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(users repository.UserRepository, jwtService JWTService, logger *slog.Logger) AuthService {
	return &authService{
		users:  users,
		jwt:    jwtService,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	taken, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.NewDatabase("failed to check username", err)
	}
	if taken {
		return nil, apperror.NewConflict("username already exists")
	}

	email := strings.ToLower(req.Email)
	taken, err = s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperror.NewDatabase("failed to check email", err)
	}
	if taken {
		return nil, apperror.NewConflict("email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleUser,
		Enabled:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.NewDatabase("failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewUnauthenticated("invalid credentials")
		}
		return nil, apperror.NewDatabase("failed to find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.NewUnauthenticated("invalid credentials")
	}
	if !user.Enabled {
		return nil, apperror.NewUnauthenticated("account is disabled")
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return s.buildAuthResponse(user)
}

// Authenticate resolves a bearer token to its current user record. The
// user is always re-read from storage so role changes and disabled
// accounts take effect immediately rather than at token expiry.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	username, err := s.jwt.ExtractUsername(tokenString)
	if err != nil {
		return nil, apperror.NewUnauthenticated("invalid token")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewUnauthenticated("invalid token")
		}
		return nil, apperror.NewDatabase("failed to find user", err)
	}

	if !user.Enabled {
		return nil, apperror.NewUnauthenticated("account is disabled")
	}
	if !s.jwt.IsTokenValid(tokenString, user) {
		return nil, apperror.NewUnauthenticated("token is expired or invalid")
	}
	return user, nil
}

func (s *authService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, apperror.NewInternal("failed to generate token", err)
	}

	return &AuthResponse{
		Token:     token,
		ExpiresIn: int64(s.jwt.GetExpiry().Seconds()),
		User: UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}
