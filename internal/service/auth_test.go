package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/apperror"
	"github.com/GunarsK-portfolio/notes-service/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// =============================================================================
// Mock UserRepository
// =============================================================================

type mockUserRepository struct {
	findByUsernameFunc   func(ctx context.Context, username string) (*models.User, error)
	findByEmailFunc      func(ctx context.Context, email string) (*models.User, error)
	findByIDFunc         func(ctx context.Context, id int64) (*models.User, error)
	existsByUsernameFunc func(ctx context.Context, username string) (bool, error)
	existsByEmailFunc    func(ctx context.Context, email string) (bool, error)
	createFunc           func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFunc != nil {
		return m.existsByUsernameFunc(ctx, username)
	}
	return false, errors.New("not implemented")
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFunc != nil {
		return m.existsByEmailFunc(ctx, email)
	}
	return false, errors.New("not implemented")
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return errors.New("not implemented")
}

// =============================================================================
// Test Helpers
// =============================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestAuthService(t *testing.T) (AuthService, *mockUserRepository) {
	t.Helper()

	jwtService := NewJWTService(testSecret, testExpiry)
	if jwtService == nil {
		t.Fatal("NewJWTService returned nil")
	}
	mockRepo := &mockUserRepository{}

	return NewAuthService(mockRepo, jwtService, discardLogger()), mockRepo
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return string(hash)
}

// =============================================================================
// Register Tests
// =============================================================================

func TestRegister(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)

	var created *models.User
	mockRepo.existsByUsernameFunc = func(ctx context.Context, username string) (bool, error) {
		return false, nil
	}
	mockRepo.existsByEmailFunc = func(ctx context.Context, email string) (bool, error) {
		return false, nil
	}
	mockRepo.createFunc = func(ctx context.Context, user *models.User) error {
		user.ID = 42
		created = user
		return nil
	}

	resp, err := service.Register(context.Background(), RegisterRequest{
		Username:  "newuser",
		Email:     "NewUser@Example.com",
		Password:  "password123",
		FirstName: "New",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if resp.Token == "" {
		t.Error("Register() returned empty token")
	}
	if resp.User.ID != 42 {
		t.Errorf("User.ID = %d, want 42", resp.User.ID)
	}
	if resp.User.Role != models.RoleUser {
		t.Errorf("User.Role = %q, want %q", resp.User.Role, models.RoleUser)
	}

	if created == nil {
		t.Fatal("Create was not called")
	}
	if created.Email != "newuser@example.com" {
		t.Errorf("stored email = %q, want lowercased %q", created.Email, "newuser@example.com")
	}
	if created.PasswordHash == "password123" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("password123")); err != nil {
		t.Error("stored hash does not verify against the original password")
	}
	if !created.Enabled {
		t.Error("new user should be enabled")
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)

	mockRepo.existsByUsernameFunc = func(ctx context.Context, username string) (bool, error) {
		return true, nil
	}

	_, err := service.Register(context.Background(), RegisterRequest{
		Username: "taken",
		Email:    "user@example.com",
		Password: "password123",
	})
	if !apperror.IsConflict(err) {
		t.Errorf("Register() error = %v, want conflict", err)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)

	mockRepo.existsByUsernameFunc = func(ctx context.Context, username string) (bool, error) {
		return false, nil
	}
	mockRepo.existsByEmailFunc = func(ctx context.Context, email string) (bool, error) {
		return true, nil
	}

	_, err := service.Register(context.Background(), RegisterRequest{
		Username: "newuser",
		Email:    "taken@example.com",
		Password: "password123",
	})
	if !apperror.IsConflict(err) {
		t.Errorf("Register() error = %v, want conflict", err)
	}
}

func TestRegister_RepositoryError(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)

	mockRepo.existsByUsernameFunc = func(ctx context.Context, username string) (bool, error) {
		return false, errors.New("connection refused")
	}

	_, err := service.Register(context.Background(), RegisterRequest{
		Username: "newuser",
		Email:    "user@example.com",
		Password: "password123",
	})
	if err == nil {
		t.Fatal("Register() should fail when the repository is unavailable")
	}
	if apperror.IsConflict(err) {
		t.Errorf("Register() error = %v, want a non-conflict failure", err)
	}
}

// =============================================================================
// Login Tests
// =============================================================================

func TestLogin(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)
	hash := hashPassword(t, "password123")

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return &models.User{
			ID:           1,
			Username:     "testuser",
			Email:        "testuser@example.com",
			PasswordHash: hash,
			Role:         models.RoleUser,
			Enabled:      true,
		}, nil
	}

	resp, err := service.Login(context.Background(), LoginRequest{
		Username: "testuser",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if resp.Token == "" {
		t.Error("Login() returned empty token")
	}
	if resp.ExpiresIn != int64(testExpiry.Seconds()) {
		t.Errorf("ExpiresIn = %d, want %d", resp.ExpiresIn, int64(testExpiry.Seconds()))
	}
	if resp.User.Username != "testuser" {
		t.Errorf("User.Username = %q, want %q", resp.User.Username, "testuser")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)
	hash := hashPassword(t, "password123")

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return &models.User{
			ID:           1,
			Username:     "testuser",
			PasswordHash: hash,
			Enabled:      true,
		}, nil
	}

	_, err := service.Login(context.Background(), LoginRequest{
		Username: "testuser",
		Password: "wrong-password",
	})
	if !apperror.IsUnauthenticated(err) {
		t.Errorf("Login() error = %v, want unauthenticated", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return nil, fmt.Errorf("failed to find user by username %s: %w", username, gorm.ErrRecordNotFound)
	}

	_, err := service.Login(context.Background(), LoginRequest{
		Username: "ghost",
		Password: "password123",
	})
	if !apperror.IsUnauthenticated(err) {
		t.Errorf("Login() error = %v, want unauthenticated", err)
	}
}

func TestLogin_SameMessageForUnknownUserAndWrongPassword(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)
	hash := hashPassword(t, "password123")

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		if username == "testuser" {
			return &models.User{ID: 1, Username: "testuser", PasswordHash: hash, Enabled: true}, nil
		}
		return nil, gorm.ErrRecordNotFound
	}

	_, errUnknown := service.Login(context.Background(), LoginRequest{Username: "ghost", Password: "password123"})
	_, errWrongPw := service.Login(context.Background(), LoginRequest{Username: "testuser", Password: "nope-nope-nope"})

	if errUnknown == nil || errWrongPw == nil {
		t.Fatal("both login attempts should fail")
	}
	// Identical messages so responses do not reveal which accounts exist.
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("error messages differ: %q vs %q", errUnknown.Error(), errWrongPw.Error())
	}
}

func TestLogin_DisabledAccount(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)
	hash := hashPassword(t, "password123")

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return &models.User{
			ID:           1,
			Username:     "testuser",
			PasswordHash: hash,
			Enabled:      false,
		}, nil
	}

	_, err := service.Login(context.Background(), LoginRequest{
		Username: "testuser",
		Password: "password123",
	})
	if !apperror.IsUnauthenticated(err) {
		t.Errorf("Login() error = %v, want unauthenticated", err)
	}
}

// =============================================================================
// Authenticate Tests
// =============================================================================

func TestAuthenticate(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)
	jwtService := NewJWTService(testSecret, testExpiry)

	stored := &models.User{
		ID:       1,
		Username: "testuser",
		Role:     models.RoleAdmin,
		Enabled:  true,
	}
	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		if username == "testuser" {
			return stored, nil
		}
		return nil, gorm.ErrRecordNotFound
	}

	token, err := jwtService.GenerateToken(stored)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	user, err := service.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	// Role comes from storage, not from the token.
	if user.Role != models.RoleAdmin {
		t.Errorf("user.Role = %q, want %q", user.Role, models.RoleAdmin)
	}
}

func TestAuthenticate_MalformedToken(t *testing.T) {
	service, _ := setupTestAuthService(t)

	_, err := service.Authenticate(context.Background(), "not-a-token")
	if !apperror.IsUnauthenticated(err) {
		t.Errorf("Authenticate() error = %v, want unauthenticated", err)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)
	expiredIssuer := NewJWTService(testSecret, -time.Hour)

	stored := &models.User{ID: 1, Username: "testuser", Enabled: true}
	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return stored, nil
	}

	token, err := expiredIssuer.GenerateToken(stored)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	_, err = service.Authenticate(context.Background(), token)
	if !apperror.IsUnauthenticated(err) {
		t.Errorf("Authenticate() error = %v, want unauthenticated", err)
	}
}

func TestAuthenticate_UserDeleted(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)
	jwtService := NewJWTService(testSecret, testExpiry)

	token, err := jwtService.GenerateToken(&models.User{ID: 1, Username: "testuser", Enabled: true})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return nil, gorm.ErrRecordNotFound
	}

	_, err = service.Authenticate(context.Background(), token)
	if !apperror.IsUnauthenticated(err) {
		t.Errorf("Authenticate() error = %v, want unauthenticated", err)
	}
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	service, mockRepo := setupTestAuthService(t)
	jwtService := NewJWTService(testSecret, testExpiry)

	stored := &models.User{ID: 1, Username: "testuser", Enabled: false}
	mockRepo.findByUsernameFunc = func(ctx context.Context, username string) (*models.User, error) {
		return stored, nil
	}

	token, err := jwtService.GenerateToken(stored)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	_, err = service.Authenticate(context.Background(), token)
	if !apperror.IsUnauthenticated(err) {
		t.Errorf("Authenticate() error = %v, want unauthenticated", err)
	}
}
