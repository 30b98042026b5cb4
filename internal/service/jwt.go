package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/notes-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// minSecretLength is the minimum accepted HMAC secret size in bytes.
const minSecretLength = 32

// JWTService defines JWT token operations.
//
// Tokens carry only the username as subject plus issued-at/expiry; role
// and enabled state are re-resolved from storage on every request so
// that downgrades take effect before the token expires.
type JWTService interface {
	GenerateToken(user *models.User) (string, error)
	IsTokenValid(tokenString string, user *models.User) bool
	ExtractUsername(tokenString string) (string, error)
	ExtractExpiry(tokenString string) (time.Time, error)
	GetExpiry() time.Duration
}

type jwtService struct {
	secret string
	expiry time.Duration
}

// NewJWTService creates a new JWTService instance. It returns nil when
// the secret is shorter than 32 bytes.
func NewJWTService(secret string, expiry time.Duration) JWTService {
	if len(secret) < minSecretLength {
		return nil
	}
	return &jwtService{
		secret: secret,
		expiry: expiry,
	}
}

func (s *jwtService) GenerateToken(user *models.User) (string, error) {
	if user == nil {
		return "", errors.New("user is nil")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// IsTokenValid reports whether the token's signature verifies, its
// subject matches the user's username and it has not expired. Malformed
// or empty tokens are invalid; this method never returns an error.
func (s *jwtService) IsTokenValid(tokenString string, user *models.User) bool {
	if user == nil {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil || !token.Valid {
		return false
	}
	return claims.Subject == user.Username
}

// ExtractUsername returns the token's subject. The signature must verify
// but expiry is deliberately not checked: callers need to know who a
// token belongs to even after it has lapsed.
func (s *jwtService) ExtractUsername(tokenString string) (string, error) {
	claims, err := s.parseWithoutValidation(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractExpiry returns the token's expiry timestamp under the same
// parsing rules as ExtractUsername.
func (s *jwtService) ExtractExpiry(tokenString string) (time.Time, error) {
	claims, err := s.parseWithoutValidation(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("token has no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}

func (s *jwtService) GetExpiry() time.Duration {
	return s.expiry
}

func (s *jwtService) parseWithoutValidation(tokenString string) (*jwt.RegisteredClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, s.keyFunc); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}
	return claims, nil
}

func (s *jwtService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("invalid signing method")
	}
	return []byte(s.secret), nil
}
