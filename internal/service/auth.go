package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/legxcy/outreach-api/internal/auth"
)

// Operator is the single account allowed to use the outreach tools.
type Operator struct {
	Email        string
	PasswordHash string
}

// Enabled reports whether a password hash has been configured.
func (o Operator) Enabled() bool {
	return strings.TrimSpace(o.PasswordHash) != ""
}

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	operator Operator
	jwt      *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(operator Operator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{operator: operator, jwt: jwtManager}
}

// Login validates credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ValidationError{Message: "email and password must not be empty"}
	}
	if !s.operator.Enabled() {
		return "", ErrInvalidCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(s.operator.Email)) {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.operator.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	return s.jwt.GenerateToken(s.operator.Email, s.operator.Email, auth.RoleOperator)
}

// TokenTTLSeconds reports the lifetime of issued tokens.
func (s *AuthService) TokenTTLSeconds() int64 {
	return int64(s.jwt.TTL().Seconds())
}
