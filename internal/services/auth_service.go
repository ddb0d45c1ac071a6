package services

import (
	"context"
	"errors"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/config"
	"github.com/forumkit/lottery-draw-backend/internal/repositories"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// ErrInvalidCredentials is returned for any failed login attempt
var ErrInvalidCredentials = errors.New("invalid credentials")

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// AuthServiceImpl authenticates operators of the protected API
type AuthServiceImpl struct {
	adminUserRepo repositories.AdminUserRepository
	cfg           *config.Config
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(adminUserRepo repositories.AdminUserRepository, cfg *config.Config) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminUserRepo: adminUserRepo,
		cfg:           cfg,
	}
}

// Login verifies an operator's credentials and returns a signed JWT
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	adminUser, err := s.adminUserRepo.FindByEmail(ctx, email)
	if err != nil {
		slog.Warn("login failed, unknown email", "email", email)
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(adminUser.Password), []byte(password)); err != nil {
		slog.Warn("login failed, bad password", "email", email)
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"sub":   adminUser.ID.Hex(),
		"email": adminUser.Email,
		"role":  adminUser.Role,
		"exp":   time.Now().Add(time.Duration(s.cfg.JWT.ExpiresIn) * time.Second).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return signed, nil
}
