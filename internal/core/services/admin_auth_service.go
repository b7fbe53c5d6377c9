package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
	"github.com/vncsmyrnk/covervote/internal/core/ports"
)

const (
	adminSubject  = "admin"
	adminTokenTTL = 12 * time.Hour
)

type AdminAuthService struct {
	passwordHash [32]byte
	enabled      bool
	jwtSecret    []byte
	now          func() time.Time
}

// NewAdminAuthService protects the results views with password. An empty password
// disables protection.
func NewAdminAuthService(password, jwtSecret string) ports.AdminAuthService {
	return &AdminAuthService{
		passwordHash: sha256.Sum256([]byte(password)),
		enabled:      password != "",
		jwtSecret:    []byte(jwtSecret),
		now:          time.Now,
	}
}

func (s *AdminAuthService) Enabled() bool {
	return s.enabled
}

func (s *AdminAuthService) Login(_ context.Context, password string) (string, error) {
	if !s.enabled {
		return "", errors.New("admin login is disabled")
	}

	got := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(got[:], s.passwordHash[:]) != 1 {
		return "", domain.ErrUnauthorized
	}

	return s.generateAccessToken()
}

func (s *AdminAuthService) Verify(tokenString string) error {
	if !s.enabled {
		return nil
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithSubject(adminSubject),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return domain.ErrUnauthorized
	}
	return nil
}

func (s *AdminAuthService) generateAccessToken() (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": adminSubject,
		"exp": now.Add(adminTokenTTL).Unix(),
		"iat": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}
