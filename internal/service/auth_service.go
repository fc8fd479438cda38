package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/UniqBrio/UniqBrio-sub014/internal/config"
	"github.com/UniqBrio/UniqBrio-sub014/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const tokenTTL = 12 * time.Hour

// AuthService handles staff authentication
type AuthService struct {
	username     string
	passwordHash []byte
	tenantID     string
	jwtSecret    []byte
}

// NewAuthService creates a new auth service. A plain STAFF_PASSWORD is hashed
// at startup when no STAFF_PASSWORD_HASH is configured.
func NewAuthService(cfg *config.Config) (*AuthService, error) {
	hash := []byte(cfg.StaffPasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.StaffPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash staff password: %w", err)
		}
	}

	return &AuthService{
		username:     cfg.StaffUsername,
		passwordHash: hash,
		tenantID:     cfg.StaffTenantID,
		jwtSecret:    []byte(cfg.JWTSecret),
	}, nil
}

// Login validates credentials and returns a signed staff token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	staffID := "staff_" + uuid.New().String()[:8]
	token, err := s.IssueToken(staffID, s.tenantID, username)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:    token,
		StaffID:  staffID,
		TenantID: s.tenantID,
	}, nil
}

// IssueToken signs a staff token for the given tenant
func (s *AuthService) IssueToken(staffID, tenantID, name string) (string, error) {
	now := time.Now()
	claims := &model.StaffClaims{
		StaffID:  staffID,
		TenantID: tenantID,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateStaffToken validates a staff JWT and returns claims
func (s *AuthService) ValidateStaffToken(tokenString string) (*model.StaffClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.StaffClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.StaffClaims)
	if !ok || !token.Valid || claims.TenantID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
