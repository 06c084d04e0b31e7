// Package service — AuthService handles login, token signing/validation
// and the authenticated profile lookup.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/port"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const bcryptCost = 12

// AuthService orchestrates authentication flows.
type AuthService struct {
	users     port.UserStore
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users port.UserStore, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// Login verifies the credentials and issues an access token. An unknown
// email and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login: failed password attempt",
			zap.Uint("user_id", user.ID),
		)
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("login succeeded",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role),
	)
	return &domain.LoginResponse{Token: token, User: domain.ProfileOf(user)}, nil
}

// Me returns the profile behind a valid token. The user may have been
// deleted since the token was issued, in which case it is unauthorized.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.UserProfile, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Me")
	defer span.End()

	user, err := s.users.GetUserByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	profile := domain.ProfileOf(user)
	return &profile, nil
}

// JWTClaims represents the custom claims in access tokens. Role and store
// scope ride in the token so the middleware can build the identity without
// a database round trip.
type JWTClaims struct {
	Sub         string `json:"sub"`
	Role        string `json:"role"`
	StoreLocked bool   `json:"store_locked"`
	StoreID     *uint  `json:"store_id"`
	Type        string `json:"type"`
	jwt.RegisteredClaims
}

// Identity converts the claims into the request identity.
func (c *JWTClaims) Identity() (domain.Identity, error) {
	id, err := strconv.ParseUint(c.Sub, 10, 64)
	if err != nil {
		return domain.Identity{}, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	return domain.Identity{
		UserID:      uint(id),
		Role:        c.Role,
		StoreLocked: c.StoreLocked,
		StoreID:     c.StoreID,
	}, nil
}

// ValidateAccessToken parses and verifies a bearer token.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid || claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	return claims, nil
}

func (s *AuthService) signAccessToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Sub:         strconv.FormatUint(uint64(u.ID), 10),
		Role:        u.Role,
		StoreLocked: u.StoreLocked,
		StoreID:     u.StoreID,
		Type:        "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "fidelidade-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
