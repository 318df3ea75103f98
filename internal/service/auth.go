package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pageza/preflight/backend/config"
	"github.com/pageza/preflight/backend/internal/types"
)

const (
	tokenIssuer = "preflight"
	tokenTTL    = 24 * time.Hour
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrMissingClaims = errors.New("token has no email claim")
)

// AuthService validates session tokens and decides admin rights from the
// configured allow-list
type AuthService struct {
	cfg       *config.Config
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:       cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		now:       time.Now,
	}
}

// GenerateToken issues a signed token for email, valid for 24 hours
func (s *AuthService) GenerateToken(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrMissingClaims
	}
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Email == "" {
		claims.Email = claims.Subject
	}
	if claims.Email == "" {
		return nil, ErrMissingClaims
	}
	return claims, nil
}

// SessionFromToken resolves a bearer token into the caller identity
func (s *AuthService) SessionFromToken(tokenString string) (types.Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return types.Session{}, err
	}
	email := strings.ToLower(strings.TrimSpace(claims.Email))
	return types.Session{
		Email:   email,
		IsAdmin: s.cfg.IsAdminEmail(email),
	}, nil
}
