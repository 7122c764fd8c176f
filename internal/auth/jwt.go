package auth

import (
	"errors"
	"fmt"
	"time"

	"datashare-backend/internal/config"
	"datashare-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretLen = 32

type AppClaims struct {
	UserID int64    `json:"UserId"`
	Email  string   `json:"email"`
	Name   string   `json:"name,omitempty"`
	Roles  []string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs bearer tokens with a symmetric secret. Construction
// fails when the secret is too short; that is a configuration error and
// the caller is expected to treat it as fatal.
type TokenIssuer struct {
	secret         []byte
	issuer         string
	audience       string
	expirationDays int
}

func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", minSecretLen, len(cfg.Secret))
	}
	return &TokenIssuer{
		secret:         []byte(cfg.Secret),
		issuer:         cfg.Issuer,
		audience:       cfg.Audience,
		expirationDays: cfg.ExpirationDays,
	}, nil
}

// Issue builds and signs a token for the user: fresh jti, numeric user id,
// email, login as display name, one role claim per entry in roles.
func (ti *TokenIssuer) Issue(user *models.User, roles []string) (string, error) {
	now := time.Now()

	var name string
	if user.Login != nil {
		name = *user.Login
	}

	claims := &AppClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   name,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ti.issuer,
			Audience:  jwt.ClaimStrings{ti.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.AddDate(0, 0, ti.expirationDays)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

func (ti *TokenIssuer) ExpirationDays() int {
	return ti.expirationDays
}

// Verify parses and validates a token produced by Issue.
func (ti *TokenIssuer) Verify(tokenString string) (*AppClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return ti.secret, nil
	}, jwt.WithIssuer(ti.issuer), jwt.WithAudience(ti.audience))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*AppClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}
