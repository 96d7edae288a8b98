package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-wallet-verify/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the service-token payload. Service tokens authenticate the
// interactive front-end on the session-management routes; they carry a
// service name, never an end-user identity.
type Claims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 service tokens from a shared secret.
type Provider struct {
	secret []byte
	expiry time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.ServiceTokenSecret == "" {
		return nil, errors.New("SERVICE_TOKEN_SECRET not configured")
	}
	return &Provider{secret: []byte(cfg.ServiceTokenSecret), expiry: cfg.ServiceTokenExpiry}, nil
}

func (p *Provider) Sign(service string) (string, error) {
	claims := Claims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
