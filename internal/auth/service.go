package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidClient rejects a token request whose credentials do not match
// the configured client. The handler maps it to 401.
var ErrInvalidClient = errors.New("invalid client credentials")

// Service mints and verifies the bearer tokens the trader surface accepts.
// It stands in for the real gateway's client-credentials grant: one
// configured client id with a bcrypt-hashed secret.
type Service struct {
	issuer           string
	secret           []byte
	ttl              time.Duration
	clientID         string
	clientSecretHash string
}

func NewService(issuer string, secret []byte, ttl time.Duration) *Service {
	return &Service{issuer: issuer, secret: secret, ttl: ttl}
}

// SetClient pins the credentials the token endpoint accepts. Without one,
// any non-empty client id is served a token (dev mode).
func (s *Service) SetClient(clientID, secretHash string) {
	s.clientID = strings.TrimSpace(clientID)
	s.clientSecretHash = strings.TrimSpace(secretHash)
}

// TTL returns the lifetime stamped into minted tokens.
func (s *Service) TTL() time.Duration { return s.ttl }

// Token validates client credentials and mints a bearer token for them.
func (s *Service) Token(clientID, clientSecret string) (string, error) {
	if strings.TrimSpace(clientID) == "" {
		return "", ErrInvalidClient
	}
	if s.clientID != "" {
		if clientID != s.clientID {
			return "", ErrInvalidClient
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.clientSecretHash), []byte(clientSecret)); err != nil {
			return "", ErrInvalidClient
		}
	}
	return s.signToken(clientID)
}

func (s *Service) signToken(subject string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// ParseToken verifies signature, issuer and expiry and returns the subject.
func (s *Service) ParseToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Issuer != s.issuer {
		return "", errors.New("invalid issuer")
	}
	if claims.Subject == "" {
		return "", errors.New("invalid subject")
	}
	return claims.Subject, nil
}
