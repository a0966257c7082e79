package service

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "turnero/internal/errors"
)

type AdminAuthService interface {
	// Enabled reports whether admin credentials are configured. When false
	// the admin API is open.
	Enabled() bool
	Login(email, password string) (string, error)
	ParseToken(token string) (*AdminClaims, error)
}

type AdminClaims struct {
	jwt.RegisteredClaims
}

type adminAuthService struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAdminAuthService(email, passwordHash, secret string, ttl time.Duration) AdminAuthService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &adminAuthService{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}
}

func (s *adminAuthService) Enabled() bool {
	return s.email != "" && len(s.passwordHash) > 0 && len(s.secret) > 0
}

func (s *adminAuthService) Login(email, password string) (string, error) {
	if !s.Enabled() {
		return "", apperrors.ErrUnauthorized("admin login is not configured")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", apperrors.ErrUnauthorized("invalid credentials")
	}
	// always run bcrypt so an unknown e-mail costs the same as a bad password
	pwErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) != 1 || pwErr != nil {
		return "", apperrors.ErrUnauthorized("invalid credentials")
	}

	now := s.now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *adminAuthService) ParseToken(raw string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, apperrors.ErrUnauthorized("invalid or expired token")
	}
	if claims.Subject != s.email {
		return nil, apperrors.ErrUnauthorized(fmt.Sprintf("token subject %q is not an admin", claims.Subject))
	}
	return claims, nil
}
