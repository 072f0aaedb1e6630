// Package auth authenticates calling services from their S2S token and
// checks them against the configured allow-list.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// HeaderName carries the caller's service token.
const HeaderName = "ServiceAuthorization"

var (
	ErrUnauthenticated = errors.New("provided S2S token is missing or invalid")
	ErrInvalidToken    = errors.New("invalid S2S token")
	ErrForbidden       = errors.New("S2S token is not authorized to use the service")
)

type Service struct {
	signingKey []byte
	allowed    map[string]struct{}
	now        func() time.Time
}

func NewService(signingKey string, allowedServices []string) *Service {
	allowed := make(map[string]struct{}, len(allowedServices))
	for _, name := range allowedServices {
		if name = strings.TrimSpace(name); name != "" {
			allowed[name] = struct{}{}
		}
	}
	return &Service{signingKey: []byte(signingKey), allowed: allowed, now: time.Now}
}

// Authenticate returns the service name carried in the token's subject.
// The "Bearer " prefix is optional.
func (s *Service) Authenticate(header string) (string, error) {
	token := strings.TrimSpace(header)
	if token == "Bearer" || strings.HasPrefix(token, "Bearer ") {
		token = strings.TrimSpace(token[len("Bearer"):])
	}
	if token == "" {
		return "", ErrUnauthenticated
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token has expired", ErrInvalidToken)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (s *Service) AssertAllowed(serviceName string) error {
	if _, ok := s.allowed[serviceName]; !ok {
		return fmt.Errorf("%w: %s", ErrForbidden, serviceName)
	}
	return nil
}

// Issue signs a token for serviceName. Callers of this service obtain their
// tokens the same way.
func (s *Service) Issue(serviceName string, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   serviceName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	})
	return token.SignedString(s.signingKey)
}

type contextKey struct{}

func WithServiceName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, contextKey{}, name)
}

func ServiceName(ctx context.Context) string {
	name, _ := ctx.Value(contextKey{}).(string)
	return name
}
