package backend

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/gradebase/internal/domain/model"
)

// CredentialProvider supplies the bearer token attached to requests.
type CredentialProvider interface {
	// Token returns the current access token, if one is usable.
	Token(ctx context.Context) (string, bool)
	// Invalidate forgets the current token after the backend refused it.
	Invalidate(ctx context.Context)
}

// TokenStore keeps an access/refresh pair in memory. Nothing is persisted.
type TokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	now     func() time.Time
}

var _ CredentialProvider = (*TokenStore)(nil)

// NewTokenStore returns a store holding access, which may be empty.
func NewTokenStore(access string) *TokenStore {
	return &TokenStore{access: access, now: time.Now}
}

// Set replaces the stored pair.
func (s *TokenStore) Set(p model.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh = p.Access, p.Refresh
}

// Refresh returns the stored refresh token.
func (s *TokenStore) Refresh() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Token returns the access token unless it is empty or its exp claim has
// passed. Tokens that are not JWTs are returned as-is.
func (s *TokenStore) Token(ctx context.Context) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == "" {
		return "", false
	}
	if exp, ok := expiry(s.access); ok && !s.now().Before(exp) {
		return "", false
	}
	return s.access, true
}

// ExpiresAt reports the exp claim of the access token, when it has one.
func (s *TokenStore) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return expiry(s.access)
}

// Invalidate implements CredentialProvider.
func (s *TokenStore) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh = "", ""
}

// expiry reads exp without verifying the signature; the backend remains the
// authority on validity.
func expiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
