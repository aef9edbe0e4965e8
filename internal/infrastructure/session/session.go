package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wms-platform/handy-terminal/internal/domain"
)

// Claims are the picker claims carried by the backend-issued bearer token
type Claims struct {
	PickerID    int    `json:"picker_id"`
	PickerName  string `json:"picker_name"`
	WarehouseID *int   `json:"warehouse_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenSession holds the API key and bearer token handed to the terminal at
// sign-in. The token was issued and is verified by the backend; the terminal
// only reads its claims.
type TokenSession struct {
	apiKey string
	token  string
	claims *Claims
}

var _ domain.Session = (*TokenSession)(nil)

// New creates a session. An empty token yields a session without a picker.
func New(apiKey, token string) (*TokenSession, error) {
	s := &TokenSession{apiKey: apiKey, token: token}
	if token == "" {
		return s, nil
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}
	s.claims = claims
	return s, nil
}

// APIKey returns the backend API key
func (s *TokenSession) APIKey() string {
	return s.apiKey
}

// Token returns the bearer token
func (s *TokenSession) Token() string {
	return s.token
}

// Picker returns the signed-in picker
func (s *TokenSession) Picker() (domain.Picker, bool) {
	if s.claims == nil || s.claims.PickerID <= 0 {
		return domain.Picker{}, false
	}
	return domain.Picker{ID: s.claims.PickerID, Name: s.claims.PickerName}, true
}

// DefaultWarehouseID returns the warehouse the picker signed in to
func (s *TokenSession) DefaultWarehouseID() (int, bool) {
	if s.claims == nil || s.claims.WarehouseID == nil || *s.claims.WarehouseID <= 0 {
		return 0, false
	}
	return *s.claims.WarehouseID, true
}

// ExpiresAt returns the token expiry when the token carries one
func (s *TokenSession) ExpiresAt() (time.Time, bool) {
	if s.claims == nil || s.claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return s.claims.ExpiresAt.Time, true
}

// Expired reports whether the token expiry has passed at now
func (s *TokenSession) Expired(now time.Time) bool {
	expiresAt, ok := s.ExpiresAt()
	return ok && !now.Before(expiresAt)
}
