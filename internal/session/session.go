package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoSession = errors.New("no active session, run `arquivo login` first")
	ErrExpired   = errors.New("session expired, run `arquivo login` again")
)

// DefaultTTL is used when login does not ask for a specific lifetime.
const DefaultTTL = 8 * time.Hour

// Session is created at login and torn down at logout or expiry. It is
// handed to components explicitly, never looked up from ambient storage.
type Session struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	CanUpload bool      `json:"can_upload"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func New(user string, canUpload bool, ttl time.Duration, now time.Time) (*Session, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return nil, errors.New("user is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Session{
		ID:        uuid.NewString(),
		User:      user,
		CanUpload: canUpload,
		CreatedAt: now.UTC(),
		ExpiresAt: now.UTC().Add(ttl),
	}, nil
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Validate returns ErrNoSession for a nil session and ErrExpired once the
// session has outlived its TTL.
func (s *Session) Validate(now time.Time) error {
	if s == nil {
		return ErrNoSession
	}
	if s.Expired(now) {
		return ErrExpired
	}
	return nil
}

type ctxKey struct{}

func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
