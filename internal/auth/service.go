package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/obs"
)

const tokenBytes = 32

// AuditRecorder receives login and logout events.
type AuditRecorder interface {
	Record(ctx context.Context, ev audit.Event)
}

// Sessions issues, resolves and revokes opaque session tokens.
type Sessions struct {
	store    SessionStore
	recorder AuditRecorder
	ttl      time.Duration
	now      func() time.Time
}

// NewSessions wires the resolver. recorder may be nil.
func NewSessions(store SessionStore, recorder AuditRecorder, ttl time.Duration) (*Sessions, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Sessions{store: store, recorder: recorder, ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source.
func (s *Sessions) WithClock(now func() time.Time) *Sessions {
	if now != nil {
		s.now = now
	}
	return s
}

// TTL is the lifetime of newly issued sessions.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Resolve returns the session behind token. A missing, expired or deactivated
// session yields (nil, nil); only storage failures are errors.
func (s *Sessions) Resolve(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	lookup, err := s.store.FindSession(ctx, HashToken(token))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if !lookup.IsActive || !s.now().Before(lookup.ExpiresAt) {
		return nil, nil
	}
	perms := lookup.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &Session{
		User: SessionUser{
			ID:          lookup.UserID,
			Email:       lookup.Email,
			Name:        lookup.Name,
			Role:        lookup.Role,
			Permissions: perms,
		},
		ExpiresAt: lookup.ExpiresAt,
	}, nil
}

// Login verifies credentials and opens a session. It returns the raw token for the cookie.
func (s *Sessions) Login(ctx context.Context, email, password string) (string, *Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}
	cred, err := s.store.FindCredential(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("load credential: %w", err)
	}
	if err := VerifyPassword(cred.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !cred.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", nil, err
	}
	now := s.now().UTC()
	meta := audit.RequestMetaFromContext(ctx)
	rec := SessionRecord{
		TokenHash: HashToken(token),
		UserID:    cred.UserID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.store.CreateSession(ctx, rec); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.store.TouchLastLogin(ctx, cred.UserID, now); err != nil {
		obs.Logger().Warn("last login update failed", zap.String("user_id", cred.UserID), zap.Error(err))
	}
	s.record(ctx, audit.Event{
		ActorID:    cred.UserID,
		Action:     audit.ActionLogin,
		EntityType: "user",
		EntityID:   cred.UserID,
		NewValue:   map[string]string{"email": cred.Email},
	})

	return token, &Session{
		User: SessionUser{
			ID:          cred.UserID,
			Email:       cred.Email,
			Name:        cred.Name,
			Role:        cred.Role,
			Permissions: PermissionsForRole(cred.Role),
		},
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Logout deletes the session behind token. Unknown tokens are not an error.
func (s *Sessions) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	userID, err := s.store.DeleteSession(ctx, HashToken(token))
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.record(ctx, audit.Event{
		ActorID:    userID,
		Action:     audit.ActionLogout,
		EntityType: "user",
		EntityID:   userID,
	})
	return nil
}

// Prune removes expired sessions and returns how many were deleted.
func (s *Sessions) Prune(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return n, nil
}

func (s *Sessions) record(ctx context.Context, ev audit.Event) {
	if s.recorder != nil {
		s.recorder.Record(ctx, ev)
	}
}

// HashToken returns the hex SHA-256 of a raw session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
