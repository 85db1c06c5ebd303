package memory

import (
	"context"
	"strings"
	"time"

	"beaconcms.org/internal/auth"
)

func (s *Store) CreateSession(_ context.Context, rec auth.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[rec.UserID]; !ok {
		return auth.ErrNotFound
	}
	s.sessions[rec.TokenHash] = rec
	return nil
}

// FindSession joins the session to its user. Permissions follow the built-in role matrix.
func (s *Store) FindSession(_ context.Context, tokenHash string) (*auth.SessionLookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[tokenHash]
	if !ok {
		return nil, auth.ErrNotFound
	}
	user, ok := s.users[rec.UserID]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &auth.SessionLookup{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		Permissions: auth.PermissionsForRole(user.Role),
		IsActive:    user.IsActive,
		ExpiresAt:   rec.ExpiresAt,
	}, nil
}

func (s *Store) DeleteSession(_ context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[tokenHash]
	if !ok {
		return "", auth.ErrNotFound
	}
	delete(s.sessions, tokenHash)
	return rec.UserID, nil
}

func (s *Store) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for hash, rec := range s.sessions {
		if !rec.ExpiresAt.After(now) {
			delete(s.sessions, hash)
			n++
		}
	}
	return n, nil
}

func (s *Store) FindCredential(_ context.Context, email string) (*auth.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return &auth.Credential{
				UserID:       user.ID,
				Email:        user.Email,
				Name:         user.Name,
				Role:         user.Role,
				PasswordHash: user.PasswordHash,
				IsActive:     user.IsActive,
			}, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (s *Store) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return auth.ErrNotFound
	}
	at = at.UTC()
	user.LastLoginAt = &at
	s.users[userID] = user
	return nil
}

// SessionCount reports live session rows.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
