package auth

import "time"

// SessionUser is the identity attached to a resolved session.
type SessionUser struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Session is the result of resolving a session cookie.
type Session struct {
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Principal converts the session into the value handlers authorize against.
func (s *Session) Principal() Principal {
	if s == nil {
		return Principal{}
	}
	return NewPrincipal(s.User.ID, s.User.Email, s.User.Name, s.User.Role, s.User.Permissions)
}

// SessionRecord is the persisted form of a session. Only the token hash is stored.
type SessionRecord struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	IPAddress string
	UserAgent string
}

// SessionLookup is a session row joined to its user and the user's role permissions.
type SessionLookup struct {
	UserID      string
	Email       string
	Name        string
	Role        string
	Permissions []string
	IsActive    bool
	ExpiresAt   time.Time
}

// Credential is the login view of a user.
type Credential struct {
	UserID       string
	Email        string
	Name         string
	Role         string
	PasswordHash string
	IsActive     bool
}
