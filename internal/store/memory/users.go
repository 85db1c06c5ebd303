package memory

import (
	"context"
	"strings"
	"time"

	"beaconcms.org/internal/cms"
)

type userStore struct{ s *Store }

func (u userStore) emailTaken(email, except string) bool {
	for id, user := range u.s.users {
		if strings.EqualFold(user.Email, email) && id != except {
			return true
		}
	}
	return false
}

func (u userStore) List(_ context.Context, f cms.UserFilter) ([]cms.User, int, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	var out []cms.User
	for _, user := range u.s.users {
		if f.Role != "" && user.Role != f.Role {
			continue
		}
		out = append(out, user)
	}
	newestFirst(out, func(x cms.User) time.Time { return x.CreatedAt }, func(x cms.User) string { return x.ID })
	return page(out, f.Paging), len(out), nil
}

func (u userStore) Get(_ context.Context, id string) (cms.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return cms.User{}, cms.ErrNotFound
	}
	return user, nil
}

func (u userStore) GetByEmail(_ context.Context, email string) (cms.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return cms.User{}, cms.ErrNotFound
}

func (u userStore) Create(_ context.Context, user *cms.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[user.ID]; ok || u.emailTaken(user.Email, "") {
		return cms.ErrConflict
	}
	u.s.users[user.ID] = *user
	return nil
}

func (u userStore) Update(_ context.Context, id string, ch cms.UserChanges) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return cms.ErrNotFound
	}
	if ch.Email != nil {
		if u.emailTaken(*ch.Email, id) {
			return cms.ErrConflict
		}
		user.Email = *ch.Email
	}
	if ch.Name != nil {
		user.Name = *ch.Name
	}
	if ch.Role != nil {
		user.Role = *ch.Role
	}
	if ch.IsActive != nil {
		user.IsActive = *ch.IsActive
	}
	if ch.PasswordHash != nil {
		user.PasswordHash = *ch.PasswordHash
	}
	user.UpdatedAt = ch.UpdatedAt
	u.s.users[id] = user
	return nil
}

// Delete removes the user, their sessions, and clears references held by other rows.
func (u userStore) Delete(_ context.Context, id string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	if _, ok := u.s.users[id]; !ok {
		return cms.ErrNotFound
	}
	delete(u.s.users, id)
	for hash, rec := range u.s.sessions {
		if rec.UserID == id {
			delete(u.s.sessions, hash)
		}
	}
	for key, lead := range u.s.leads {
		if deref(lead.AssignedTo) == id {
			lead.AssignedTo = nil
			u.s.leads[key] = lead
		}
	}
	for key, post := range u.s.posts {
		if deref(post.AuthorID) == id {
			post.AuthorID = nil
			u.s.posts[key] = post
		}
	}
	for key, m := range u.s.media {
		if deref(m.UploadedBy) == id {
			m.UploadedBy = nil
			u.s.media[key] = m
		}
	}
	for key, st := range u.s.settings {
		if deref(st.UpdatedBy) == id {
			st.UpdatedBy = nil
			u.s.settings[key] = st
		}
	}
	for key, c := range u.s.content {
		if deref(c.UpdatedBy) == id {
			c.UpdatedBy = nil
			u.s.content[key] = c
		}
	}
	for i := range u.s.entries {
		if deref(u.s.entries[i].UserID) == id {
			u.s.entries[i].UserID = nil
		}
	}
	return nil
}
