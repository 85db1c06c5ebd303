package cms

import (
	"context"
	"errors"
	"strings"

	"beaconcms.org/internal/audit"
	"beaconcms.org/internal/auth"
	"beaconcms.org/internal/validate"
)

type UserInput struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Name     string `json:"name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=super_admin admin editor viewer"`
	IsActive *bool  `json:"isActive"`
}

type UserPatch struct {
	Email    *string `json:"email" validate:"omitempty,email,max=320"`
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
	Role     *string `json:"role" validate:"omitempty,oneof=super_admin admin editor viewer"`
	IsActive *bool   `json:"isActive"`
}

// ProfileInput is a signed-in user's change to their own account.
type ProfileInput struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=200"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" validate:"omitempty,min=8,max=128"`
}

func (s *Service) ListUsers(ctx context.Context, actor auth.Principal, f UserFilter) ([]User, Pagination, error) {
	if err := auth.Require(actor, auth.PermUsersView); err != nil {
		return nil, Pagination{}, err
	}
	if f.Role != "" && !auth.ValidRole(f.Role) {
		return nil, Pagination{}, invalid("role must be one of: super_admin, admin, editor, viewer")
	}
	f.Paging = f.Paging.normalize()
	items, total, err := s.store.Users().List(ctx, f)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, f.Paging.result(total), nil
}

func (s *Service) GetUser(ctx context.Context, actor auth.Principal, id string) (User, error) {
	if err := auth.Require(actor, auth.PermUsersView); err != nil {
		return User{}, err
	}
	user, err := s.store.Users().Get(ctx, id)
	return user, lookup(err, "User")
}

// Profile returns the signed-in user's own account.
func (s *Service) Profile(ctx context.Context, actor auth.Principal) (User, error) {
	if !actor.Authenticated() {
		return User{}, auth.ErrUnauthenticated
	}
	user, err := s.store.Users().Get(ctx, actor.ID)
	return user, lookup(err, "User")
}

func (s *Service) CreateUser(ctx context.Context, actor auth.Principal, in UserInput) (string, error) {
	if err := auth.Require(actor, auth.PermUsersCreate); err != nil {
		return "", err
	}
	if err := checkInput(in); err != nil {
		return "", err
	}
	if in.Role == auth.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return "", forbidden("only a super admin can grant the super_admin role")
	}
	email := validate.NormalizeEmail(in.Email)
	if err := s.ensureEmailFree(ctx, email, ""); err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", invalid("%s", err.Error())
	}
	now := s.timestamp()
	user := User{
		ID:           newID(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		IsActive:     in.IsActive == nil || *in.IsActive,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Users().Create(ctx, &user); err != nil {
		return "", emailConflict(err)
	}
	s.record(ctx, actor.ID, audit.ActionCreate, EntityUser, user.ID, nil, map[string]any{
		"email":    user.Email,
		"name":     user.Name,
		"role":     user.Role,
		"isActive": user.IsActive,
	})
	return user.ID, nil
}

func (s *Service) UpdateUser(ctx context.Context, actor auth.Principal, id string, p UserPatch) (User, error) {
	if err := auth.Require(actor, auth.PermUsersEdit); err != nil {
		return User{}, err
	}
	if err := checkInput(p); err != nil {
		return User{}, err
	}
	current, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return User{}, lookup(err, "User")
	}
	ch := UserChanges{}
	d := newDiff()

	if p.Email != nil {
		email := validate.NormalizeEmail(*p.Email)
		if email != current.Email {
			if err := s.ensureEmailFree(ctx, email, current.ID); err != nil {
				return User{}, err
			}
			ch.Email = &email
			d.set("email", current.Email, email)
		}
	}
	if p.Role != nil && *p.Role != current.Role {
		if *p.Role == auth.RoleSuperAdmin && !actor.IsSuperAdmin() {
			return User{}, forbidden("only a super admin can grant the super_admin role")
		}
		ch.Role = p.Role
		d.set("role", current.Role, *p.Role)
	}
	if p.IsActive != nil && *p.IsActive != current.IsActive {
		if !*p.IsActive && current.ID == actor.ID {
			return User{}, invalid("You cannot deactivate your own account")
		}
		ch.IsActive = p.IsActive
		d.set("isActive", current.IsActive, *p.IsActive)
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name != current.Name {
			ch.Name = &name
			d.set("name", current.Name, name)
		}
	}
	if p.Password != nil {
		hash, err := auth.HashPassword(*p.Password)
		if err != nil {
			return User{}, invalid("%s", err.Error())
		}
		ch.PasswordHash = &hash
		d.new["passwordChanged"] = true
	}
	ch.UpdatedAt = s.timestamp()

	if err := s.store.Users().Update(ctx, id, ch); err != nil {
		return User{}, emailConflict(lookup(err, "User"))
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntityUser, id, d.old, d.new)
	updated, err := s.store.Users().Get(ctx, id)
	return updated, lookup(err, "User")
}

// UpdateProfile lets the signed-in user rename themselves or change their password.
func (s *Service) UpdateProfile(ctx context.Context, actor auth.Principal, in ProfileInput) (User, error) {
	if !actor.Authenticated() {
		return User{}, auth.ErrUnauthenticated
	}
	if err := checkInput(in); err != nil {
		return User{}, err
	}
	current, err := s.store.Users().Get(ctx, actor.ID)
	if err != nil {
		return User{}, lookup(err, "User")
	}
	ch := UserChanges{}
	d := newDiff()
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != current.Name {
			ch.Name = &name
			d.set("name", current.Name, name)
		}
	}
	if in.NewPassword != nil {
		if in.CurrentPassword == nil || *in.CurrentPassword == "" {
			return User{}, invalid("currentPassword is required")
		}
		if err := auth.VerifyPassword(current.PasswordHash, *in.CurrentPassword); err != nil {
			return User{}, invalid("Current password is incorrect")
		}
		hash, err := auth.HashPassword(*in.NewPassword)
		if err != nil {
			return User{}, invalid("%s", err.Error())
		}
		ch.PasswordHash = &hash
		d.new["passwordChanged"] = true
	}
	ch.UpdatedAt = s.timestamp()
	if err := s.store.Users().Update(ctx, actor.ID, ch); err != nil {
		return User{}, lookup(err, "User")
	}
	s.record(ctx, actor.ID, audit.ActionUpdate, EntityUser, actor.ID, d.old, d.new)
	updated, err := s.store.Users().Get(ctx, actor.ID)
	return updated, lookup(err, "User")
}

func (s *Service) DeleteUser(ctx context.Context, actor auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermUsersDelete); err != nil {
		return err
	}
	if id == actor.ID {
		return invalid("You cannot delete your own account")
	}
	current, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return lookup(err, "User")
	}
	if current.Role == auth.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return forbidden("only a super admin can delete a super admin")
	}
	if err := s.store.Users().Delete(ctx, id); err != nil {
		return lookup(err, "User")
	}
	s.record(ctx, actor.ID, audit.ActionDelete, EntityUser, id, map[string]any{
		"email": current.Email,
		"name":  current.Name,
		"role":  current.Role,
	}, nil)
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, ownID string) error {
	existing, err := s.store.Users().GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != ownID:
		return conflict("A user with this email already exists")
	}
	return nil
}

func emailConflict(err error) error {
	var e *Error
	if errors.Is(err, ErrConflict) && !errors.As(err, &e) {
		return conflict("A user with this email already exists")
	}
	return err
}

func forbidden(msg string) error {
	return &Error{Kind: auth.ErrForbidden, Msg: msg}
}
