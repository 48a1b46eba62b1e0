package auth

import (
	"context"
	"strings"

	"github.com/Domenick1991/parkinglot/internal/domain"
)

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, domain.Validationf("username is required")
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser refuses to remove the caller or the last admin.
func (s *AuthService) DeleteUser(ctx context.Context, actor *Claims, id int64) error {
	if actor.UserID() == id {
		return domain.Conflictf("cannot delete your own account")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}
	return s.users.Delete(ctx, id)
}

// ChangePassword is allowed to admins for anyone and to users for themselves.
func (s *AuthService) ChangePassword(ctx context.Context, actor *Claims, id int64, password string) error {
	if !actor.IsAdmin() && actor.UserID() != id {
		return domain.ErrForbidden
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

func (s *AuthService) ChangeRole(ctx context.Context, actor *Claims, id int64, role string) (*domain.User, error) {
	if role == "" {
		return nil, domain.Validationf("role is required")
	}
	newRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	if actor.UserID() == id {
		return nil, domain.Conflictf("cannot change your own role")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin && newRole != domain.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.users.UpdateRole(ctx, id, newRole); err != nil {
		return nil, err
	}
	user.Role = newRole
	return user, nil
}

func (s *AuthService) ensureOtherAdmin(ctx context.Context) error {
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return domain.Conflictf("cannot remove the last admin")
	}
	return nil
}

var _ UserUseCase = (*AuthService)(nil)
