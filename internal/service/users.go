package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

// UserInput creates or updates a user. An empty Password or Role on update
// keeps the stored value.
type UserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"omitempty,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,role"`
}

// Authenticate checks a username/password pair. Legacy plaintext passwords
// are upgraded to bcrypt on the first successful login.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	user, err := s.gw.Users().GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	ok, needsRehash := user.CheckPassword(password)
	if !ok {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if needsRehash {
		if err := user.SetPassword(password); err != nil {
			log.Warn().Err(err).Str("username", username).Msg("hash legacy password failed")
		} else if _, err := s.gw.Users().Save(ctx, user); err != nil {
			log.Warn().Err(err).Str("username", username).Msg("store rehashed password failed")
		}
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, actor Actor) ([]domain.User, error) {
	if err := authorize(actor.role().CanManageUsers()); err != nil {
		return nil, err
	}
	users, err := s.gw.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Service) SaveUser(ctx context.Context, actor Actor, in UserInput) (domain.User, error) {
	if err := authorize(actor.role().CanManageUsers()); err != nil {
		return domain.User{}, err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Role = strings.TrimSpace(in.Role)
	if err := validateStruct(in); err != nil {
		return domain.User{}, err
	}
	role, _ := domain.ParseRole(in.Role)

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.gw.Users().GetByUsername(ctx, in.Username)
	isNew := isNotFound(err)
	if err != nil && !isNew {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	user := domain.User{Username: in.Username, Role: role}
	oldVal := domain.LogValue("-")
	if isNew {
		if in.Password == "" {
			return domain.User{}, domain.NewValidationError("password", "is required")
		}
		if user.Role == "" {
			user.Role = domain.RoleStaff
		}
	} else {
		oldVal = domain.LogValue(existing.Role)
		if existing.Role == domain.RoleOwner && role != "" && role != domain.RoleOwner {
			if err := s.ensureAnotherOwner(ctx, existing.Username); err != nil {
				return domain.User{}, err
			}
		}
	}
	if in.Password != "" {
		if err := user.SetPassword(in.Password); err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
	}

	saved, err := s.gw.Users().Save(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	s.audit(ctx, actor, domain.ActionSaveUser, saved.Username, oldVal, domain.LogValue(saved.Role), domain.SourceUsers)
	return saved, nil
}

func (s *Service) DeleteUser(ctx context.Context, actor Actor, username string) error {
	if err := authorize(actor.role().CanManageUsers()); err != nil {
		return err
	}
	username = strings.TrimSpace(username)
	if strings.EqualFold(username, actor.Username) {
		return domain.NewValidationError("username", "cannot delete the signed-in user")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.gw.Users().GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user.Role == domain.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, user.Username); err != nil {
			return err
		}
	}
	if err := s.gw.Users().Delete(ctx, username); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.audit(ctx, actor, domain.ActionDeleteUser, username, domain.LogValue(user.Role), "-", domain.SourceUsers)
	return nil
}

func (s *Service) ensureAnotherOwner(ctx context.Context, username string) error {
	users, err := s.gw.Users().List(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		if u.Role == domain.RoleOwner && u.Username != username {
			return nil
		}
	}
	return domain.NewValidationError("role", "the last owner cannot be removed")
}
