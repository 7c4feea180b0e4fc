package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/curator-backend/internal/data/repos"
	types "github.com/yungbote/curator-backend/internal/domain"
	"github.com/yungbote/curator-backend/internal/domain/tenancy"
	"github.com/yungbote/curator-backend/internal/platform/apierr"
	"github.com/yungbote/curator-backend/internal/platform/dbctx"
	"github.com/yungbote/curator-backend/internal/platform/logger"
)

const (
	minPasswordLength = 8
	bcryptCost        = 10
)

type CreateUserInput struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     types.Role `json:"role"`
}

type UpdateUserInput struct {
	Email *string     `json:"email"`
	Role  *types.Role `json:"role"`
}

type UserService interface {
	Create(ctx context.Context, orgID uuid.UUID, in CreateUserInput) (*types.User, error)
	List(ctx context.Context, orgID uuid.UUID, role *types.Role) ([]*types.User, error)
	Get(ctx context.Context, orgID, id uuid.UUID) (*types.User, error)
	Update(ctx context.Context, orgID, id uuid.UUID, in UpdateUserInput) (*types.User, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *userService) Create(ctx context.Context, orgID uuid.UUID, in CreateUserInput) (*types.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apierr.Validation("Email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apierr.Validation("Invalid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apierr.Validation("Password must be at least %d characters", minPasswordLength)
	}
	role := in.Role
	if role == "" {
		role = tenancy.RoleMember
	}
	if !role.Valid() {
		return nil, apierr.Validation("Invalid role: %s", role)
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := s.ensureEmailFree(dbc, email, uuid.Nil); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &types.User{
		OrganisationID: orgID,
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
	}
	if err := s.userRepo.Create(dbc, user); err != nil {
		return nil, err
	}
	s.log.Info("User created", "user_id", user.ID, "organisation_id", orgID)
	return user, nil
}

func (s *userService) List(ctx context.Context, orgID uuid.UUID, role *types.Role) ([]*types.User, error) {
	if role != nil && !role.Valid() {
		return nil, apierr.Validation("Invalid role: %s", *role)
	}
	return s.userRepo.List(dbctx.Context{Ctx: ctx}, orgID, repos.UserFilter{Role: role})
}

func (s *userService) Get(ctx context.Context, orgID, id uuid.UUID) (*types.User, error) {
	return s.userRepo.GetByID(dbctx.Context{Ctx: ctx}, orgID, id)
}

func (s *userService) Update(ctx context.Context, orgID, id uuid.UUID, in UpdateUserInput) (*types.User, error) {
	dbc := dbctx.Context{Ctx: ctx}
	patch := types.UserPatch{Role: in.Role}
	if in.Role != nil && !in.Role.Valid() {
		return nil, apierr.Validation("Invalid role: %s", *in.Role)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, apierr.Validation("Invalid email")
		}
		if _, err := s.userRepo.GetByID(dbc, orgID, id); err != nil {
			return nil, err
		}
		if err := s.ensureEmailFree(dbc, email, id); err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if len(patch.Columns()) == 0 {
		return s.userRepo.GetByID(dbc, orgID, id)
	}
	return s.userRepo.Update(dbc, orgID, id, patch)
}

func (s *userService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.userRepo.SoftDelete(dbctx.Context{Ctx: ctx}, orgID, id)
}

// ensureEmailFree fails with Conflict when an active user other than self
// already owns email.
func (s *userService) ensureEmailFree(dbc dbctx.Context, email string, self uuid.UUID) error {
	existing, err := s.userRepo.GetByEmail(dbc, email)
	switch {
	case err == nil && existing.ID != self:
		return apierr.Conflict("User with this email already exists")
	case err == nil, apierr.Is(err, apierr.KindNotFound):
		return nil
	default:
		return fmt.Errorf("check email: %w", err)
	}
}
