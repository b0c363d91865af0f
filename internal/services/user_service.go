package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/supabase-community/gotrue-go/types"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo models.UserRepo
	logger   *zap.Logger
}

func NewUserService(userRepo models.UserRepo, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register signs a customer or MUA up. Administrator roles are never granted here.
func (us *UserService) Register(ctx context.Context, in *models.RegisterInput) (*types.SignupResponse, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.InvalidInput(fmt.Sprintf("invalid registration data: %v", err))
	}
	if !helpers.IsPasswordStrong(in.Password) {
		return nil, models.InvalidInput("password must be at least 8 characters with upper and lower case letters and a digit")
	}

	role := models.RoleCustomer
	if in.Role != "" {
		parsed, err := models.ParseRole(in.Role)
		if err != nil || parsed.IsAdmin() {
			return nil, models.InvalidInput("role must be CUSTOMER or MUA")
		}
		role = parsed
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	res, err := us.userRepo.CreateUser(ctx, in, role)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, models.Conflict("email already registered")
		}
		return nil, models.Internal("failed to register user", err)
	}
	us.logger.Info("user registered", zap.String("email", in.Email), zap.String("role", string(role)))
	return res, nil
}

func (us *UserService) Authenticate(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	if err := models.Validate.Var(email, "required,email"); err != nil {
		return nil, models.InvalidInput("invalid email format")
	}
	if err := models.Validate.Var(password, "required"); err != nil {
		return nil, models.InvalidInput("password is required")
	}
	res, err := us.userRepo.AuthenticateUser(ctx, email, password)
	if err != nil {
		us.logger.Info("user login failed", zap.String("email", email), zap.Error(err))
		return nil, models.Unauthorized("invalid credentials")
	}
	return res, nil
}

func (us *UserService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if refreshToken == "" {
		return nil, models.Unauthorized("refresh token is required")
	}
	res, err := us.userRepo.RefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, models.Unauthorized("token refresh failed")
	}
	return res, nil
}

func (us *UserService) GetUser(ctx context.Context, id string, accessToken string) (*models.User, error) {
	user, err := us.userRepo.GetUser(ctx, id, accessToken)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.NotFound("user not found")
		}
		return nil, models.Internal("failed to get user", err)
	}
	return user, nil
}

// ResolvePrincipal maps a verified token subject to a principal through the
// profile row. A profile with an unrecognised role resolves to nothing.
func (us *UserService) ResolvePrincipal(ctx context.Context, userID, accessToken string) (models.Principal, error) {
	user, err := us.GetUser(ctx, userID, accessToken)
	if err != nil {
		return models.Principal{}, err
	}
	role, err := models.ParseRole(user.Role)
	if err != nil || role.IsAdmin() {
		return models.Principal{}, models.Forbidden("account has no usable role")
	}
	return models.Principal{ID: user.ID, Role: role}, nil
}

func (us *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	users, total, err := us.userRepo.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, 0, models.Internal("failed to list users", err)
	}
	return users, total, nil
}

func (us *UserService) Count(ctx context.Context) (int64, error) {
	n, err := us.userRepo.CountUsers(ctx)
	if err != nil {
		return 0, models.Internal("failed to count users", err)
	}
	return n, nil
}

func (us *UserService) UpdateUser(ctx context.Context, id string, body map[string]interface{}, accessToken string) (*models.User, error) {
	fields := make(map[string]interface{})
	for _, key := range models.UserEditableFields {
		if v, ok := body[key]; ok {
			fields[key] = v
		}
	}
	if len(fields) == 0 {
		return nil, models.InvalidInput("no editable fields provided")
	}
	if raw, ok := fields["role"]; ok {
		s, _ := raw.(string)
		role, err := models.ParseRole(s)
		if err != nil || role.IsAdmin() {
			return nil, models.InvalidInput("role must be CUSTOMER or MUA")
		}
		fields["role"] = string(role)
	}
	fields["updated_at"] = time.Now().UTC()

	user, err := us.userRepo.UpdateUser(ctx, fields, id, accessToken)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.NotFound("user not found")
		}
		return nil, models.Internal("failed to update user", err)
	}
	return user, nil
}

func (us *UserService) DeleteUser(ctx context.Context, id string, accessToken string) error {
	if err := us.userRepo.DeleteUser(ctx, id, accessToken); err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.NotFound("user not found")
		}
		return models.Internal("failed to delete user", err)
	}
	us.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}
