package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go/types"
)

const (
	ProfileTable   = "profiles"
	profileColumns = "id,email,full_name,phone_number,role,avatar_url,created_at,updated_at"
)

func (su *SupabaseRepo) CreateUser(ctx context.Context, input *RegisterInput, role Role) (*types.SignupResponse, error) {
	req := types.SignupRequest{
		Email:    input.Email,
		Password: input.Password,
		Data: map[string]interface{}{
			"full_name":    input.FullName,
			"phone_number": input.PhoneNumber,
			"role":         string(role),
		},
	}

	res, err := su.supabaseClient.Auth.Signup(req)
	if err != nil {
		errMsg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(errMsg, "already registered"), strings.Contains(errMsg, "unique constraint"):
			return nil, ErrDuplicate
		case strings.Contains(errMsg, "null value in column"):
			return nil, fmt.Errorf("required field is missing")
		case strings.Contains(errMsg, "invalid input syntax"):
			return nil, fmt.Errorf("invalid input format")
		}
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return res, nil
}

func (su *SupabaseRepo) AuthenticateUser(ctx context.Context, email, password string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate user: %v", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %v", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) GetUser(ctx context.Context, id string, accessToken string) (*User, error) {
	if id == "" {
		return nil, ErrNoRecord
	}
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	raw, status, err := client.From(ProfileTable).
		Select(profileColumns, "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}

	// Supabase returns an array even for single results
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user rows: %v", err)
	}
	switch len(users) {
	case 0:
		return nil, ErrNoRecord
	case 1:
		return &users[0], nil
	default:
		return nil, fmt.Errorf("multiple users found for ID %s", id)
	}
}

func (su *SupabaseRepo) ListUsers(ctx context.Context, offset, limit int) ([]*User, int64, error) {
	raw, count, err := su.supabaseClient.From(ProfileTable).
		Select(profileColumns, "exact", false).
		Order("created_at", nil).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %v", err)
	}

	var users []*User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal user rows: %v", err)
	}
	return users, count, nil
}

func (su *SupabaseRepo) CountUsers(ctx context.Context) (int64, error) {
	_, count, err := su.supabaseClient.From(ProfileTable).Select("id", "exact", true).Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %v", err)
	}
	return count, nil
}

func (su *SupabaseRepo) UpdateUser(ctx context.Context, fields map[string]interface{}, id string, accessToken string) (*User, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	raw, count, err := client.From(ProfileTable).
		Update(fields, "", "exact").
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}
	if count == 0 {
		return nil, ErrNoRecord
	}

	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated user: %v", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no user data returned after update")
	}
	return &users[0], nil
}

func (su *SupabaseRepo) DeleteUser(ctx context.Context, id string, accessToken string) error {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return err
	}
	_, count, err := client.From(ProfileTable).Delete("", "exact").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	if count == 0 {
		return ErrNoRecord
	}
	return nil
}
