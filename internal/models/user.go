package models

import (
	"context"
	"time"

	"github.com/supabase-community/gotrue-go/types"
)

// User is a row of the Supabase profiles table. The row is created by the
// auth.users trigger from the signup metadata.
type User struct {
	ID          string    `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	FullName    string    `db:"full_name" json:"full_name"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	Role        string    `db:"role" json:"role"`
	AvatarURL   string    `db:"avatar_url" json:"avatar_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role" validate:"omitempty,oneof=CUSTOMER MUA customer mua"`
}

// UserEditableFields are the profile columns an administrator may patch.
var UserEditableFields = []string{"full_name", "phone_number", "role", "avatar_url"}

type UserRepo interface {
	CreateUser(ctx context.Context, input *RegisterInput, role Role) (*types.SignupResponse, error)
	AuthenticateUser(ctx context.Context, email, password string) (*types.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	GetUser(ctx context.Context, id string, accessToken string) (*User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*User, int64, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUser(ctx context.Context, fields map[string]interface{}, id string, accessToken string) (*User, error)
	DeleteUser(ctx context.Context, id string, accessToken string) error
}
