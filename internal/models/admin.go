package models

import (
	"context"
	"time"
)

type Admin struct {
	ID          string     `bson:"id" json:"id"`
	Email       string     `bson:"email" json:"email"`
	Password    string     `bson:"password" json:"-"`
	Name        string     `bson:"name" json:"name"`
	Role        Role       `bson:"role" json:"role"`
	IsActive    bool       `bson:"is_active" json:"is_active"`
	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

type AdminInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
	Role     Role   `json:"role" validate:"omitempty,oneof=ADMIN SUPER_ADMIN"`
}

type AdminLoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AdminProfileInput is the self-service profile update. Nil means untouched.
type AdminProfileInput struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

type LoginLog struct {
	ID            string    `bson:"id" json:"id"`
	AdminID       string    `bson:"admin_id,omitempty" json:"admin_id,omitempty"`
	Email         string    `bson:"email" json:"email"`
	IPAddress     string    `bson:"ip_address" json:"ip_address"`
	UserAgent     string    `bson:"user_agent" json:"user_agent"`
	Success       bool      `bson:"success" json:"success"`
	FailureReason string    `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// LoginLogFilter: Email matches as a case-insensitive substring, Success nil means both.
type LoginLogFilter struct {
	Email   string
	Success *bool
}

type AdminRepo interface {
	// CreateAdmin returns ErrDuplicate when the email is taken.
	CreateAdmin(ctx context.Context, admin *Admin) (*Admin, error)
	GetAdminByID(ctx context.Context, id string) (*Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*Admin, error)
	CountAdmins(ctx context.Context) (int64, error)
	UpdateAdmin(ctx context.Context, id string, fields map[string]interface{}) (*Admin, error)
	TouchAdminLogin(ctx context.Context, id string, at time.Time) error

	RecordLogin(ctx context.Context, log *LoginLog) error
	ListLoginLogs(ctx context.Context, filter LoginLogFilter, offset, limit int) ([]*LoginLog, int64, error)
}
