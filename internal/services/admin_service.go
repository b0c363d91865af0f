package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
)

type AdminService struct {
	admins   models.AdminRepo
	users    models.UserRepo
	muas     models.MUARepo
	bookings models.BookingRepo
	reviews  models.ReviewsRepo
	tokens   *helpers.HMACVerifier
	tokenTTL time.Duration
	locker   lock.Locker
	lockWait time.Duration
	logger   *zap.Logger
}

type AdminServiceDeps struct {
	Admins   models.AdminRepo
	Users    models.UserRepo
	MUAs     models.MUARepo
	Bookings models.BookingRepo
	Reviews  models.ReviewsRepo
	Tokens   *helpers.HMACVerifier
	TokenTTL time.Duration
	Locker   lock.Locker
	LockWait time.Duration
	Logger   *zap.Logger
}

func NewAdminService(d AdminServiceDeps) *AdminService {
	return &AdminService{
		admins:   d.Admins,
		users:    d.Users,
		muas:     d.MUAs,
		bookings: d.Bookings,
		reviews:  d.Reviews,
		tokens:   d.Tokens,
		tokenTTL: d.TokenTTL,
		locker:   d.Locker,
		lockWait: d.LockWait,
		logger:   d.Logger,
	}
}

// AdminSession is what register and login hand back.
type AdminSession struct {
	Token string        `json:"token"`
	Admin *models.Admin `json:"admin"`
}

type DashboardStats struct {
	TotalUsers      int64 `json:"total_users"`
	TotalMUAs       int64 `json:"total_muas"`
	TotalBookings   int64 `json:"total_bookings"`
	TotalReviews    int64 `json:"total_reviews"`
	PendingBookings int64 `json:"pending_bookings"`
}

// Register creates an administrator. While no administrator exists anyone may
// register and the account becomes SUPER_ADMIN; afterwards caller must be a
// SUPER_ADMIN. The count and the insert share one lock so only one bootstrap wins.
func (as *AdminService) Register(ctx context.Context, caller *models.Principal, in *models.AdminInput) (*AdminSession, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.InvalidInput(fmt.Sprintf("invalid admin data provided: %v", err))
	}

	var created *models.Admin
	err := withLock(ctx, as.locker, lock.AdminBootstrapKey, as.lockWait, func() error {
		count, err := as.admins.CountAdmins(ctx)
		if err != nil {
			return models.Internal("failed to count admins", err)
		}

		role := in.Role
		if role == "" {
			role = models.RoleAdmin
		}
		if count == 0 {
			role = models.RoleSuperAdmin
		} else {
			if caller == nil {
				return models.Unauthorized("access token required")
			}
			if caller.Role != models.RoleSuperAdmin {
				return models.Forbidden("super admin privileges required")
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.Internal("failed to hash password", err)
		}
		now := time.Now().UTC()
		admin := &models.Admin{
			ID:        uuid.NewString(),
			Email:     strings.ToLower(strings.TrimSpace(in.Email)),
			Password:  string(hash),
			Name:      strings.TrimSpace(in.Name),
			Role:      role,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		created, err = as.admins.CreateAdmin(ctx, admin)
		if err != nil {
			if errors.Is(err, models.ErrDuplicate) {
				return models.Conflict("email already registered")
			}
			return models.Internal("failed to create admin", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	as.logger.Info("admin registered",
		zap.String("admin_id", created.ID),
		zap.String("role", string(created.Role)),
	)
	return as.session(created)
}

func (as *AdminService) session(admin *models.Admin) (*AdminSession, error) {
	token, err := as.tokens.Sign(admin.ID, admin.Email, string(admin.Role), as.tokenTTL)
	if err != nil {
		return nil, models.Internal("failed to sign token", err)
	}
	return &AdminSession{Token: token, Admin: admin}, nil
}

// Login checks credentials and records the attempt whatever the outcome.
func (as *AdminService) Login(ctx context.Context, in *models.AdminLoginInput, ip, userAgent string) (*AdminSession, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.InvalidInput(fmt.Sprintf("invalid login data provided: %v", err))
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	entry := &models.LoginLog{
		ID:        uuid.NewString(),
		Email:     email,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
	}

	admin, err := as.admins.GetAdminByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNoRecord) {
		return nil, models.Internal("failed to load admin", err)
	}
	if admin == nil || !admin.IsActive {
		entry.FailureReason = "invalid credentials"
		as.recordLogin(ctx, entry)
		return nil, models.Unauthorized("invalid credentials")
	}

	entry.AdminID = admin.ID
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(in.Password)); err != nil {
		entry.FailureReason = "invalid password"
		as.recordLogin(ctx, entry)
		return nil, models.Unauthorized("invalid credentials")
	}

	now := time.Now().UTC()
	if err := as.admins.TouchAdminLogin(ctx, admin.ID, now); err != nil {
		as.logger.Warn("failed to update last login", zap.String("admin_id", admin.ID), zap.Error(err))
	}
	admin.LastLoginAt = &now
	entry.Success = true
	as.recordLogin(ctx, entry)

	return as.session(admin)
}

// recordLogin never fails the login it is describing.
func (as *AdminService) recordLogin(ctx context.Context, entry *models.LoginLog) {
	if err := as.admins.RecordLogin(ctx, entry); err != nil {
		as.logger.Error("failed to record login", zap.String("email", entry.Email), zap.Error(err))
	}
}

// Authenticate turns an admin bearer token into a principal. Deactivated or
// deleted administrators are rejected even while their token is unexpired.
func (as *AdminService) Authenticate(ctx context.Context, token string) (models.Principal, error) {
	claims, err := as.tokens.Verify(token)
	if err != nil {
		return models.Principal{}, models.Unauthorized("invalid or expired token")
	}
	admin, err := as.admins.GetAdminByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.Principal{}, models.Forbidden("admin privileges required")
		}
		return models.Principal{}, models.Internal("failed to load admin", err)
	}
	if !admin.IsActive || !admin.Role.IsAdmin() {
		return models.Principal{}, models.Forbidden("admin privileges required")
	}
	return models.Principal{ID: admin.ID, Role: admin.Role}, nil
}

func (as *AdminService) Profile(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := as.admins.GetAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.NotFound("admin not found")
		}
		return nil, models.Internal("failed to load admin", err)
	}
	return admin, nil
}

func (as *AdminService) UpdateProfile(ctx context.Context, id string, in *models.AdminProfileInput) (*models.Admin, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.InvalidInput(fmt.Sprintf("invalid profile data provided: %v", err))
	}
	fields := make(map[string]interface{})
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.Internal("failed to hash password", err)
		}
		fields["password"] = string(hash)
	}
	if len(fields) == 0 {
		return nil, models.InvalidInput("no fields to update")
	}

	admin, err := as.admins.UpdateAdmin(ctx, id, fields)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoRecord):
			return nil, models.NotFound("admin not found")
		case errors.Is(err, models.ErrDuplicate):
			return nil, models.Conflict("email already registered")
		}
		return nil, models.Internal("failed to update admin", err)
	}
	return admin, nil
}

func (as *AdminService) LoginLogs(ctx context.Context, filter models.LoginLogFilter, offset, limit int) ([]*models.LoginLog, int64, error) {
	logs, total, err := as.admins.ListLoginLogs(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, models.Internal("failed to list login logs", err)
	}
	return logs, total, nil
}

func (as *AdminService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = as.users.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalMUAs, err = as.muas.CountMUAs(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalBookings, err = as.bookings.CountBookings(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.PendingBookings, err = as.bookings.CountBookings(gctx, models.BookingPending)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalReviews, err = as.reviews.CountReviews(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, models.Internal("failed to collect dashboard stats", err)
	}
	return &stats, nil
}
