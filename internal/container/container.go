package container

import (
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/glamour/internal/config"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/joshua-takyi/glamour/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Repos groups the storage the services run on. cmd/api wires Mongo and
// Supabase; route tests hand in memory.Store for every field.
type Repos struct {
	Users      models.UserRepo
	AdminUsers models.UserRepo
	Admins     models.AdminRepo
	MUAs       models.MUARepo
	Bookings   models.BookingRepo
	Reviews    models.ReviewsRepo
}

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Locker lock.Locker

	UserVerifier  helpers.TokenVerifier
	AdminVerifier *helpers.HMACVerifier

	UserService      *services.UserService
	AdminUserService *services.UserService
	MUAService       *services.MUAService
	BookingService   *services.BookingService
	ReviewService    *services.ReviewService
	RatingAggregator *services.RatingAggregator
	AdminService     *services.AdminService
}

// ProductionRepos builds the Mongo and Supabase backed repositories. Admin
// user management uses the service role client when one is configured.
func ProductionRepos(cfg *config.Config, supabaseClient, serviceClient *supabase.Client, mongoDBClient *mongo.Client) (Repos, *models.MongodbRepo) {
	supa := models.SupabaseNewRepo(supabaseClient, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	adminSupa := supa
	if serviceClient != nil {
		adminSupa = models.SupabaseNewRepo(serviceClient, "", "")
	}
	mdb := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBDatabase)

	return Repos{
		Users:      supa,
		AdminUsers: adminSupa,
		Admins:     mdb,
		MUAs:       mdb,
		Bookings:   mdb,
		Reviews:    mdb,
	}, mdb
}

// NewContainer creates a new dependency injection container. cld may be nil,
// in which case MUA media is stored as given.
func NewContainer(
	cfg *config.Config,
	logger *zap.Logger,
	repos Repos,
	locker lock.Locker,
	userVerifier helpers.TokenVerifier,
	cld *cloudinary.Cloudinary,
) *Container {
	var media helpers.MediaStore
	if cld != nil {
		media = helpers.NewCloudinaryStore(cld, logger)
	}
	adminVerifier := helpers.NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer, helpers.AdminAudience)

	aggregator := services.NewRatingAggregator(repos.Reviews, repos.MUAs, locker, cfg.LockWait, logger)
	bookingService := services.NewBookingService(repos.Bookings, repos.MUAs, locker, cfg.LockWait, logger)
	reviewService := services.NewReviewService(repos.Reviews, repos.Bookings, repos.MUAs, aggregator, locker, cfg.LockWait, logger)
	adminService := services.NewAdminService(services.AdminServiceDeps{
		Admins:   repos.Admins,
		Users:    repos.AdminUsers,
		MUAs:     repos.MUAs,
		Bookings: repos.Bookings,
		Reviews:  repos.Reviews,
		Tokens:   adminVerifier,
		TokenTTL: cfg.JWTExpires,
		Locker:   locker,
		LockWait: cfg.LockWait,
		Logger:   logger,
	})

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Locker:           locker,
		UserVerifier:     userVerifier,
		AdminVerifier:    adminVerifier,
		UserService:      services.NewUserService(repos.Users, logger),
		AdminUserService: services.NewUserService(repos.AdminUsers, logger),
		MUAService:       services.NewMUAService(repos.MUAs, media, logger),
		BookingService:   bookingService,
		ReviewService:    reviewService,
		RatingAggregator: aggregator,
		AdminService:     adminService,
	}
}
