package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/glamour/internal/container"
	"github.com/joshua-takyi/glamour/internal/handlers"
	"github.com/joshua-takyi/glamour/internal/metrics"
	"github.com/joshua-takyi/glamour/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secure := cfg.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(metrics.Middleware())
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "glamour-api",
		})
	})

	requireUser := middleware.AuthMiddleware(container.UserVerifier, container.UserService, container.UserService, secure, container.Logger)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", handlers.RegisterUser(container.UserService))
		auth.POST("/login", handlers.LoginUser(container.UserService, secure))
		auth.POST("/logout", handlers.Logout(secure))
		auth.GET("/me", requireUser, handlers.Me(container.UserService))
	}

	muas := v1.Group("/muas")
	{
		muas.GET("", handlers.ListMUAs(container.MUAService))
		muas.GET("/:id", handlers.GetMUA(container.MUAService))
		muas.GET("/:id/reviews", handlers.ListMUAReviews(container.ReviewService))
		muas.POST("", requireUser, handlers.CreateMUA(container.MUAService))
	}

	bookings := v1.Group("/bookings", requireUser)
	{
		bookings.POST("", handlers.CreateBooking(container.BookingService))
		bookings.GET("/user/:userId", handlers.ListCustomerBookings(container.BookingService))
		bookings.GET("/mua/:muaId", handlers.ListProviderBookings(container.BookingService))
		bookings.GET("/:id", handlers.GetBooking(container.BookingService))
		bookings.PATCH("/:id", handlers.UpdateBookingStatus(container.BookingService))
	}

	v1.POST("/reviews", requireUser, handlers.SubmitReview(container.ReviewService))

	setupAdminRoutes(v1, container)

	return r
}

func setupAdminRoutes(v1 *gin.RouterGroup, container *container.Container) {
	as := container.AdminService
	logger := container.Logger

	admin := v1.Group("/admin")
	admin.POST("/auth/register", middleware.OptionalAdminAuth(as, logger), handlers.RegisterAdmin(as))
	admin.POST("/auth/login", handlers.LoginAdmin(as))

	protected := admin.Group("", middleware.AdminAuth(as, false, logger))
	protected.GET("/profile", handlers.AdminProfile(as))
	protected.PUT("/profile", handlers.UpdateAdminProfile(as))
	protected.GET("/dashboard/stats", handlers.DashboardStats(as))

	users := protected.Group("/users")
	{
		users.GET("", handlers.AdminListUsers(container.AdminUserService))
		users.GET("/:id", handlers.AdminGetUser(container.AdminUserService))
		users.PUT("/:id", handlers.AdminUpdateUser(container.AdminUserService))
		users.DELETE("/:id", handlers.AdminDeleteUser(container.AdminUserService))
	}

	muas := protected.Group("/muas")
	{
		muas.GET("", handlers.AdminListMUAs(container.MUAService))
		muas.GET("/:id", handlers.GetMUA(container.MUAService))
		muas.PUT("/:id", handlers.AdminUpdateMUA(container.MUAService))
		muas.DELETE("/:id", handlers.AdminDeleteMUA(container.MUAService))
		muas.POST("/:id/recompute-rating", handlers.RecomputeMUARating(container.RatingAggregator))
	}

	bookings := protected.Group("/bookings")
	{
		bookings.GET("", handlers.AdminListBookings(container.BookingService))
		bookings.GET("/:id", handlers.AdminGetBooking(container.BookingService))
		bookings.PUT("/:id", handlers.AdminUpdateBooking(container.BookingService))
		bookings.DELETE("/:id", handlers.AdminDeleteBooking(container.BookingService))
	}

	reviews := protected.Group("/reviews")
	{
		reviews.GET("", handlers.AdminListReviews(container.ReviewService))
		reviews.GET("/:id", handlers.AdminGetReview(container.ReviewService))
		reviews.PUT("/:id", handlers.AdminModerateReview(container.ReviewService))
		reviews.DELETE("/:id", handlers.AdminDeleteReview(container.ReviewService))
	}

	superOnly := admin.Group("", middleware.AdminAuth(as, true, logger))
	superOnly.GET("/login-logs", handlers.ListLoginLogs(as))
}
