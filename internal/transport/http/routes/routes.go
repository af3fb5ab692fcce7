package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/infra/config"
	infraredis "github.com/msubchak/online-cinema/internal/infra/redis"
	"github.com/msubchak/online-cinema/internal/infra/security"
	"github.com/msubchak/online-cinema/internal/transport/http/handlers"
	"github.com/msubchak/online-cinema/internal/transport/http/middleware"
	"github.com/msubchak/online-cinema/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Accounts       *usecase.AccountService
	Movies         *usecase.MovieService
	Genres         *usecase.LookupService
	Stars          *usecase.LookupService
	Directors      *usecase.LookupService
	Certifications *usecase.LookupService
	Carts          *usecase.CartService
	Orders         *usecase.OrderService
	Payments       *usecase.PaymentService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Services    ServiceSet
	JWTManager  *security.JWTManager
	Gateway     port.PaymentGateway
	Pool        *pgxpool.Pool
	Redis       *infraredis.Client
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(nil))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else {
		deps.Logger.Warn("HTTP metrics disabled", zap.Error(err))
	}

	healthHandler := handlers.NewHealthHandler(deps.Pool, deps.Redis)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := middleware.RequireAuth(deps.JWTManager)
	staffOnly := middleware.RequireGroups(domain.GroupModerator, domain.GroupAdmin)
	adminOnly := middleware.RequireGroups(domain.GroupAdmin)

	api := r.Group("/api/v1")
	{
		accountHandler := handlers.NewAccountHandler(deps.Services.Accounts)

		accounts := api.Group("/accounts")
		accounts.POST("/register", limited(deps, "register_ip", deps.Config.RateLimit.RegisterMaxAttempts, accountHandler.Register)...)
		accounts.POST("/activate", accountHandler.Activate)
		accounts.POST("/activate/resend", limited(deps, "activation_resend_ip", deps.Config.RateLimit.RegisterMaxAttempts, accountHandler.ResendActivation)...)
		accounts.POST("/login", limited(deps, "login_ip", deps.Config.RateLimit.LoginMaxAttempts, accountHandler.Login)...)
		accounts.POST("/logout", authRequired, accountHandler.Logout)
		accounts.POST("/refresh", accountHandler.Refresh)
		accounts.POST("/password-reset/request", limited(deps, "password_reset_ip", deps.Config.RateLimit.PasswordResetMaxAttempts, accountHandler.RequestPasswordReset)...)
		accounts.POST("/password-reset/complete", accountHandler.CompletePasswordReset)
		accounts.POST("/password/change", authRequired, accountHandler.ChangePassword)
		accounts.GET("/me", authRequired, accountHandler.Me)
		accounts.POST("/users/:id/group", authRequired, adminOnly, accountHandler.ChangeGroup)

		movieHandler := handlers.NewMovieHandler(deps.Services.Movies)

		movies := api.Group("/movies")
		movies.Use(authRequired)
		movies.GET("", movieHandler.List)
		movies.GET("/:id", movieHandler.Get)
		movies.POST("", staffOnly, movieHandler.Create)
		movies.PUT("/:id", staffOnly, movieHandler.Update)
		movies.DELETE("/:id", staffOnly, movieHandler.Delete)

		registerLookup(api, "/genres", handlers.NewLookupHandler(deps.Services.Genres, "genre"), authRequired, staffOnly)
		registerLookup(api, "/stars", handlers.NewLookupHandler(deps.Services.Stars, "star"), authRequired, staffOnly)
		registerLookup(api, "/directors", handlers.NewLookupHandler(deps.Services.Directors, "director"), authRequired, staffOnly)
		registerLookup(api, "/certifications", handlers.NewLookupHandler(deps.Services.Certifications, "certification"), authRequired, staffOnly)

		cartHandler := handlers.NewCartHandler(deps.Services.Carts)

		cart := api.Group("/cart")
		cart.Use(authRequired)
		cart.GET("", cartHandler.Get)
		cart.POST("/items", cartHandler.AddMovie)
		cart.DELETE("/items/:id", cartHandler.RemoveMovie)

		orderHandler := handlers.NewOrderHandler(deps.Services.Orders)

		orders := api.Group("/orders")
		orders.Use(authRequired)
		orders.POST("", orderHandler.Create)
		orders.GET("", orderHandler.ListOwn)
		orders.GET("/all", adminOnly, orderHandler.ListAll)
		orders.GET("/:id", orderHandler.Get)
		orders.POST("/:id/pay", orderHandler.Pay)
		orders.POST("/:id/cancel", orderHandler.Cancel)

		paymentHandler := handlers.NewPaymentHandler(deps.Services.Payments, deps.Gateway, deps.Logger)

		payments := api.Group("/payments")
		payments.POST("/webhook", paymentHandler.Webhook)
		payments.POST("", authRequired, paymentHandler.Checkout)
		payments.GET("", authRequired, paymentHandler.ListOwn)
		payments.GET("/all", authRequired, adminOnly, paymentHandler.ListAll)
	}

	return r
}

func registerLookup(api *gin.RouterGroup, path string, h *handlers.LookupHandler, authRequired, staffOnly gin.HandlerFunc) {
	group := api.Group(path)
	group.Use(authRequired)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("", staffOnly, h.Create)
	group.PUT("/:id", staffOnly, h.Update)
	group.DELETE("/:id", staffOnly, h.Delete)
}

// limited prefixes the handler with an IP sliding-window limiter when the
// rule is enabled.
func limited(deps Dependencies, name string, maxAttempts int, handler gin.HandlerFunc) []gin.HandlerFunc {
	if deps.RateLimiter == nil || maxAttempts <= 0 {
		return []gin.HandlerFunc{handler}
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      maxAttempts,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule), handler}
}
