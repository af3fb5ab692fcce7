package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/msubchak/online-cinema/internal/core/port"
	"github.com/msubchak/online-cinema/internal/infra/config"
	"github.com/msubchak/online-cinema/internal/infra/database"
	emailinfra "github.com/msubchak/online-cinema/internal/infra/email"
	kafkainfra "github.com/msubchak/online-cinema/internal/infra/kafka"
	"github.com/msubchak/online-cinema/internal/infra/logger"
	redisinfra "github.com/msubchak/online-cinema/internal/infra/redis"
	"github.com/msubchak/online-cinema/internal/infra/security"
	stripeinfra "github.com/msubchak/online-cinema/internal/infra/stripe"
	"github.com/msubchak/online-cinema/internal/infra/tasks"
	postgresrepo "github.com/msubchak/online-cinema/internal/repository/postgres"
	redisrepo "github.com/msubchak/online-cinema/internal/repository/redis"
	"github.com/msubchak/online-cinema/internal/transport/http/middleware"
	"github.com/msubchak/online-cinema/internal/transport/http/routes"
	"github.com/msubchak/online-cinema/internal/usecase"
)

type Application struct {
	cfg     *config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	pool    *pgxpool.Pool
	redis   *redisinfra.Client
	cleanup *tasks.TokenCleanup
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	jwtManager, err := security.NewJWTManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.App.Name,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, fmt.Errorf("init jwt manager: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	if err := repos.Groups.Seed(ctx); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("seed user groups: %w", err)
	}

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	var emailSender port.EmailSender
	if cfg.Email.Host != "" {
		emailSender = emailinfra.NewSMTPSender(cfg.Email, log)
	} else {
		log.Info("smtp host not configured, logging emails instead")
		emailSender = emailinfra.NewLoggingSender(log)
	}

	gateway := stripeinfra.NewGateway(cfg.Stripe, log)
	if !gateway.Configured() {
		log.Warn("stripe secret key not configured, checkout is disabled")
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "cinema:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	passwordValidator := security.DefaultPasswordValidator()

	accountService := usecase.NewAccountService(
		repos.Users,
		repos.Groups,
		repos.Tokens,
		jwtManager,
		passwordValidator,
		emailSender,
		eventPublisher,
		cfg.App.BaseURL,
		log,
	)
	movieService := usecase.NewMovieService(repos.Movies, log)
	cartService := usecase.NewCartService(repos.Carts, repos.Movies, repos.Orders, log)
	orderService := usecase.NewOrderService(repos.Orders, log)
	paymentService := usecase.NewPaymentService(
		repos.Payments,
		repos.Orders,
		repos.Users,
		gateway,
		emailSender,
		eventPublisher,
		cfg.Stripe.Currency,
		log,
	)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		JWTManager:  jwtManager,
		Gateway:     gateway,
		Pool:        pool,
		Redis:       redisClient,
		Services: routes.ServiceSet{
			Accounts:       accountService,
			Movies:         movieService,
			Genres:         usecase.NewLookupService(repos.Genres),
			Stars:          usecase.NewLookupService(repos.Stars),
			Directors:      usecase.NewLookupService(repos.Directors),
			Certifications: usecase.NewLookupService(repos.Certifications),
			Carts:          cartService,
			Orders:         orderService,
			Payments:       paymentService,
		},
	})

	return &Application{
		cfg:     cfg,
		engine:  engine,
		logger:  log,
		pool:    pool,
		redis:   redisClient,
		cleanup: tasks.NewTokenCleanup(repos.Tokens, cfg.Cleanup.Interval, log),
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer a.pool.Close()
	defer func() {
		_ = a.redis.Close()
	}()

	go a.cleanup.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting cinema API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
