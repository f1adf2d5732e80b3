package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/config"
	"github.com/anesteasy/api/internal/email"
	"github.com/anesteasy/api/internal/handler"
	authHandler "github.com/anesteasy/api/internal/handler/auth"
	feedbackHandler "github.com/anesteasy/api/internal/handler/feedback"
	goalHandler "github.com/anesteasy/api/internal/handler/goal"
	healthHandler "github.com/anesteasy/api/internal/handler/health"
	notificationHandler "github.com/anesteasy/api/internal/handler/notification"
	procedureHandler "github.com/anesteasy/api/internal/handler/procedure"
	prometheusHandler "github.com/anesteasy/api/internal/handler/prometheus"
	reportHandler "github.com/anesteasy/api/internal/handler/report"
	secretaryHandler "github.com/anesteasy/api/internal/handler/secretary"
	shiftHandler "github.com/anesteasy/api/internal/handler/shift"
	subscriptionHandler "github.com/anesteasy/api/internal/handler/subscription"
	"github.com/anesteasy/api/internal/middleware"
	"github.com/anesteasy/api/internal/repository/postgres"
	"github.com/anesteasy/api/internal/router"
	authService "github.com/anesteasy/api/internal/service/auth"
	delegationService "github.com/anesteasy/api/internal/service/delegation"
	entitlementService "github.com/anesteasy/api/internal/service/entitlement"
	feedbackService "github.com/anesteasy/api/internal/service/feedback"
	goalService "github.com/anesteasy/api/internal/service/goal"
	identityService "github.com/anesteasy/api/internal/service/identity"
	notificationService "github.com/anesteasy/api/internal/service/notification"
	"github.com/anesteasy/api/internal/service/policy"
	procedureService "github.com/anesteasy/api/internal/service/procedure"
	reportService "github.com/anesteasy/api/internal/service/report"
	shiftService "github.com/anesteasy/api/internal/service/shift"
	"github.com/anesteasy/api/pkg/auth"
	"github.com/anesteasy/api/pkg/event"
	"github.com/anesteasy/api/pkg/lock"
	"github.com/anesteasy/api/pkg/logger"
	"github.com/anesteasy/api/pkg/messaging/redis"
	"github.com/anesteasy/api/pkg/metrics"
	"github.com/anesteasy/api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.App.LogLevel)})
	log.Logger = *appLogger.Zerolog()

	loc, err := cfg.Scheduling.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid scheduling timezone")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.NewClient(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer redisClient.Close()

	broker := redis.NewRedisBroker(redisClient, appLogger.Zerolog())
	defer broker.Close()

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer, "anesteasy")

	// Repositories
	shiftRepo := postgres.NewShiftRepository(db)
	principalRepo := postgres.NewPrincipalRepository(db)
	anesthesiologistRepo := postgres.NewAnesthesiologistRepository(db)
	secretaryRepo := postgres.NewSecretaryRepository(db)
	delegationRepo := postgres.NewDelegationRepository(db)
	procedureRepo := postgres.NewProcedureRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	goalRepo := postgres.NewGoalRepository(db)
	feedbackRepo := postgres.NewFeedbackRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	credentialRepo := postgres.NewCredentialRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	mailer := email.NewSMTPService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		BaseURL:  cfg.App.BaseURL,
	})
	hasher := security.NewBcryptHasher(0)
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshTTL:    time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	// Services
	identitySvc := identityService.NewService(principalRepo, anesthesiologistRepo, secretaryRepo)
	policyEngine := policy.NewEngine(delegationRepo)
	entitlementSvc := entitlementService.NewService(identitySvc, anesthesiologistRepo, subscriptionRepo, appMetrics)
	shiftSvc := shiftService.NewService(shiftRepo, policyEngine, lock.NewRedisLock(redisClient), shiftService.Config{
		Location: loc,
		LockTTL:  cfg.Redis.LockTTL,
	}, appMetrics)
	delegationSvc := delegationService.NewService(delegationService.Deps{
		Secretaries:       secretaryRepo,
		Anesthesiologists: anesthesiologistRepo,
		Links:             delegationRepo,
		Credentials:       credentialRepo,
		Notifications:     notificationRepo,
		Identity:          identitySvc,
		Hasher:            hasher,
		Mailer:            mailer,
		Events:            event.NewOutboxEmitter(outboxRepo),
		Metrics:           appMetrics,
	})
	procedureSvc := procedureService.NewService(procedureRepo, delegationRepo, notificationRepo, policyEngine)
	notificationSvc := notificationService.NewService(notificationRepo, delegationRepo)
	goalSvc := goalService.NewService(goalRepo)
	feedbackSvc := feedbackService.NewService(feedbackRepo, procedureRepo, policyEngine, mailer, cfg.App.BaseURL)
	authSvc := authService.NewService(authService.Deps{
		Credentials:       credentialRepo,
		Tokens:            tokenRepo,
		Anesthesiologists: anesthesiologistRepo,
		Identity:          identitySvc,
		JWT:               jwtSvc,
		Hasher:            hasher,
		Mailer:            mailer,
	})
	reportSvc := reportService.NewService(procedureSvc, loc)

	if err := handler.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	redisPing := healthHandler.PingFunc(func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthH := healthHandler.NewHandler(map[string]healthHandler.Pinger{
		"database": db,
		"redis":    redisPing,
	})

	gin.SetMode(gin.ReleaseMode)
	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc, identitySvc, entitlementSvc),
		router.Handlers{
			Health:       healthH,
			Metrics:      prometheusHandler.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer, "anesteasy"),
			Auth:         authHandler.NewHandler(authSvc, identitySvc),
			Shift:        shiftHandler.NewHandler(shiftSvc),
			Secretary:    secretaryHandler.NewHandler(delegationSvc, broker),
			Procedure:    procedureHandler.NewHandler(procedureSvc),
			Feedback:     feedbackHandler.NewHandler(feedbackSvc),
			Notification: notificationHandler.NewHandler(notificationSvc),
			Goal:         goalHandler.NewHandler(goalSvc),
			Subscription: subscriptionHandler.NewHandler(entitlementSvc),
			Report:       reportHandler.NewHandler(reportSvc, loc),
		},
		router.RouterConfig{
			RateLimit:      cfg.RateLimit.RequestsPerSecond,
			RateBurst:      cfg.RateLimit.Burst,
			RequestTimeout: cfg.Server.Timeout,
			CORSConfig:     middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server exited properly")
}
