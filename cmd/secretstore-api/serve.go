package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secretstore-api/internal/auth"
	"secretstore-api/internal/config"
	"secretstore-api/internal/crypto/secretval"
	"secretstore-api/internal/database"
	"secretstore-api/internal/http/client"
	"secretstore-api/internal/http/handler"
	"secretstore-api/internal/notify"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/ratelimit"
	"secretstore-api/internal/repo"
	"secretstore-api/internal/service"
	"secretstore-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the Secret Store API HTTP server with all middlewares and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info(ctx, "starting secret store api",
		zap.String("version", "1.0.0"),
		zap.String("service", cfg.OTELServiceName),
	)

	// Fail fast on a missing or malformed encryption key before touching
	// anything else.
	cipher, err := secretval.New(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize secret cipher: %w", err)
	}

	log.Info(ctx, "running database migrations")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info(ctx, "migrations completed successfully")

	// Telemetry is strictly opt-in
	var tracerProvider *sdktrace.TracerProvider
	var meterProvider *sdkmetric.MeterProvider
	var metrics *telemetry.Metrics

	if cfg.TelemetryEnabled() {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, m, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
		} else {
			meterProvider = mp
			metrics = m
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}

		log.Info(ctx, "telemetry initialized", zap.Bool("tracing", tracerProvider != nil), zap.Bool("metrics", metrics != nil))
	} else {
		log.Info(ctx, "telemetry disabled (opt-in only or missing endpoint)")
	}

	log.Info(ctx, "connecting to database")
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info(ctx, "database connected")

	log.Info(ctx, "connecting to redis")
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info(ctx, "redis connected")

	// JWT validation
	clockSkew := time.Duration(cfg.JWTClockSkewSeconds) * time.Second
	validator := auth.NewHS256Validator([]byte(cfg.JWTHS256Secret), cfg.JWTIssuer, cfg.JWTAudience, clockSkew)
	log.Info(ctx, "JWT authentication initialized",
		zap.String("issuer", cfg.JWTIssuer),
		zap.Int("clock_skew_seconds", cfg.JWTClockSkewSeconds),
	)

	// Repositories
	workspaceRepo := repo.NewWorkspaceRepository(pool)
	roleRepo := repo.NewRoleRepository(pool)
	roleBindingRepo := repo.NewRoleBindingRepository(pool)
	workspaceUserRepo := repo.NewWorkspaceUserRepository(pool)
	secretRepo := repo.NewSecretRepository(pool)
	logRepo := repo.NewLogRepository(pool)
	eventBindingRepo := repo.NewEventBindingRepository(pool)
	chatBindingRepo := repo.NewChatBindingRepository(pool)

	// Access control and audit
	evaluator := service.NewPermissionEvaluator(roleBindingRepo)
	gate := service.NewGate(evaluator, log)

	relay := notify.NewRelay(cfg.BotURL, client.NewExternalHTTPClient(), log)
	if cfg.BotURL == "" {
		log.Warn(ctx, "BOT_URL not set, notifications will fail until configured")
	}

	audit := service.NewAuditLogger(logRepo, workspaceRepo, eventBindingRepo, chatBindingRepo, evaluator, relay, log)

	// Services
	workspaceService := service.NewWorkspaceService(workspaceRepo, gate, audit, log)
	roleService := service.NewRoleService(roleRepo, gate, audit)
	roleBindingService := service.NewRoleBindingService(roleBindingRepo, roleRepo, gate, audit)
	workspaceUserService := service.NewWorkspaceUserService(workspaceUserRepo, roleBindingRepo, gate, audit)
	secretService := service.NewSecretService(secretRepo, cipher, gate, audit)
	logService := service.NewLogService(logRepo, roleBindingRepo, gate, audit)
	eventBindingService := service.NewEventBindingService(eventBindingRepo, audit)
	chatBindingService := service.NewChatBindingService(chatBindingRepo, audit)

	// Handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	roleHandler := handler.NewRoleHandler(roleService)
	roleBindingHandler := handler.NewRoleBindingHandler(roleBindingService)
	workspaceUserHandler := handler.NewWorkspaceUserHandler(workspaceUserService)
	secretHandler := handler.NewSecretHandler(secretService)
	logHandler := handler.NewLogHandler(logService)
	eventBindingHandler := handler.NewEventBindingHandler(eventBindingService)
	chatBindingHandler := handler.NewChatBindingHandler(chatBindingService)

	// Rate limiter
	var rateLimitCounter metric.Int64Counter
	if metrics != nil {
		rateLimitCounter = metrics.RateLimitRejections
	}
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient, rateLimitCounter)

	r := buildRouter(RouterDeps{
		Cfg:                  cfg,
		Log:                  log,
		Validator:            validator,
		RateLimiter:          rateLimiter,
		Metrics:              metrics,
		Pool:                 pool,
		WorkspaceHandler:     workspaceHandler,
		RoleHandler:          roleHandler,
		RoleBindingHandler:   roleBindingHandler,
		WorkspaceUserHandler: workspaceUserHandler,
		SecretHandler:        secretHandler,
		LogHandler:           logHandler,
		EventBindingHandler:  eventBindingHandler,
		ChatBindingHandler:   chatBindingHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}
