package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/adapter/ai/gemini"
	"github.com/saathi-ai/saathi-core/internal/adapter/cache"
	"github.com/saathi-ai/saathi-core/internal/adapter/http/fiber/handlers"
	"github.com/saathi-ai/saathi-core/internal/adapter/http/fiber/middleware"
	"github.com/saathi-ai/saathi-core/internal/adapter/queue"
	"github.com/saathi-ai/saathi-core/internal/adapter/storage/postgres"
	"github.com/saathi-ai/saathi-core/internal/adapter/vault"
	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/observability/telemetry"
	"github.com/saathi-ai/saathi-core/internal/ports"
	"github.com/saathi-ai/saathi-core/internal/prompt"
	"github.com/saathi-ai/saathi-core/internal/service/alert"
	"github.com/saathi-ai/saathi-core/internal/service/auth"
	"github.com/saathi-ai/saathi-core/internal/service/classifier"
	"github.com/saathi-ai/saathi-core/internal/service/earnings"
	"github.com/saathi-ai/saathi-core/internal/service/fallback"
	"github.com/saathi-ai/saathi-core/internal/service/health"
	"github.com/saathi-ai/saathi-core/internal/service/pipeline"
	"github.com/saathi-ai/saathi-core/internal/service/session"
	"github.com/saathi-ai/saathi-core/internal/service/synthesizer"
	"github.com/saathi-ai/saathi-core/internal/service/whatsapp"
	"github.com/saathi-ai/saathi-core/pkg/config"
)

const (
	serviceName    = "saathi-core"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting Saathi",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Pull secrets from Vault when enabled
	if cfg.Vault.Enabled {
		if err := loadSecrets(cfg); err != nil {
			logger.Fatal("Failed to load secrets from Vault", zap.Error(err))
		}
		logger.Info("Secrets loaded from Vault")
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 6. Initialize Cache (Redis, local fallback for dev)
	appCache, err := cache.NewRedisCache(cfg.Redis.URL, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", zap.Error(err))
		appCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer appCache.Close()

	// 7. Initialize Message Queue (NATS)
	messageQueue, err := queue.NewNATSQueue(cfg.NATS.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer messageQueue.Close()

	// Earnings snapshots arrive over RabbitMQ when the ingestion side
	// runs on it; otherwise they share the NATS connection.
	snapshotQueue := messageQueue
	if cfg.RabbitMQ.Enabled {
		rmq, err := queue.NewRabbitMQQueue(cfg.RabbitMQ.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rmq.Close()
		snapshotQueue = rmq
	}

	// 8. Initialize Repositories
	userRepo := postgres.NewUserRepository(db, logger)
	earningsRepo := postgres.NewEarningsRepository(db, logger)
	conversationRepo := postgres.NewConversationRepository(db, logger)

	// 9. Prompt store and the generative client
	promptStore, err := prompt.NewStore(logger)
	if err != nil {
		logger.Fatal("Failed to load prompt templates", zap.Error(err))
	}
	renderer := prompt.NewRenderer()
	generator := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout, logger)

	// 10. Core services
	authService := auth.NewService(userRepo, appCache, cfg.JWT.Secret, logger,
		auth.WithTokenDurations(cfg.JWT.AccessTokenDuration, cfg.JWT.RefreshTokenDuration))
	earningsService := earnings.NewService(earningsRepo, appCache, logger)
	sessionStore := session.NewStore(userRepo, appCache, logger)
	classifierService := classifier.NewService(promptStore, renderer, generator, logger)
	synthesizerService := synthesizer.NewService(promptStore, renderer, generator, synthesizer.Limits{
		MaxReplyLines:     cfg.Assistant.MaxReplyLines,
		MaxComplaintWords: cfg.Assistant.MaxComplaintWords,
	}, logger)
	fallbackResolver := fallback.NewResolver(promptStore, logger)

	var alertService ports.AlertService
	if cfg.Alerts.SendGridAPIKey != "" {
		alertService = alert.NewService(cfg.Alerts.SendGridAPIKey, cfg.Alerts.FromEmail, cfg.Alerts.Recipients, logger)
	}

	pipelineService := pipeline.NewService(
		classifierService,
		synthesizerService,
		fallbackResolver,
		earningsService,
		sessionStore,
		conversationRepo,
		alertService,
		pipeline.Options{
			ConfidenceFloor:   cfg.Assistant.ConfidenceFloor,
			ClassifyTimeout:   cfg.Assistant.ClassifyTimeout,
			SynthesizeTimeout: cfg.Assistant.SynthesizeTimeout,
		},
		logger,
	)

	// 11. Outbound WhatsApp delivery
	var delivery ports.DeliveryService
	var notifier *whatsapp.Service
	if cfg.WhatsApp.AccountSID != "" {
		wa, err := whatsapp.NewService(whatsapp.Config{
			Provider:   cfg.WhatsApp.Provider,
			AccountSID: cfg.WhatsApp.AccountSID,
			AuthToken:  cfg.WhatsApp.AuthToken,
			FromPhone:  cfg.WhatsApp.FromPhone,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize WhatsApp service", zap.Error(err))
		}
		delivery = wa
		notifier = wa
	} else {
		logger.Warn("WhatsApp credentials missing, webhook replies will be logged only")
		delivery = &logDelivery{log: logger}
	}

	// 12. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}
	if cfg.RateLimiting.Enabled {
		app.Use(middleware.RateLimit(cfg.RateLimiting))
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(logger))
	}

	// Health Check Endpoints
	healthService := health.NewService(&health.Config{
		Version: serviceVersion,
		DB:      db,
		Cache:   appCache,
		Queue:   messageQueue,
	}, logger)
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// Inbound WhatsApp webhook (authenticated by Twilio signature upstream)
	messageHandler := handlers.NewMessageHandler(pipelineService, delivery, userRepo, conversationRepo, logger)
	app.Post("/webhook/whatsapp", messageHandler.HandleWebhook)

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Auth routes (public)
	var welcomeSender handlers.WelcomeSender
	if notifier != nil {
		welcomeSender = notifier
	}
	authHandler := handlers.NewAuthHandler(authService, welcomeSender, logger)
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes
	rbacService := auth.NewRBACService(logger)
	protected := v1.Group("", middleware.AuthRequired(authService))
	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/messages",
		middleware.RequirePermission(rbacService, "conversations", "write"),
		messageHandler.HandleMessage)
	protected.Get("/conversations/:userID",
		middleware.RequirePermission(rbacService, "conversations", "read"),
		messageHandler.GetHistory)

	// 13. Start Background Workers
	go startBackgroundWorkers(messageQueue, snapshotQueue, cfg, pipelineService, delivery, earningsRepo, userRepo, notifier, appCache, logger)

	// 14. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 15. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// loadSecrets overwrites the sensitive config fields from Vault.
func loadSecrets(cfg *config.Config) error {
	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
	if err != nil {
		return err
	}

	if url, err := sm.GetDatabaseCredentials(); err == nil {
		cfg.Database.URL = url
	}
	if key, err := sm.GetGeminiAPIKey(); err == nil {
		cfg.Gemini.APIKey = key
	}
	if secret, err := sm.GetJWTSecret(); err == nil {
		cfg.JWT.Secret = secret
	}
	if sid, token, err := sm.GetTwilioCredentials(); err == nil {
		cfg.WhatsApp.AccountSID = sid
		cfg.WhatsApp.AuthToken = token
	}
	if key, err := sm.GetSendGridAPIKey(); err == nil {
		cfg.Alerts.SendGridAPIKey = key
	}
	return nil
}

// startBackgroundWorkers wires the queue consumers: inbound messages
// from the transport bridge, and earnings snapshots from the
// platform-data ingestion jobs.
func startBackgroundWorkers(
	mq queue.MessageQueue,
	snapshots queue.MessageQueue,
	cfg *config.Config,
	pipe ports.Pipeline,
	delivery ports.DeliveryService,
	earningsRepo ports.EarningsRepository,
	userRepo ports.UserRepository,
	notifier *whatsapp.Service,
	appCache ports.Cache,
	logger *zap.Logger,
) {
	logger.Info("Starting background workers")

	// Worker 1: inbound messages published by the transport bridge
	err := mq.Subscribe(cfg.NATS.InboundSubject, func(data []byte) error {
		var msg domain.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Error("Dropping malformed inbound message", zap.Error(err))
			return nil
		}
		if msg.SentAt.IsZero() {
			msg.SentAt = time.Now()
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		// The queue is at-least-once; a seen message ID means a
		// duplicate delivery, not a new message.
		if msg.ID != "" {
			dedupKey := "inbound:" + msg.ID
			if seen, err := appCache.Get(ctx, dedupKey); err == nil && seen != "" {
				logger.Info("Skipping duplicate inbound message",
					zap.String("message_id", msg.ID))
				return nil
			}
			if err := appCache.Set(ctx, dedupKey, "1", 24*time.Hour); err != nil {
				logger.Warn("Failed to mark inbound message seen", zap.Error(err))
			}
		}

		reply := pipe.Process(ctx, &msg)

		// Replies go back on the outbound subject so the transport
		// bridge can pick them up, regardless of direct delivery.
		if out, err := json.Marshal(reply); err == nil {
			if err := mq.Publish(cfg.NATS.OutboundSubject, out); err != nil {
				logger.Warn("Failed to publish outbound reply", zap.Error(err))
			}
		}

		if msg.Phone == "" {
			logger.Info("Processed queued message without phone, reply not delivered",
				zap.String("message_id", msg.ID))
			return nil
		}
		return delivery.SendMessage(ctx, msg.Phone, reply.Text)
	})
	if err != nil {
		logger.Error("Failed to subscribe to inbound messages", zap.Error(err))
	}

	// Worker 2: earnings snapshots pushed by the ingestion jobs
	err = snapshots.Subscribe(cfg.RabbitMQ.SnapshotQueue, func(data []byte) error {
		var snap domain.EarningsSnapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			logger.Error("Dropping malformed earnings snapshot", zap.Error(err))
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := earningsRepo.Save(ctx, &snap); err != nil {
			return err
		}

		// A weekly snapshot doubles as the trigger for the digest push.
		if notifier != nil && snap.Period == "week" {
			user, err := userRepo.FindByID(ctx, snap.UserID)
			if err != nil || user == nil {
				return nil
			}
			report := &domain.EarningsReport{
				Platform:  snap.Platform,
				Period:    snap.Period,
				Total:     snap.Total,
				Trips:     snap.Trips,
				Incentive: snap.Incentive,
			}
			if err := notifier.SendWeeklySummary(ctx, user, report); err != nil {
				logger.Warn("Failed to push weekly summary",
					zap.String("user_id", user.ID),
					zap.Error(err))
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to subscribe to earnings snapshots", zap.Error(err))
	}
}

// logDelivery is the dev-mode stand-in for the WhatsApp provider.
type logDelivery struct {
	log *zap.Logger
}

func (d *logDelivery) SendMessage(ctx context.Context, to, body string) error {
	d.log.Info("reply (not delivered)",
		zap.String("to", to),
		zap.String("body", body))
	return nil
}
