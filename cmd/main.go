package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aspire-wishlist/internal/config"
	"aspire-wishlist/internal/domain/event"
	domainMail "aspire-wishlist/internal/domain/mail"
	"aspire-wishlist/internal/infrastructure/database/memory"
	"aspire-wishlist/internal/infrastructure/database/postgres"
	"aspire-wishlist/internal/infrastructure/events"
	"aspire-wishlist/internal/infrastructure/mail"
	"aspire-wishlist/internal/logger"
	"aspire-wishlist/internal/routes"
	"aspire-wishlist/internal/usecase/account"
	"aspire-wishlist/pkg/clock"
	"aspire-wishlist/pkg/mqtt"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	renderer, err := mail.NewRenderer()
	if err != nil {
		logger.Fatal("Failed to parse mail templates", zap.Error(err))
	}
	var delivery domainMail.Sender = mail.NewLogSender(renderer)
	if cfg.SMTP.Host != "" {
		delivery = mail.NewSMTPSender(cfg.SMTP, renderer)
	} else {
		logger.Warn("SMTP_HOST not set, outgoing mail is logged instead of sent")
	}
	mailer := mail.NewAsyncSender(delivery, mail.AsyncConfig{
		QueueSize:  cfg.Mail.QueueSize,
		Workers:    cfg.Mail.Workers,
		MaxRetries: cfg.Mail.MaxRetries,
		Backoff:    2 * time.Second,
	})

	publisher, disconnect := openPublisher(cfg)
	defer disconnect()

	clk := clock.Real{}
	router := routes.SetupRoutes(ctx, cfg, routes.Deps{
		Store:  store,
		Mailer: mailer,
		Events: publisher,
		Clock:  clk,
	})

	cleaner := account.NewTokenCleaner(store.VerificationTokens(), store.PasswordResets(), clk)
	go cleaner.Start(ctx, cfg.Tokens.CleanupInterval)

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}
	stop()

	if err := mailer.Close(shutdownCtx); err != nil {
		logger.Warn("Mail queue not fully drained", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func openStore(ctx context.Context, cfg *config.Config) (routes.Store, func()) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return memory.NewStore(), func() {}
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	return db, func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}
}

// openPublisher connects to the MQTT broker when one is configured. Events are
// dropped otherwise.
func openPublisher(cfg *config.Config) (event.Publisher, func()) {
	if cfg.MQTT.Broker == "" {
		logger.Info("MQTT_BROKER not set, domain events are not published")
		return event.NopPublisher{}, func() {}
	}

	client := mqtt.NewClient(
		mqtt.DefaultConfig(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password),
		logger.Named("mqtt"),
	)
	if err := client.Connect(); err != nil {
		logger.Error("MQTT unavailable, domain events are not published", zap.Error(err))
		return event.NopPublisher{}, func() {}
	}

	return events.NewMQTTPublisher(client, cfg.MQTT.TopicPrefix, cfg.MQTT.QoS), client.Disconnect
}
