package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Irine-Juliet/Bank-CLI/internal/app/ledger"
	"github.com/Irine-Juliet/Bank-CLI/internal/config"
	ledger_http "github.com/Irine-Juliet/Bank-CLI/internal/handler/http/ledger"
	"github.com/Irine-Juliet/Bank-CLI/internal/infrastructure/database"
	kafka_infra "github.com/Irine-Juliet/Bank-CLI/internal/infrastructure/kafka"
	"github.com/Irine-Juliet/Bank-CLI/internal/outbox"
	accounts_pg "github.com/Irine-Juliet/Bank-CLI/internal/repository/accounts_repo/postgres"
	outbox_pg "github.com/Irine-Juliet/Bank-CLI/internal/repository/outbox_repo/postgres"
	transactions_pg "github.com/Irine-Juliet/Bank-CLI/internal/repository/transactions_repo/postgres"
)

func ensureKafkaTopics(ctx context.Context, brokerURLs []string, topics []string, logger *zap.Logger) error {
	conn, err := kafka.DialContext(ctx, "tcp", brokerURLs[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka broker for admin operations: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("failed to get kafka controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("failed to dial kafka controller: %w", err)
	}
	defer controllerConn.Close()

	topicConfigs := make([]kafka.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}

	if err := controllerConn.CreateTopics(topicConfigs...); err != nil {
		if err == kafka.TopicAlreadyExists {
			logger.Info("Kafka topics already exist, skipping creation.")
			return nil
		}
		return fmt.Errorf("failed to create Kafka topics: %w", err)
	}
	logger.Info("Kafka topics ensured successfully.", zap.Strings("topics", topics))
	return nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Ledger service starting...")

	dbConfig := database.DBConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.Name,
		SSLMode:  cfg.DBConfig.SSLMode,
	}

	var db *sql.DB
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			appLogger.Info("Successfully connected to PostgreSQL database!")
			break
		}
		appLogger.Warn(fmt.Sprintf("Failed to connect to database (attempt %d/%d): %v. Retrying in %s...", i+1, maxRetries, err, retryDelay))
		time.Sleep(retryDelay)
	}
	if db == nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		}
	}()

	appLogger.Info("Running database migrations...")
	m, err := migrate.New(
		"file://"+cfg.MigrationsPath,
		cfg.GetDBMigrationConnectionString(),
	)
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed.")

	accountRepository := accounts_pg.NewAccountRepository()
	transactionRepository := transactions_pg.NewTransactionRepository()
	outboxRepository := outbox_pg.NewOutboxRepository()

	ctxMain, cancelMain := context.WithCancel(context.Background())
	defer cancelMain()

	ledgerService, err := ledger.NewLedgerService(
		ctxMain,
		db,
		accountRepository,
		transactionRepository,
		outboxRepository,
		cfg.KafkaLedgerEventsTopic,
		appLogger.With(zap.String("component", "LedgerService")),
	)
	if err != nil {
		appLogger.Fatal("Failed to initialize ledger service", zap.Error(err))
	}
	appLogger.Info("Ledger service initialized.")

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	ledger_http.RegisterRoutes(router, ledgerService, appLogger.With(zap.String("component", "HTTPHandler")))

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	var kafkaProducer kafka_infra.Producer
	if cfg.KafkaEnabled() {
		topicCtx, topicCancel := context.WithTimeout(ctxMain, 10*time.Second)
		if err := ensureKafkaTopics(topicCtx, cfg.GetKafkaBrokers(), []string{cfg.KafkaLedgerEventsTopic}, appLogger); err != nil {
			topicCancel()
			appLogger.Fatal("Failed to ensure Kafka topics", zap.Error(err))
		}
		topicCancel()

		kafkaProducer = kafka_infra.NewProducer(
			cfg.GetKafkaBrokers(),
			cfg.KafkaLedgerEventsTopic,
			appLogger.With(zap.String("component", "KafkaProducer")),
		)
		defer func() {
			if err := kafkaProducer.Close(); err != nil {
				appLogger.Error("Error closing Kafka producer", zap.Error(err))
			}
		}()

		outboxProcessor := outbox.NewProcessor(
			db,
			outboxRepository,
			kafkaProducer,
			cfg.OutboxPollInterval,
			cfg.OutboxPollTimeout,
			appLogger.With(zap.String("component", "OutboxProcessor")),
		)
		go outboxProcessor.Start(ctxMain)
		appLogger.Info("Outbox processor started.")
	} else {
		appLogger.Info("Kafka broker not configured, event publishing disabled.")
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	appLogger.Info("Shutting down application...")

	cancelMain()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		appLogger.Info("HTTP server gracefully shut down.")
	}

	appLogger.Info("Application gracefully shut down.")
}
