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

	"github.com/mzemanski-eng/claims-ebilling/cmd"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configs := getConfigs()

	log, err := logger.New(logger.Config{
		Environment: configs.Environment,
		Level:       configs.LogLevel,
		Format:      configs.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(configs, log); err != nil {
		log.Fatal("Service stopped with error", zap.Error(err))
	}
}

func run(configs cmd.Config, log *zap.Logger) error {
	if err := configs.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := cmd.OpenDatabase(configs, log)
	if err != nil {
		return err
	}

	app, err := cmd.NewCompositionRoot(ctx, configs, db, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("Close resources", zap.Error(err))
		}
	}()

	jobManager := app.NewJobManager()
	if err := jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	return startWebServer(ctx, app, configs.HTTPPort, log)
}

func getConfigs() cmd.Config {
	// A missing .env is fine; the environment may carry everything.
	_ = godotenv.Load(".env")

	config := cmd.Config{
		Environment:         goDotEnvVariable("APP_ENV", "development"),
		HTTPPort:            goDotEnvVariable("HTTP_PORT", "8080"),
		DBDriver:            goDotEnvVariable("DB_DRIVER", cmd.DBDriverPostgres),
		DBHost:              goDotEnvVariable("DB_HOST", ""),
		DBPort:              goDotEnvVariable("DB_PORT", "5432"),
		DBUser:              goDotEnvVariable("DB_USER", ""),
		DBPassword:          goDotEnvVariable("DB_PASSWORD", ""),
		DBName:              goDotEnvVariable("DB_NAME", ""),
		DBSslMode:           goDotEnvVariable("DB_SSLMODE", "disable"),
		SQLitePath:          goDotEnvVariable("SQLITE_PATH", "claims-ebilling.db"),
		DBLogLevel:          goDotEnvVariable("DB_LOG_LEVEL", "warn"),
		DBSlowQuery:         goDotEnvVariable("DB_SLOW_QUERY", ""),
		DBAutoMigrate:       goDotEnvVariable("DB_AUTO_MIGRATE", "true"),
		RedisAddr:           goDotEnvVariable("REDIS_ADDR", ""),
		RedisPassword:       goDotEnvVariable("REDIS_PASSWORD", ""),
		RedisDB:             goDotEnvVariable("REDIS_DB", ""),
		LockTTL:             goDotEnvVariable("LOCK_TTL", ""),
		ExportDir:           goDotEnvVariable("EXPORT_DIR", "exports"),
		S3Bucket:            goDotEnvVariable("S3_BUCKET", ""),
		S3Prefix:            goDotEnvVariable("S3_PREFIX", ""),
		S3Region:            goDotEnvVariable("S3_REGION", ""),
		S3Endpoint:          goDotEnvVariable("S3_ENDPOINT", ""),
		S3PathStyle:         goDotEnvVariable("S3_PATH_STYLE", ""),
		S3AccessKeyID:       goDotEnvVariable("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   goDotEnvVariable("S3_SECRET_ACCESS_KEY", ""),
		ValidationRetryCron: goDotEnvVariable("VALIDATION_RETRY_CRON", ""),
		LogLevel:            goDotEnvVariable("LOG_LEVEL", "info"),
		LogFormat:           goDotEnvVariable("LOG_FORMAT", "json"),
	}
	return config
}

func goDotEnvVariable(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string, log *zap.Logger) error {
	e, err := app.NewHTTPServer()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("port", port))
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", port))
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Info("Shutting down HTTP server")
	return e.Shutdown(shutdownCtx)
}
