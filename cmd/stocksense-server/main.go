package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stocksense-ai/stocksense/internal/analytics"
	"github.com/stocksense-ai/stocksense/internal/api"
	"github.com/stocksense-ai/stocksense/internal/config"
	"github.com/stocksense-ai/stocksense/internal/dbx"
	"github.com/stocksense-ai/stocksense/internal/gateway"
	"github.com/stocksense-ai/stocksense/internal/generator"
	"github.com/stocksense-ai/stocksense/internal/schema"
	"github.com/stocksense-ai/stocksense/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := mustBuildLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck // best-effort flush

	logger.Info("starting stocksense server",
		zap.String("http_port", cfg.HTTPPort),
		zap.String("db_driver", cfg.DBDriver),
		zap.Int("query_timeout_s", cfg.QueryTimeoutS),
		zap.Bool("structural_parse", !cfg.DisableSQLParse),
	)

	// Database (required)
	if cfg.DBDSN == "" {
		logger.Fatal("STOCKSENSE_DB_DSN is required")
	}
	db, err := dbx.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(context.Background()); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}
	logger.Info("database connected")

	// Query gateway
	sc := schema.Default()
	gen := generator.NewClient(generator.ClientConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	}, logger)
	if cfg.OpenAI.APIKey == "" {
		logger.Warn("no generator API key set, /api/query will report it as unavailable")
	}

	var parser gateway.Parser
	if !cfg.DisableSQLParse {
		parser = gateway.NewStatementParser()
	}

	executor := dbx.NewExecutor(db, cfg.QueryTimeout())
	gw := gateway.New(gen, parser, executor, sc, logger)

	// Audit storage: ClickHouse or LogWriter fallback
	var writer storage.EventWriter
	if cfg.ClickHouseDSN != "" {
		chWriter, err := storage.NewClickHouseWriter(cfg.ClickHouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer",
				zap.Error(err),
			)
			writer = storage.NewLogWriter(logger)
		} else {
			writer = chWriter
			logger.Info("clickhouse writer connected")
		}
	} else {
		writer = storage.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
	}
	defer writer.Close()

	// ClickHouse reader (for the query history endpoint)
	var reader *storage.Reader
	if cfg.ClickHouseDSN != "" {
		reader, err = storage.NewReader(cfg.ClickHouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse reader connection failed", zap.Error(err))
			reader = nil
		} else {
			defer func() { _ = reader.Close() }()
			logger.Info("clickhouse reader connected")
		}
	}

	deps := &api.Dependencies{
		Gateway:    gw,
		Analytics:  analytics.NewStore(db),
		Writer:     writer,
		Reader:     reader,
		Logger:     logger,
		APIKeyHash: cfg.APIKeyHash,
	}
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("stocksense server stopped")
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
