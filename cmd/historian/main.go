// Command historian drains journal records pushed to Redis by running clients
// and archives them into Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Techsmart07/Cockatrice/internal/config"
	"github.com/Techsmart07/Cockatrice/internal/sink"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Journal.Redis.Addr == "" || cfg.Journal.Postgres.DSN == "" {
		logger.Fatal("historian needs journal.redis.addr and journal.postgres.dsn")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	queue, err := sink.NewRedis(ctx, cfg.Journal.Redis.Addr, cfg.Journal.Redis.DB, cfg.Journal.Redis.Queue)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer queue.Close()

	archive, err := sink.NewPostgres(ctx, cfg.Journal.Postgres.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer archive.Close()

	archiver := sink.NewArchiver(queue, archive, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		archiver.Run(ctx)
	}()

	logger.Info("historian started",
		zap.String("version", version),
		zap.String("queue", cfg.Journal.Redis.Queue),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	cancel()
	<-done

	logger.Info("historian stopped", zap.Int("archived", archiver.Archived()))
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format != "json" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
