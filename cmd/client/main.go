package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Techsmart07/Cockatrice/internal/config"
	"github.com/Techsmart07/Cockatrice/internal/console"
	"github.com/Techsmart07/Cockatrice/internal/game"
	"github.com/Techsmart07/Cockatrice/internal/game/actions"
	"github.com/Techsmart07/Cockatrice/internal/game/notify"
	"github.com/Techsmart07/Cockatrice/internal/protocol"
	"github.com/Techsmart07/Cockatrice/internal/sink"
	"github.com/Techsmart07/Cockatrice/internal/transport"
	"github.com/google/uuid"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath  = flag.String("config", "config/config.yaml", "path to configuration file")
	replayID    = flag.String("replay", "", "replay a saved journal by session id instead of connecting")
	replaySteps = flag.Int("replay-steps", -1, "number of journal entries to replay (-1 for all)")
	version     = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *replayID != "" {
		if err := replay(cfg, logger); err != nil {
			logger.Fatal("replay failed", zap.Error(err))
		}
		return
	}

	logger.Info("starting table client",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.String("server", cfg.Server.URL),
		zap.String("player", cfg.Player.Name),
	)

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Game state
	router := game.NewRouter(nil, nil, logger)
	router.Bus().SubscribeObserver(notify.NewLogObserver(logger))

	journal := game.NewJournal()
	router.AddRecorder(journal)
	logger.Info("journal initialized", zap.String("session_id", journal.SessionID.String()))

	// Optional external sinks
	async, err := initSinks(ctx, cfg.Journal, journal.SessionID, logger)
	if err != nil {
		logger.Fatal("failed to initialize journal sinks", zap.Error(err))
	}
	asyncDone := make(chan struct{})
	if async != nil {
		router.AddRecorder(async)
		go func() {
			defer close(asyncDone)
			async.Run(ctx)
		}()
	} else {
		close(asyncDone)
	}

	// Connect to the game server
	client, err := transport.Dial(ctx, cfg.Server.URL, transport.Options{
		DialTimeout:  cfg.Server.DialTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect", zap.String("url", cfg.Server.URL), zap.Error(err))
	}
	defer client.Close()

	var deck []string
	if cfg.Player.DeckFile != "" && !cfg.Player.Spectator {
		deck, err = transport.LoadDeck(cfg.Player.DeckFile)
		if err != nil {
			logger.Fatal("failed to load deck", zap.String("path", cfg.Player.DeckFile), zap.Error(err))
		}
		logger.Info("deck loaded", zap.Int("cards", len(deck)))
	}
	setup := transport.NewSetup(client, deck, cfg.Player.Spectator, logger)
	router.SetSetupFlow(setup)
	go setup.Run(ctx)

	seed := cfg.Actions.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	dispatcher := actions.NewDispatcher(client, seed, logger)

	runErr := make(chan error, 1)
	go func() {
		runErr <- client.Run(ctx, router)
	}()

	if err := client.Send(ctx, protocol.ListPlayers()); err != nil {
		logger.Fatal("failed to request player list", zap.Error(err))
	}

	go func() {
		con := console.New(router, dispatcher, client, os.Stdout, logger)
		if err := con.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("console stopped", zap.Error(err))
		}
	}()

	logger.Info("table client initialized", zap.Int64("seed", seed))

	// Wait for termination signal or a dropped connection
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-runErr:
		if err != nil {
			logger.Error("connection lost", zap.Error(err))
		} else {
			logger.Info("server closed the connection")
		}
	}

	logger.Info("shutting down gracefully...")
	cancel()
	_ = client.Close()

	<-asyncDone
	if async != nil {
		if dropped := async.Dropped(); dropped > 0 {
			logger.Warn("journal records dropped", zap.Int64("dropped", dropped))
		}
		if err := async.Close(); err != nil {
			logger.Warn("failed to close journal sinks", zap.Error(err))
		}
	}

	if cfg.Journal.Dir != "" {
		if err := game.SaveJournal(logger, journal, cfg.Journal.Dir); err != nil {
			logger.Error("failed to save journal", zap.Error(err))
		}
	}

	if sum, err := router.Snapshot().ComputeChecksum(); err == nil {
		logger.Info("final session checksum", zap.String("checksum", sum.Hash))
	}

	logger.Info("table client stopped")
}

// initSinks connects the configured external journal destinations. It returns
// nil when none are configured.
func initSinks(ctx context.Context, cfg config.JournalConfig, sessionID uuid.UUID, logger *zap.Logger) (*sink.Async, error) {
	var sinks []sink.Sink

	if cfg.Postgres.DSN != "" {
		pg, err := sink.NewPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		logger.Info("postgres journal sink initialized")
		sinks = append(sinks, pg)
	}

	if cfg.Redis.Addr != "" {
		rd, err := sink.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Queue)
		if err != nil {
			for _, s := range sinks {
				_ = s.Close()
			}
			return nil, fmt.Errorf("redis: %w", err)
		}
		logger.Info("redis journal sink initialized",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("queue", cfg.Redis.Queue),
		)
		sinks = append(sinks, rd)
	}

	if len(sinks) == 0 {
		return nil, nil
	}
	return sink.NewAsync(sessionID, cfg.Buffer, logger, sinks...), nil
}

// replay rebuilds a session from its archived records when Postgres is
// configured, and from the saved journal file otherwise, then reports its checksum.
func replay(cfg *config.Config, logger *zap.Logger) error {
	id, err := uuid.Parse(*replayID)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", *replayID, err)
	}

	router := game.NewRouter(nil, nil, logger)
	router.Bus().SubscribeObserver(notify.NewLogObserver(logger))

	var total, applied int
	source := "journal file"
	if cfg.Journal.Postgres.DSN != "" {
		source = "postgres"
		ctx := context.Background()
		archive, err := sink.NewPostgres(ctx, cfg.Journal.Postgres.DSN)
		if err != nil {
			return err
		}
		defer archive.Close()

		records, err := archive.Load(ctx, id)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no archived records for session %s", id)
		}
		if *replaySteps >= 0 && *replaySteps < len(records) {
			records = records[:*replaySteps]
		}
		total = len(records)
		applied = sink.Replay(records, router)
	} else {
		dir := cfg.Journal.Dir
		if dir == "" {
			dir = "."
		}
		journal, err := game.LoadJournalFromFile(dir, id)
		if err != nil {
			return err
		}
		total = journal.Len()
		applied = journal.Replay(router, *replaySteps)
	}

	sum, err := router.Snapshot().ComputeChecksum()
	if err != nil {
		return err
	}
	logger.Info("journal replayed",
		zap.String("session_id", id.String()),
		zap.String("source", source),
		zap.Int("entries", total),
		zap.Int("applied", applied),
		zap.String("checksum", sum.Hash),
	)
	return nil
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
