package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dealsense/dealsense/pkg/agent"
	"github.com/dealsense/dealsense/pkg/ai"
	"github.com/dealsense/dealsense/pkg/config"
	"github.com/dealsense/dealsense/pkg/logging"
	"github.com/dealsense/dealsense/pkg/store/postgres"
	"github.com/dealsense/dealsense/pkg/suggest"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.Database.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	events := postgres.NewEventRepository(db.DB())
	inventory := postgres.NewInventoryRepository(db.DB())

	// With a suggestion API configured the processor delegates generation
	// to the sibling service; otherwise it generates in-process and needs
	// the AI key itself.
	var suggester agent.Suggester
	if cfg.Agents.SuggestionAPIURL != "" {
		suggester = agent.NewAPISuggester(cfg.Agents.SuggestionAPIURL, cfg.AI.Timeout)
		logger.Info("using remote suggestion api", zap.String("url", cfg.Agents.SuggestionAPIURL))
	} else {
		if err := cfg.AI.Validate(); err != nil {
			logger.Fatal("invalid configuration", zap.Error(err))
		}
		aiClient := ai.NewClient(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
		generator := suggest.NewGenerator(aiClient, logger)
		suggester = agent.NewLocalSuggester(generator, postgres.NewSuggestionRepository(db.DB()))
	}

	processor := agent.NewProcessor(events, inventory, suggester, logger, cfg.Agents.ProcessorInterval, cfg.Agents.ErrorBackoff)

	go serveMetrics(cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := processor.Run(ctx); err != nil && err != context.Canceled {
			logger.Fatal("event processor stopped with error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("event processor shutting down")
}

func serveMetrics(cfg *config.Config, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics listener error", zap.Error(err))
	}
}
