package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-crypto-sentinel/internal/pipeline/analyzer"
	"golang-crypto-sentinel/internal/pipeline/config"
	"golang-crypto-sentinel/internal/pipeline/correlator"
	delivery "golang-crypto-sentinel/internal/pipeline/delivery/http"
	_ "golang-crypto-sentinel/internal/pipeline/docs"
	"golang-crypto-sentinel/internal/pipeline/harvester"
	"golang-crypto-sentinel/internal/pipeline/notifier"
	"golang-crypto-sentinel/internal/pipeline/repository"
	"golang-crypto-sentinel/internal/pipeline/service"
	"golang-crypto-sentinel/internal/pipeline/strategy"
	"golang-crypto-sentinel/pkg/logger"
	"golang-crypto-sentinel/pkg/postgres"
	"golang-crypto-sentinel/pkg/redis"
	"golang-crypto-sentinel/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the sentiment pipeline service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Pipeline Service", logger.Field("name", cfg.App.Name))

	// Workflow persistence
	workflowRepo := repository.NewNoopWorkflowRepository()
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(postgres.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			DBName:          cfg.Database.DBName,
			SSLMode:         cfg.Database.SSLMode,
			TimeZone:        cfg.Database.TimeZone,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Database.LogLevel,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			defer sqlDB.Close()
		}
		workflowRepo = repository.NewWorkflowRepository(db.DB)
	}

	// Alert notifiers
	var notifiers []notifier.AlertNotifier
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer redisClient.Close()
		notifiers = append(notifiers, notifier.NewRedisNotifier(redisClient.Client, appLogger, cfg.Redis.StreamMaxLen))
	}
	if cfg.Telegram.Enabled {
		tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram client", logger.ErrorField(err))
		}
		notifiers = append(notifiers, notifier.NewTelegramNotifier(tg, appLogger))
	}
	alertNotifier := notifier.NewMultiNotifier(notifiers...)

	// Agents
	scorer := analyzer.NewScorer(appLogger)
	harvest := harvester.New(appLogger, scorer, harvester.Options{
		RelevanceFloor: cfg.Harvester.RelevanceFloor,
		CacheTTL:       cfg.Harvester.SourceCacheTTL,
		MaxConcurrent:  cfg.Harvester.MaxConcurrent,
	})
	if err := harvest.RegisterFromConfig(cfg.Harvester.Sources); err != nil {
		appLogger.Fatal("Invalid data source configuration", logger.ErrorField(err))
	}

	var marketRepo repository.MarketRepository
	switch cfg.Market.Provider {
	case "coingecko":
		marketRepo = repository.NewCoinGeckoMarketRepository(cfg.Market, appLogger)
	case "simulated":
		seed := cfg.Market.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		marketRepo = repository.NewSimulatedMarketRepository(seed)
	default:
		appLogger.Fatal("Unknown market provider", logger.StringField("provider", cfg.Market.Provider))
	}
	corr := correlator.New(appLogger, marketRepo)

	// Orchestration
	steps := []strategy.StepExecutor{
		strategy.NewHarvestStrategy(appLogger, harvest),
		strategy.NewNLPStrategy(appLogger, scorer),
		strategy.NewCorrelationStrategy(appLogger, scorer, corr, alertNotifier),
	}
	orchestrator, err := service.NewOrchestratorService(appLogger, workflowRepo, steps, service.NewMetrics(prometheus.DefaultRegisterer), service.OrchestratorOptions{
		HistoryLimit: cfg.Pipeline.HistoryLimit,
		StageTimeout: cfg.Pipeline.StageTimeout,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize orchestrator", logger.ErrorField(err))
	}
	if cfg.Database.Enabled {
		restored, err := orchestrator.Restore(ctx)
		if err != nil {
			appLogger.Warn("Failed to restore workflow history", logger.ErrorField(err))
		} else {
			appLogger.Info("Workflow history restored", logger.IntField("workflows", restored))
		}
	}

	schedulerSvc, err := service.NewSchedulerService(appLogger, orchestrator, cfg.Pipeline.Schedules)
	if err != nil {
		appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
	}
	schedulerSvc.Start()

	agentSvc := service.NewAgentService(harvest, scorer, corr)

	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")
	workflowHandler := delivery.NewWorkflowHandler(orchestrator, appLogger)
	workflowHandler.RegisterRoutes(apiV1.Group("/workflows"))

	agentHandler := delivery.NewAgentHandler(agentSvc, appLogger)
	agentHandler.RegisterRoutes(apiV1)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	select {
	case <-schedulerSvc.Stop().Done():
	case <-shutdownCtx.Done():
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}
	if err := orchestrator.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("Workflows still running at shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Crypto Sentiment Pipeline API
// @version 1.0
// @description Harvests crypto chatter, scores sentiment and correlates it with market moves.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-pipeline.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
