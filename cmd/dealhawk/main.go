package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dealhawk/internal/aggregator"
	"dealhawk/internal/config"
	"dealhawk/internal/decision"
	"dealhawk/internal/export"
	"dealhawk/internal/lifecycle"
	"dealhawk/internal/logger"
	"dealhawk/internal/models"
	"dealhawk/internal/pipeline"
	"dealhawk/internal/sources"
	"dealhawk/internal/storage"
	"dealhawk/internal/telegram"
	"dealhawk/internal/trends"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Local overrides for secrets like DEALHAWK_TELEGRAM_BOT_TOKEN.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := storage.New(cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	tracker := trends.New(store, cfg.Trends.Capacity)
	lc := lifecycle.New(store, cfg.Lifecycle.TTL)
	engine := decision.New(decisionConfig(cfg), tracker)
	pipe := pipeline.New(cfg.Hunt.Allowlist, engine, lc)
	agg := aggregator.New(buildAdapters(cfg), cfg.Sources.Timeout)

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	exporters, err := buildExporters(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize exporters: %v", err)
	}
	defer func() {
		for _, ex := range exporters {
			if err := ex.Close(); err != nil {
				logger.Error("Failed to close exporter: %v", err)
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	if cfg.Telegram.Enabled && telegramClient != nil {
		telegramClient.ListenForCommands(ctx)
	}

	logger.Info("Starting hunt service (interval: %v, lookback: %v, allowlist: %d terms)",
		cfg.Hunt.PollInterval, cfg.Hunt.Lookback, len(cfg.Hunt.Allowlist))

	ticker := time.NewTicker(cfg.Hunt.PollInterval)
	defer ticker.Stop()

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Hunt cycle failed: %v", err)
			if consecutiveFailures == 1 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	var lastRun time.Time

	logger.Debug("Running initial hunt cycle")
	handleCycleResult(runHuntCycle(ctx, agg, pipe, tracker, lc, telegramClient, exporters, cfg, &lastRun))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			logger.Debug("Starting scheduled hunt cycle")
			handleCycleResult(runHuntCycle(ctx, agg, pipe, tracker, lc, telegramClient, exporters, cfg, &lastRun))
		}
	}
}

func decisionConfig(cfg *config.Config) decision.Config {
	categories := make(map[models.Category]decision.Thresholds, len(cfg.Decision.Categories))
	for name, row := range cfg.Decision.Categories {
		categories[models.Category(name)] = decision.Thresholds{
			MinDiscount: row.MinDiscount,
			MaxPrice:    row.MaxPrice,
			MinRating:   row.MinRating,
		}
	}
	return decision.Config{
		Categories: categories,
		Default: decision.Thresholds{
			MinDiscount: cfg.Decision.Default.MinDiscount,
			MaxPrice:    cfg.Decision.Default.MaxPrice,
			MinRating:   cfg.Decision.Default.MinRating,
		},
		LowPriceThreshold: cfg.Decision.LowPriceThreshold,
	}
}

func buildAdapters(cfg *config.Config) []sources.Adapter {
	var adapters []sources.Adapter
	if cfg.Sources.DealFeed.Enabled {
		adapters = append(adapters, sources.NewDealFeedClient(cfg.Sources.DealFeed.URL, cfg.Sources.Limit, cfg.Sources.Timeout))
	}
	if cfg.Sources.JobBoard.Enabled {
		adapters = append(adapters, sources.NewJobBoardClient(cfg.Sources.JobBoard.URL, cfg.Sources.Limit, cfg.Sources.Timeout))
	}
	if cfg.Sources.DealPage.Enabled {
		adapters = append(adapters, sources.NewDealPageClient(cfg.Sources.DealPage.URL, cfg.Sources.Limit, cfg.Sources.Timeout))
	}
	return adapters
}

func buildExporters(cfg *config.Config) ([]export.Writer, error) {
	var exporters []export.Writer
	if cfg.Export.CSVEnabled {
		w, err := export.NewCSVWriter(cfg.Export.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("csv exporter: %w", err)
		}
		exporters = append(exporters, w)
	}
	if cfg.Export.PostgresEnabled {
		w, err := export.NewPostgresWriter(cfg.Export.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres exporter: %w", err)
		}
		exporters = append(exporters, w)
	}
	return exporters, nil
}

func runHuntCycle(
	ctx context.Context,
	agg *aggregator.Aggregator,
	pipe *pipeline.Pipeline,
	tracker *trends.Tracker,
	lc *lifecycle.Manager,
	telegramClient *telegram.Client,
	exporters []export.Writer,
	cfg *config.Config,
	lastRun *time.Time,
) error {
	startTime := time.Now()
	logger.Info("Starting hunt cycle")

	since := startTime.Add(-cfg.Hunt.Lookback)
	if !lastRun.IsZero() && lastRun.After(since) {
		since = *lastRun
	}

	raw := agg.FetchAll(ctx, cfg.Hunt.Keywords, since)
	logger.Info("Fetched %d raw listings since %s", len(raw), since.Format(time.RFC3339))

	admitted, expired, stats := pipe.Process(raw, startTime)

	if cfg.Telegram.Enabled && telegramClient != nil {
		if err := telegramClient.SendExpired(expired); err != nil {
			logger.Error("Failed to send expiry notification: %v", err)
		}

		if len(admitted) > 0 {
			if err := telegramClient.SendListings(admitted); err != nil {
				logger.Error("Failed to send listing notification: %v", err)
			}
			if err := telegramClient.SendSummary(stats, admitted); err != nil {
				logger.Error("Failed to send cycle summary: %v", err)
			}
		} else {
			if err := telegramClient.SendNothingFound(); err != nil {
				logger.Error("Failed to send empty-cycle notification: %v", err)
			}
		}

		moves := tracker.MovesSince(startTime, cfg.Trends.AlertThresholdPct)
		if len(moves) > 0 {
			linkOf := func(identity string) string {
				if l, ok := lc.Get(identity); ok {
					return l.Link
				}
				return ""
			}
			if err := telegramClient.SendPriceMoves(moves, linkOf); err != nil {
				logger.Error("Failed to send price move alerts: %v", err)
			}
		}
	}

	for _, ex := range exporters {
		if err := ex.Write(admitted); err != nil {
			logger.Error("Failed to export admitted listings: %v", err)
		}
	}

	if err := flushState(tracker, lc); err != nil {
		return fmt.Errorf("failed to persist cycle state: %w", err)
	}

	*lastRun = startTime
	logger.Info("Hunt cycle completed in %v", time.Since(startTime))

	return nil
}

// flushState persists the trend series and both listing partitions,
// retrying once before giving up.
func flushState(tracker *trends.Tracker, lc *lifecycle.Manager) error {
	flush := func() error {
		if err := tracker.Flush(); err != nil {
			return fmt.Errorf("flush trend series: %w", err)
		}
		if err := lc.Flush(); err != nil {
			return fmt.Errorf("flush listing partitions: %w", err)
		}
		return nil
	}

	err := flush()
	if err == nil {
		return nil
	}
	logger.Warn("State flush failed, retrying once: %v", err)
	return flush()
}
