package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gold-analysis-bot/config"
	"gold-analysis-bot/internal/analysis"
	"gold-analysis-bot/internal/api"
	"gold-analysis-bot/internal/cache"
	"gold-analysis-bot/internal/engine"
	"gold-analysis-bot/internal/logging"
	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/news"
	"gold-analysis-bot/internal/notification"
	"gold-analysis-bot/internal/risk"
	sig "gold-analysis-bot/internal/signal"
	"gold-analysis-bot/internal/storage"
)

func main() {
	// Generate sample config if requested
	if len(os.Args) > 1 && os.Args[1] == "generate-config" {
		if err := config.GenerateSampleConfig("config.sample.json"); err != nil {
			os.Stderr.WriteString("failed to generate sample config: " + err.Error() + "\n")
			os.Exit(1)
		}
		os.Stdout.WriteString("sample configuration written to config.sample.json\n")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Level:      cfg.LoggingConfig.Level,
		JSONFormat: cfg.LoggingConfig.JSONFormat,
	})

	logger.Info().
		Str("pair", cfg.TradingConfig.Pair).
		Strs("timeframes", cfg.TradingConfig.Timeframes).
		Msg("starting gold analysis bot")

	ctx := context.Background()

	// Market data. The mock provider runs when no live feed is configured.
	provider := market.DataProvider(market.NewMockProvider(2000))
	if !cfg.TradingConfig.MockData {
		logger.Warn().Msg("no live data feed configured, falling back to mock market data")
	}

	// Storage is optional; the bot runs without persistence.
	var repo *storage.SignalRepository
	if cfg.DatabaseConfig.Enabled {
		db, err := storage.NewDB(storage.Config{
			Host:     cfg.DatabaseConfig.Host,
			Port:     cfg.DatabaseConfig.Port,
			User:     cfg.DatabaseConfig.User,
			Password: cfg.DatabaseConfig.Password,
			Database: cfg.DatabaseConfig.Database,
			SSLMode:  cfg.DatabaseConfig.SSLMode,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := db.RunMigrations(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
		repo = storage.NewSignalRepository(db)
	}

	cooldown := cache.NewCooldownStore(cache.Config{
		Enabled:  cfg.RedisConfig.Enabled,
		Address:  cfg.RedisConfig.Address,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	}, logger)
	defer cooldown.Close()

	var notifier *notification.Manager
	if cfg.NotificationConfig.Enabled {
		notifier = notification.NewManager(logger)
		if cfg.NotificationConfig.Telegram.Enabled {
			notifier.AddNotifier(notification.NewTelegramNotifier(notification.TelegramConfig{
				BotToken: cfg.NotificationConfig.Telegram.BotToken,
				ChatID:   cfg.NotificationConfig.Telegram.ChatID,
				Enabled:  true,
			}))
		}
		if cfg.NotificationConfig.Discord.Enabled {
			notifier.AddNotifier(notification.NewDiscordNotifier(notification.DiscordConfig{
				WebhookURL: cfg.NotificationConfig.Discord.WebhookURL,
				Enabled:    true,
			}))
		}
	}

	// Analysis and generation stack.
	mtf := analysis.NewMultiTimeframeAnalyzer(analysis.Config{
		PipValue:               cfg.TradingConfig.PipValue,
		OrderBlockLookback:     cfg.AnalysisConfig.OrderBlockLookback,
		FVGMinGapPips:          cfg.AnalysisConfig.FVGMinGapPips,
		LiquidityTolerancePips: cfg.AnalysisConfig.LiquidityTolerancePips,
		RSIOversold:            cfg.AnalysisConfig.RSIOversold,
		RSIOverbought:          cfg.AnalysisConfig.RSIOverbought,
	}, logger)

	calc := risk.NewCalculator(risk.Config{
		AccountBalance: cfg.RiskConfig.AccountBalance,
		RiskPercentage: cfg.RiskConfig.RiskPercentage,
		PipValue:       cfg.TradingConfig.PipValue,
		MinStopPips:    cfg.RiskConfig.MinStopPips,
		MaxStopPips:    cfg.RiskConfig.MaxStopPips,
	}, logger)

	generator := sig.NewGenerator(sig.GeneratorConfig{
		Pair:             cfg.TradingConfig.Pair,
		PipValue:         cfg.TradingConfig.PipValue,
		EntrySnapMinPips: cfg.SignalConfig.EntrySnapMinPips,
		EntrySnapMaxPips: cfg.SignalConfig.EntrySnapMaxPips,
		StopBufferPips:   cfg.SignalConfig.StopBufferPips,
		MinStopPips:      cfg.SignalConfig.MinStopPips,
		DefaultStopPips:  cfg.SignalConfig.DefaultStopPips,
		TargetStepPips:   cfg.SignalConfig.TargetStepPips,
		LevelProximity:   cfg.SignalConfig.LevelProximity,
	}, mtf, calc, logger)

	newsFeed := news.Provider(&news.StaticProvider{})

	eng := engine.New(engine.Config{
		Pair:       cfg.TradingConfig.Pair,
		Timeframes: cfg.Timeframes(),
		BarCount:   cfg.TradingConfig.BarCount,
		Interval:   cfg.AnalysisInterval(),
		Cooldown:   cfg.Cooldown(),
	}, provider, newsFeed, generator, repo, cooldown, notifier, logger)

	// HTTP API serves generated signals when storage is on.
	var server *api.Server
	if cfg.ServerConfig.Enabled && repo != nil {
		server = api.NewServer(api.ServerConfig{
			Host:           cfg.ServerConfig.Host,
			Port:           cfg.ServerConfig.Port,
			ProductionMode: cfg.ServerConfig.ProductionMode,
		}, repo, logger)

		go func() {
			if err := server.Start(); err != nil {
				logger.Fatal().Err(err).Msg("web server failed")
			}
		}()
		logger.Info().
			Str("host", cfg.ServerConfig.Host).
			Int("port", cfg.ServerConfig.Port).
			Msg("web server started")
	}

	eng.Start(ctx)

	if notifier != nil {
		notifier.SendInfo("Bot Started", "Gold analysis bot is running")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("error shutting down web server")
		}
	}

	eng.Stop()
	logger.Info().Msg("shutdown complete")
}
