package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gold-analysis-bot/internal/cache"
	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/news"
	"gold-analysis-bot/internal/notification"
	"gold-analysis-bot/internal/signal"
	"gold-analysis-bot/internal/storage"
)

// Config controls the analysis cycle.
type Config struct {
	Pair       string
	Timeframes []market.Timeframe
	BarCount   int
	Interval   time.Duration
	Cooldown   time.Duration
}

// Engine runs the periodic analysis cycle: fetch bars for every timeframe,
// generate a signal, and fan it out to storage and notifiers. Signals are
// rate-limited per pair through the cooldown store.
type Engine struct {
	cfg       Config
	provider  market.DataProvider
	newsFeed  news.Provider
	generator *signal.Generator
	repo      *storage.SignalRepository
	cooldown  *cache.CooldownStore
	notifier  *notification.Manager
	logger    zerolog.Logger

	wg      sync.WaitGroup
	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

// New assembles the cycle engine. repo and notifier may be nil when the
// corresponding subsystems are disabled.
func New(cfg Config, provider market.DataProvider, newsFeed news.Provider, gen *signal.Generator, repo *storage.SignalRepository, cooldown *cache.CooldownStore, notifier *notification.Manager, logger zerolog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		provider:  provider,
		newsFeed:  newsFeed,
		generator: gen,
		repo:      repo,
		cooldown:  cooldown,
		notifier:  notifier,
		logger:    logger.With().Str("component", "engine").Logger(),
	}
}

// Start launches the cycle loop. The first cycle runs immediately.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	ctx, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	e.wg.Add(1)
	go e.loop(ctx)

	e.logger.Info().
		Str("pair", e.cfg.Pair).
		Dur("interval", e.cfg.Interval).
		Int("timeframes", len(e.cfg.Timeframes)).
		Msg("engine started")
}

// Stop cancels the loop and waits for the in-flight cycle.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	cancel := e.cancel
	e.mu.Unlock()

	cancel()
	e.wg.Wait()
	e.logger.Info().Msg("engine stopped")
}

func (e *Engine) loop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	e.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle executes one full analysis pass.
func (e *Engine) RunCycle(ctx context.Context) {
	start := time.Now()

	data := e.fetchAll(ctx)
	if len(data) == 0 {
		e.logger.Warn().Msg("no market data available, skipping cycle")
		return
	}

	items := e.fetchNews(ctx)

	result, err := e.generator.Generate(data, items)
	if err != nil {
		e.logger.Error().Err(err).Msg("signal generation failed")
		return
	}

	if result.Rejected() {
		e.logger.Info().
			Strs("reasons", result.RejectReasons).
			Dur("elapsed", time.Since(start)).
			Msg("cycle complete, no signal")
		return
	}

	sig := result.Signal

	if e.cooldown != nil && e.cooldown.InCooldown(ctx, sig.Pair) {
		e.logger.Info().
			Str("pair", sig.Pair).
			Str("direction", string(sig.Direction)).
			Msg("signal suppressed by cooldown")
		return
	}

	e.logger.Info().
		Str("id", sig.ID).
		Str("pair", sig.Pair).
		Str("direction", string(sig.Direction)).
		Float64("entry", sig.Entry).
		Float64("stop", sig.StopLoss).
		Float64("confidence", sig.Confidence).
		Str("quality", string(sig.Quality)).
		Msg("signal generated")

	if e.repo != nil {
		if err := e.repo.Insert(ctx, sig); err != nil {
			e.logger.Error().Err(err).Str("id", sig.ID).Msg("failed to persist signal")
		}
	}

	if e.notifier != nil {
		if err := e.notifier.SendSignal(sig); err != nil {
			e.logger.Error().Err(err).Str("id", sig.ID).Msg("failed to send notifications")
		}
	}

	if e.cooldown != nil {
		e.cooldown.MarkSignal(ctx, sig.Pair, e.cfg.Cooldown)
	}
}

// fetchAll pulls bars for every configured timeframe. A failed timeframe is
// logged and skipped; the generator decides whether what remains is enough.
func (e *Engine) fetchAll(ctx context.Context) map[market.Timeframe]market.BarSeries {
	data := make(map[market.Timeframe]market.BarSeries, len(e.cfg.Timeframes))
	for _, tf := range e.cfg.Timeframes {
		series, err := e.provider.GetBarSeries(ctx, tf, e.cfg.BarCount)
		if err != nil {
			e.logger.Warn().Err(err).Str("timeframe", string(tf)).Msg("failed to fetch bars")
			continue
		}
		if len(series) == 0 {
			continue
		}
		data[tf] = series
	}
	return data
}

func (e *Engine) fetchNews(ctx context.Context) []news.Item {
	if e.newsFeed == nil {
		return nil
	}
	items, err := e.newsFeed.RecentNews(ctx, 10)
	if err != nil {
		e.logger.Warn().Err(err).Msg("news fetch failed, proceeding without")
		return nil
	}
	return items
}
