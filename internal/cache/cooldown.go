// Package cache provides the Redis-backed cooldown gate between signals,
// with in-memory graceful degradation when Redis is unavailable.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds Redis connection settings.
type Config struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

const cooldownKey = "signal:cooldown:%s"

// CooldownStore rate-limits signal emission per pair. A Redis outage
// degrades to the in-memory map instead of blocking the pipeline.
type CooldownStore struct {
	client *redis.Client
	logger zerolog.Logger

	mu            sync.RWMutex
	healthy       bool
	failureCount  int
	maxFailures   int
	retryInterval time.Duration
	lastRetry     time.Time
	local         map[string]time.Time
}

// NewCooldownStore connects to Redis when enabled. A failed initial
// connection still returns a working store in degraded mode.
func NewCooldownStore(cfg Config, logger zerolog.Logger) *CooldownStore {
	store := &CooldownStore{
		logger:        logger.With().Str("component", "cooldown_store").Logger(),
		maxFailures:   3,
		retryInterval: 30 * time.Second,
		local:         make(map[string]time.Time),
	}

	if !cfg.Enabled {
		store.logger.Info().Msg("redis disabled, using in-memory cooldowns")
		return store
	}

	store.client = redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.client.Ping(ctx).Err(); err != nil {
		store.logger.Warn().Err(err).Msg("initial redis connection failed, degraded mode")
		return store
	}

	store.healthy = true
	store.logger.Info().Str("addr", cfg.Address).Msg("redis connected")
	return store
}

// IsHealthy reports whether Redis is currently usable.
func (s *CooldownStore) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}

// InCooldown reports whether the pair emitted a signal within its cooldown.
func (s *CooldownStore) InCooldown(ctx context.Context, pair string) bool {
	if s.useRedis() {
		n, err := s.client.Exists(ctx, fmt.Sprintf(cooldownKey, pair)).Result()
		if err != nil {
			s.recordFailure(err)
		} else {
			s.recordSuccess()
			return n > 0
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	until, ok := s.local[pair]
	return ok && time.Now().Before(until)
}

// MarkSignal starts the cooldown window for the pair. The local map is
// always written so a Redis outage mid-window keeps the gate closed.
func (s *CooldownStore) MarkSignal(ctx context.Context, pair string, cooldown time.Duration) {
	s.mu.Lock()
	s.local[pair] = time.Now().Add(cooldown)
	s.mu.Unlock()

	if !s.useRedis() {
		return
	}
	if err := s.client.Set(ctx, fmt.Sprintf(cooldownKey, pair), time.Now().Unix(), cooldown).Err(); err != nil {
		s.recordFailure(err)
		return
	}
	s.recordSuccess()
}

// Close releases the Redis client.
func (s *CooldownStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// useRedis gates each Redis call. While degraded, one attempt is allowed
// per retry interval so the store can recover once Redis comes back.
func (s *CooldownStore) useRedis() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return false
	}
	if s.healthy {
		return true
	}
	if time.Since(s.lastRetry) >= s.retryInterval {
		s.lastRetry = time.Now()
		return true
	}
	return false
}

func (s *CooldownStore) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failureCount++
	if s.failureCount >= s.maxFailures && s.healthy {
		s.logger.Warn().Err(err).Msg("redis marked unhealthy, in-memory fallback active")
		s.healthy = false
	}
}

func (s *CooldownStore) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.healthy && s.client != nil {
		s.logger.Info().Msg("redis recovered")
	}
	s.healthy = true
	s.failureCount = 0
}
