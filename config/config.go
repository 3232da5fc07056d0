package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"gold-analysis-bot/internal/market"
)

type Config struct {
	TradingConfig      TradingConfig      `json:"trading"`
	AnalysisConfig     AnalysisConfig     `json:"analysis"`
	SignalConfig       SignalConfig       `json:"signal"`
	RiskConfig         RiskConfig         `json:"risk"`
	DatabaseConfig     DatabaseConfig     `json:"database"`
	RedisConfig        RedisConfig        `json:"redis"`
	ServerConfig       ServerConfig       `json:"server"`
	NotificationConfig NotificationConfig `json:"notification"`
	LoggingConfig      LoggingConfig      `json:"logging"`
}

// TradingConfig identifies the instrument and the cycle cadence.
type TradingConfig struct {
	Pair             string   `json:"pair"`
	PipValue         float64  `json:"pip_value"`
	Timeframes       []string `json:"timeframes"`
	AnalysisInterval int      `json:"analysis_interval"` // seconds between cycles
	CooldownMinutes  int      `json:"cooldown_minutes"`  // minimum gap between signals
	MockData         bool     `json:"mock_data"`         // use the deterministic provider
	BarCount         int      `json:"bar_count"`         // bars fetched per timeframe
}

// AnalysisConfig holds the detector tunables.
type AnalysisConfig struct {
	OrderBlockLookback     int     `json:"order_block_lookback"`
	FVGMinGapPips          float64 `json:"fvg_min_gap_pips"`
	LiquidityTolerancePips float64 `json:"liquidity_tolerance_pips"`
	RSIOversold            float64 `json:"rsi_oversold"`
	RSIOverbought          float64 `json:"rsi_overbought"`
}

// SignalConfig holds the generation pipeline tunables.
type SignalConfig struct {
	EntrySnapMinPips float64 `json:"entry_snap_min_pips"`
	EntrySnapMaxPips float64 `json:"entry_snap_max_pips"`
	StopBufferPips   float64 `json:"stop_buffer_pips"`
	MinStopPips      float64 `json:"min_stop_pips"`
	DefaultStopPips  float64 `json:"default_stop_pips"`
	TargetStepPips   float64 `json:"target_step_pips"`
	LevelProximity   float64 `json:"level_proximity_pips"`
}

// RiskConfig holds sizing and validation rules.
type RiskConfig struct {
	AccountBalance float64 `json:"account_balance"`
	RiskPercentage float64 `json:"risk_percentage"`
	MinStopPips    float64 `json:"min_stop_pips"`
	MaxStopPips    float64 `json:"max_stop_pips"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig holds Redis settings for the cooldown store.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Enabled        bool   `json:"enabled"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	ProductionMode bool   `json:"production_mode"`
}

type NotificationConfig struct {
	Enabled  bool           `json:"enabled"`
	Telegram TelegramConfig `json:"telegram"`
	Discord  DiscordConfig  `json:"discord"`
}

type TelegramConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

type DiscordConfig struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url"`
}

type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	JSONFormat bool   `json:"json_format"` // console writer when false
}

// Load reads config.json when present, then applies env overrides.
// A .env file is loaded first so both sources see it.
func Load() (*Config, error) {
	godotenv.Load()

	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = &Config{}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Timeframes converts the configured strings into market timeframes.
func (c *Config) Timeframes() []market.Timeframe {
	if len(c.TradingConfig.Timeframes) == 0 {
		return market.DefaultTimeframes
	}
	tfs := make([]market.Timeframe, 0, len(c.TradingConfig.Timeframes))
	for _, s := range c.TradingConfig.Timeframes {
		tfs = append(tfs, market.Timeframe(s))
	}
	return tfs
}

// AnalysisInterval returns the cycle cadence as a duration.
func (c *Config) AnalysisInterval() time.Duration {
	return time.Duration(c.TradingConfig.AnalysisInterval) * time.Second
}

// Cooldown returns the per-pair signal cooldown.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.TradingConfig.CooldownMinutes) * time.Minute
}

func applyDefaults(cfg *Config) {
	t := &cfg.TradingConfig
	if t.Pair == "" {
		t.Pair = "XAUUSD"
	}
	if t.PipValue <= 0 {
		t.PipValue = 0.01
	}
	if len(t.Timeframes) == 0 {
		t.Timeframes = []string{"15m", "1h", "4h", "1d"}
	}
	if t.AnalysisInterval <= 0 {
		t.AnalysisInterval = 900
	}
	if t.CooldownMinutes <= 0 {
		t.CooldownMinutes = 60
	}
	if t.BarCount <= 0 {
		t.BarCount = 300
	}

	a := &cfg.AnalysisConfig
	if a.OrderBlockLookback <= 0 {
		a.OrderBlockLookback = 50
	}
	if a.FVGMinGapPips <= 0 {
		a.FVGMinGapPips = 50
	}
	if a.LiquidityTolerancePips <= 0 {
		a.LiquidityTolerancePips = 100
	}
	if a.RSIOversold <= 0 {
		a.RSIOversold = 30
	}
	if a.RSIOverbought <= 0 {
		a.RSIOverbought = 70
	}

	s := &cfg.SignalConfig
	if s.EntrySnapMinPips <= 0 {
		s.EntrySnapMinPips = 10
	}
	if s.EntrySnapMaxPips <= 0 {
		s.EntrySnapMaxPips = 50
	}
	if s.StopBufferPips <= 0 {
		s.StopBufferPips = 10
	}
	if s.MinStopPips <= 0 {
		s.MinStopPips = 15
	}
	if s.DefaultStopPips <= 0 {
		s.DefaultStopPips = 30
	}
	if s.TargetStepPips <= 0 {
		s.TargetStepPips = 50
	}
	if s.LevelProximity <= 0 {
		s.LevelProximity = 20
	}

	r := &cfg.RiskConfig
	if r.AccountBalance <= 0 {
		r.AccountBalance = 10000
	}
	if r.RiskPercentage <= 0 {
		r.RiskPercentage = 2.0
	}
	if r.MinStopPips <= 0 {
		r.MinStopPips = 150
	}
	if r.MaxStopPips <= 0 {
		r.MaxStopPips = 500
	}

	db := &cfg.DatabaseConfig
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port <= 0 {
		db.Port = 5432
	}
	if db.Database == "" {
		db.Database = "gold_signals"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}

	if cfg.RedisConfig.Address == "" {
		cfg.RedisConfig.Address = "localhost:6379"
	}

	srv := &cfg.ServerConfig
	if srv.Host == "" {
		srv.Host = "0.0.0.0"
	}
	if srv.Port <= 0 {
		srv.Port = 8080
	}

	if cfg.LoggingConfig.Level == "" {
		cfg.LoggingConfig.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	t := &cfg.TradingConfig
	t.Pair = getEnvOrDefault("TRADING_PAIR", t.Pair)
	t.PipValue = getEnvFloatOrDefault("PIP_VALUE", t.PipValue)
	t.AnalysisInterval = getEnvIntOrDefault("ANALYSIS_INTERVAL", t.AnalysisInterval)
	t.CooldownMinutes = getEnvIntOrDefault("SIGNAL_COOLDOWN_MINUTES", t.CooldownMinutes)
	t.MockData = getEnvBoolOrDefault("MOCK_DATA", t.MockData)
	t.BarCount = getEnvIntOrDefault("BAR_COUNT", t.BarCount)
	if raw := os.Getenv("TIMEFRAMES"); raw != "" {
		t.Timeframes = splitList(raw)
	}

	a := &cfg.AnalysisConfig
	a.OrderBlockLookback = getEnvIntOrDefault("ORDER_BLOCK_LOOKBACK", a.OrderBlockLookback)
	a.FVGMinGapPips = getEnvFloatOrDefault("FVG_MIN_GAP_PIPS", a.FVGMinGapPips)
	a.LiquidityTolerancePips = getEnvFloatOrDefault("LIQUIDITY_TOLERANCE_PIPS", a.LiquidityTolerancePips)
	a.RSIOversold = getEnvFloatOrDefault("RSI_OVERSOLD", a.RSIOversold)
	a.RSIOverbought = getEnvFloatOrDefault("RSI_OVERBOUGHT", a.RSIOverbought)

	r := &cfg.RiskConfig
	r.AccountBalance = getEnvFloatOrDefault("ACCOUNT_BALANCE", r.AccountBalance)
	r.RiskPercentage = getEnvFloatOrDefault("RISK_PERCENTAGE", r.RiskPercentage)

	db := &cfg.DatabaseConfig
	db.Enabled = getEnvBoolOrDefault("DATABASE_ENABLED", db.Enabled)
	db.Host = getEnvOrDefault("DATABASE_HOST", db.Host)
	db.Port = getEnvIntOrDefault("DATABASE_PORT", db.Port)
	db.User = getEnvOrDefault("DATABASE_USER", db.User)
	db.Password = getEnvOrDefault("DATABASE_PASSWORD", db.Password)
	db.Database = getEnvOrDefault("DATABASE_NAME", db.Database)
	db.SSLMode = getEnvOrDefault("DATABASE_SSLMODE", db.SSLMode)

	rd := &cfg.RedisConfig
	rd.Enabled = getEnvBoolOrDefault("REDIS_ENABLED", rd.Enabled)
	rd.Address = getEnvOrDefault("REDIS_ADDRESS", rd.Address)
	rd.Password = getEnvOrDefault("REDIS_PASSWORD", rd.Password)
	rd.DB = getEnvIntOrDefault("REDIS_DB", rd.DB)

	srv := &cfg.ServerConfig
	srv.Enabled = getEnvBoolOrDefault("SERVER_ENABLED", srv.Enabled)
	srv.Host = getEnvOrDefault("SERVER_HOST", srv.Host)
	srv.Port = getEnvIntOrDefault("SERVER_PORT", srv.Port)
	srv.ProductionMode = getEnvBoolOrDefault("SERVER_PRODUCTION", srv.ProductionMode)

	n := &cfg.NotificationConfig
	n.Enabled = getEnvBoolOrDefault("NOTIFICATIONS_ENABLED", n.Enabled)
	n.Telegram.Enabled = getEnvBoolOrDefault("TELEGRAM_ENABLED", n.Telegram.Enabled)
	n.Telegram.BotToken = getEnvOrDefault("TELEGRAM_BOT_TOKEN", n.Telegram.BotToken)
	n.Telegram.ChatID = getEnvOrDefault("TELEGRAM_CHAT_ID", n.Telegram.ChatID)
	n.Discord.Enabled = getEnvBoolOrDefault("DISCORD_ENABLED", n.Discord.Enabled)
	n.Discord.WebhookURL = getEnvOrDefault("DISCORD_WEBHOOK_URL", n.Discord.WebhookURL)

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.JSONFormat = getEnvBoolOrDefault("LOG_JSON", cfg.LoggingConfig.JSONFormat)
}

func (c *Config) validate() error {
	if c.TradingConfig.PipValue <= 0 {
		return fmt.Errorf("pip_value must be positive")
	}
	if c.RiskConfig.RiskPercentage <= 0 || c.RiskConfig.RiskPercentage > 10 {
		return fmt.Errorf("risk_percentage must be in (0, 10], got %.2f", c.RiskConfig.RiskPercentage)
	}
	if c.SignalConfig.EntrySnapMinPips >= c.SignalConfig.EntrySnapMaxPips {
		return fmt.Errorf("entry snap band is inverted")
	}
	for _, tf := range c.TradingConfig.Timeframes {
		switch market.Timeframe(tf) {
		case market.TF1m, market.TF5m, market.TF15m, market.TF1h, market.TF4h, market.TF1d:
		default:
			return fmt.Errorf("unknown timeframe %q", tf)
		}
	}
	return nil
}

// GenerateSampleConfig creates a sample configuration file
func GenerateSampleConfig(filename string) error {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.NotificationConfig.Telegram.BotToken = "your_bot_token_here"
	cfg.NotificationConfig.Discord.WebhookURL = "your_webhook_url_here"

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return &config, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true"
	}
	return defaultValue
}
