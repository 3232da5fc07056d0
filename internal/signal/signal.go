package signal

import (
	"time"

	"github.com/google/uuid"

	"gold-analysis-bot/internal/analysis"
	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/risk"
)

// SignalQuality is the overall grade of an emitted signal.
type SignalQuality string

const (
	SignalExcellent SignalQuality = "EXCELLENT"
	SignalGood      SignalQuality = "GOOD"
	SignalFair      SignalQuality = "FAIR"
	SignalPoor      SignalQuality = "POOR"
)

// MarketConditions summarizes the environment the signal fired in.
type MarketConditions struct {
	Volatility analysis.VolatilityLevel `json:"volatility"`
	Liquidity  string                   `json:"liquidity"`
	Structure  string                   `json:"structure"`
}

// NewsCheck is the sentiment alignment result attached to a signal.
type NewsCheck struct {
	Conflicting bool   `json:"conflicting"`
	Sentiment   string `json:"sentiment"`
	Impact      string `json:"impact"`
}

// Signal is a fully-formed trade recommendation.
type Signal struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Pair      string    `json:"pair"`

	Direction   market.Direction `json:"direction"`
	Entry       float64          `json:"entry"`
	StopLoss    float64          `json:"stop_loss"`
	TakeProfits []risk.Target    `json:"take_profits"`

	Position        risk.PositionSize    `json:"position"`
	RiskReward      risk.MultiTargetRR   `json:"risk_reward"`
	TradeValidation risk.TradeValidation `json:"trade_validation"`

	Alignment     analysis.AlignmentStatus `json:"timeframe_alignment"`
	PrimaryTrend  market.TrendDirection    `json:"primary_trend"`
	TrendStrength analysis.TrendStrength   `json:"trend_strength"`
	MomentumScore int                      `json:"momentum_score"`

	Confirmations     []Confirmation `json:"confirmations"`
	ConfirmationCount int            `json:"confirmation_count"`
	Confidence        float64        `json:"confidence_score"`

	InKillZone        bool   `json:"in_kill_zone"`
	KillZoneName      string `json:"kill_zone_name,omitempty"`
	OrderBlocksNearby int    `json:"order_blocks_nearby"`
	FVGPresent        bool   `json:"fvg_present"`

	Conditions MarketConditions `json:"market_conditions"`
	News       NewsCheck        `json:"news"`

	EntryReason       string   `json:"entry_reason"`
	StopReason        string   `json:"stop_reason"`
	NearestSupport    *float64 `json:"nearest_support,omitempty"`
	NearestResistance *float64 `json:"nearest_resistance,omitempty"`

	Quality SignalQuality `json:"signal_quality"`
}

// NewSignalID returns a fresh signal identifier.
func NewSignalID() string {
	return uuid.NewString()
}

// Result is the outcome of one generation cycle. A nil Signal with
// RejectReasons is a clean no-signal outcome, not an error.
type Result struct {
	Signal        *Signal  `json:"signal,omitempty"`
	RejectReasons []string `json:"reject_reasons,omitempty"`
}

// Rejected reports whether the cycle declined to emit a signal.
func (r Result) Rejected() bool {
	return r.Signal == nil
}
