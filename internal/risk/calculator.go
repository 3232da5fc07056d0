package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Quality grades a risk-reward ratio.
type Quality string

const (
	QualityExcellent  Quality = "EXCELLENT"
	QualityGood       Quality = "GOOD"
	QualityAcceptable Quality = "ACCEPTABLE"
	QualityPoor       Quality = "POOR"
)

// Config holds risk management configuration for XAU/USD.
type Config struct {
	AccountBalance float64 // account currency
	RiskPercentage float64 // percent of balance risked per trade
	PipValue       float64 // price change per pip, 0.01 for gold
	MinStopPips    float64 // reject tighter stops
	MaxStopPips    float64 // warn on wider stops
}

// DefaultConfig returns conservative gold defaults.
func DefaultConfig() Config {
	return Config{
		AccountBalance: 10000,
		RiskPercentage: 2.0,
		PipValue:       0.01,
		MinStopPips:    150,
		MaxStopPips:    500,
	}
}

// PositionSize is the sizing outcome for one trade.
// One standard lot of gold is 100 ounces, worth $1.00 per pip.
type PositionSize struct {
	Lots           float64 `json:"position_size"`
	Ounces         float64 `json:"position_size_ounces"`
	RiskAmount     float64 `json:"risk_amount"`
	RiskPercentage float64 `json:"risk_percentage"`
	StopPips       float64 `json:"stop_distance_pips"`
	Capped         bool    `json:"capped,omitempty"`
}

// RiskReward is the single-target ratio assessment.
type RiskReward struct {
	Ratio        float64 `json:"ratio"`
	RiskPips     float64 `json:"risk_pips"`
	RewardPips   float64 `json:"reward_pips"`
	Quality      Quality `json:"quality"`
	IsAcceptable bool    `json:"is_acceptable"`
}

// Target is one take-profit level with its share of the position.
type Target struct {
	Price      float64 `json:"price"`
	Kind       string  `json:"type"`
	Percentage float64 `json:"percentage"`
}

// TargetRR is the per-target ratio within a multi-target plan.
type TargetRR struct {
	Number     int     `json:"target_number"`
	Price      float64 `json:"price"`
	Percentage float64 `json:"percentage"`
	RewardPips float64 `json:"reward_pips"`
	Ratio      float64 `json:"rr_ratio"`
}

// MultiTargetRR aggregates risk-reward across scaled exits.
type MultiTargetRR struct {
	RiskPips   float64    `json:"risk_pips"`
	Targets    []TargetRR `json:"targets"`
	WeightedRR float64    `json:"weighted_rr"`
}

// TradeValidation reports whether trade parameters meet the risk rules.
type TradeValidation struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

const pipValuePerStandardLot = 1.0 // $1.00 per pip per 100 oz lot

// Calculator sizes positions and grades risk-reward for gold.
type Calculator struct {
	cfg    Config
	logger zerolog.Logger
}

func NewCalculator(cfg Config, logger zerolog.Logger) *Calculator {
	if cfg.PipValue <= 0 {
		cfg.PipValue = 0.01
	}
	return &Calculator{
		cfg:    cfg,
		logger: logger.With().Str("component", "risk_calculator").Logger(),
	}
}

// CalculatePositionSize sizes a trade so the stop distance risks the
// configured percentage of the balance. Lots round down to 0.01 steps and
// clamp to [0.01, balance/5000].
func (c *Calculator) CalculatePositionSize(entry, stop float64) PositionSize {
	riskAmount := c.cfg.AccountBalance * (c.cfg.RiskPercentage / 100)
	stopPips := math.Abs(entry-stop) / c.cfg.PipValue

	var result PositionSize
	result.StopPips = round1(stopPips)
	if stopPips <= 0 {
		return result
	}

	lots := riskAmount / (stopPips * pipValuePerStandardLot)
	lots = math.Round(lots*100) / 100

	if lots < 0.01 {
		lots = 0.01
		c.logger.Warn().Msg("position below minimum, using 0.01 lots")
	}
	maxLots := c.cfg.AccountBalance / 5000
	if lots > maxLots {
		lots = maxLots
		result.Capped = true
		c.logger.Warn().Float64("max_lots", maxLots).Msg("position capped")
	}

	actualRisk := lots * stopPips * pipValuePerStandardLot

	result.Lots = lots
	result.Ounces = round2(lots * 100)
	result.RiskAmount = round2(actualRisk)
	result.RiskPercentage = round2(actualRisk / c.cfg.AccountBalance * 100)

	c.logger.Info().
		Float64("lots", lots).
		Float64("risk_amount", result.RiskAmount).
		Float64("stop_pips", result.StopPips).
		Msg("position sized")

	return result
}

// RiskReward grades a single take-profit against the stop.
func (c *Calculator) RiskReward(entry, stop, takeProfit float64) RiskReward {
	riskPips := math.Abs(entry-stop) / c.cfg.PipValue
	rewardPips := math.Abs(takeProfit-entry) / c.cfg.PipValue

	var ratio float64
	if riskPips > 0 {
		ratio = rewardPips / riskPips
	}

	return RiskReward{
		Ratio:        round2(ratio),
		RiskPips:     round1(riskPips),
		RewardPips:   round1(rewardPips),
		Quality:      ratioQuality(ratio),
		IsAcceptable: ratio >= 1.5,
	}
}

// MultiTarget computes the position-weighted R:R across scaled exits.
func (c *Calculator) MultiTarget(entry, stop float64, targets []Target) MultiTargetRR {
	riskPips := math.Abs(entry-stop) / c.cfg.PipValue

	result := MultiTargetRR{RiskPips: round1(riskPips)}

	for i, target := range targets {
		pct := target.Percentage
		if pct == 0 && len(targets) > 0 {
			pct = 100 / float64(len(targets))
		}
		rewardPips := math.Abs(target.Price-entry) / c.cfg.PipValue
		var ratio float64
		if riskPips > 0 {
			ratio = rewardPips / riskPips
		}
		result.WeightedRR += ratio * (pct / 100)
		result.Targets = append(result.Targets, TargetRR{
			Number:     i + 1,
			Price:      target.Price,
			Percentage: pct,
			RewardPips: round1(rewardPips),
			Ratio:      round2(ratio),
		})
	}
	result.WeightedRR = round2(result.WeightedRR)
	return result
}

// ValidateTradeParams checks stop distance bounds, side consistency, and
// that entry sits between the stop and the target.
func (c *Calculator) ValidateTradeParams(entry, stop, takeProfit float64) TradeValidation {
	v := TradeValidation{IsValid: true}

	stopPips := math.Abs(entry-stop) / c.cfg.PipValue
	tpPips := math.Abs(takeProfit-entry) / c.cfg.PipValue

	if stopPips < c.cfg.MinStopPips {
		v.Errors = append(v.Errors, fmt.Sprintf("stop loss too tight: %.1f pips, minimum %.0f for gold", stopPips, c.cfg.MinStopPips))
		v.IsValid = false
	}
	if stopPips > c.cfg.MaxStopPips {
		v.Warnings = append(v.Warnings, fmt.Sprintf("stop loss very wide: %.1f pips", stopPips))
	}

	if stopPips > 0 && tpPips/stopPips < 2.0 {
		v.Warnings = append(v.Warnings, fmt.Sprintf("risk-reward below 1:2 (%.2f)", tpPips/stopPips))
	}

	if entry <= math.Min(stop, takeProfit) || entry >= math.Max(stop, takeProfit) {
		v.Errors = append(v.Errors, "entry price must be between stop loss and take profit")
		v.IsValid = false
	}

	if takeProfit > entry && stop >= entry {
		v.Errors = append(v.Errors, "buy stop loss must be below entry")
		v.IsValid = false
	}
	if takeProfit < entry && stop <= entry {
		v.Errors = append(v.Errors, "sell stop loss must be above entry")
		v.IsValid = false
	}

	return v
}

func ratioQuality(ratio float64) Quality {
	switch {
	case ratio >= 2.5:
		return QualityExcellent
	case ratio >= 2.0:
		return QualityGood
	case ratio >= 1.5:
		return QualityAcceptable
	}
	return QualityPoor
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
