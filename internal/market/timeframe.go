package market

// Timeframe represents different chart timeframes
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

// DefaultTimeframes is the standard analysis set, shortest first.
var DefaultTimeframes = []Timeframe{TF15m, TF1h, TF4h, TF1d}

// PrimaryTrendPriority orders timeframes for primary-trend selection,
// largest first.
var PrimaryTrendPriority = []Timeframe{TF1d, TF4h, TF1h, TF15m}

// EntryPriority orders timeframes for entry precision, shortest first.
var EntryPriority = []Timeframe{TF5m, TF15m, TF1h}

// TrendDirection represents the market trend on one timeframe.
type TrendDirection string

const (
	TrendBullish TrendDirection = "BULLISH"
	TrendBearish TrendDirection = "BEARISH"
	TrendRanging TrendDirection = "RANGING"
)

// Direction represents a proposed trade direction.
type Direction string

const (
	DirectionBuy     Direction = "BUY"
	DirectionSell    Direction = "SELL"
	DirectionNeutral Direction = "NEUTRAL"
)
