package market

import (
	"fmt"
	"time"
)

// Bar represents a single OHLCV candle for one timeframe.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// IsBullish reports whether the bar closed above its open.
func (b Bar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish reports whether the bar closed below its open.
func (b Bar) IsBearish() bool {
	return b.Close < b.Open
}

// Body returns the absolute size of the candle body.
func (b Bar) Body() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// Range returns the high-to-low range of the bar.
func (b Bar) Range() float64 {
	return b.High - b.Low
}

// BarSeries is an ordered sequence of bars for one timeframe, oldest first.
// Series are treated as immutable snapshots once handed to the engine.
type BarSeries []Bar

// Last returns the most recent bar. The series must be non-empty.
func (s BarSeries) Last() Bar {
	return s[len(s)-1]
}

// LastClose returns the most recent close price, or 0 for an empty series.
func (s BarSeries) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Tail returns the most recent n bars (or the whole series if shorter).
func (s BarSeries) Tail(n int) BarSeries {
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

// HighestHigh returns the maximum high over the most recent n bars.
func (s BarSeries) HighestHigh(n int) float64 {
	tail := s.Tail(n)
	if len(tail) == 0 {
		return 0
	}
	max := tail[0].High
	for _, b := range tail[1:] {
		if b.High > max {
			max = b.High
		}
	}
	return max
}

// LowestLow returns the minimum low over the most recent n bars.
func (s BarSeries) LowestLow(n int) float64 {
	tail := s.Tail(n)
	if len(tail) == 0 {
		return 0
	}
	min := tail[0].Low
	for _, b := range tail[1:] {
		if b.Low < min {
			min = b.Low
		}
	}
	return min
}

// Opens extracts the open prices in series order.
func (s BarSeries) Opens() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Open
	}
	return out
}

// Highs extracts the high prices in series order.
func (s BarSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low prices in series order.
func (s BarSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Closes extracts the close prices in series order.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volumes in series order.
func (s BarSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// HasVolume reports whether the series carries usable volume data.
func (s BarSeries) HasVolume() bool {
	for _, b := range s {
		if b.Volume > 0 {
			return true
		}
	}
	return false
}

// AverageRange returns the mean high-low range over bars [from, to).
// Indices outside the series are clamped.
func (s BarSeries) AverageRange(from, to int) float64 {
	if from < 0 {
		from = 0
	}
	if to > len(s) {
		to = len(s)
	}
	if to <= from {
		return 0
	}
	sum := 0.0
	for i := from; i < to; i++ {
		sum += s[i].Range()
	}
	return sum / float64(to-from)
}

// ValidationError describes a malformed bar series. It is the only error
// class the engine reports to callers; short or empty series are handled by
// detectors returning empty results instead.
type ValidationError struct {
	Timeframe Timeframe
	Index     int
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid bar series %s at index %d: %s", e.Timeframe, e.Index, e.Reason)
}

// ValidateSeries checks the OHLC invariant (low <= open,close <= high) and
// strictly increasing timestamps. It must be called before any detection.
func ValidateSeries(tf Timeframe, series BarSeries) error {
	for i, b := range series {
		if b.Low > b.Open || b.Low > b.Close || b.High < b.Open || b.High < b.Close || b.Low > b.High {
			return &ValidationError{Timeframe: tf, Index: i, Reason: "OHLC invariant violated"}
		}
		if i > 0 && !series[i-1].Timestamp.Before(b.Timestamp) {
			return &ValidationError{Timeframe: tf, Index: i, Reason: "timestamps not strictly increasing"}
		}
	}
	return nil
}
