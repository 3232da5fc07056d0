package analysis

import (
	"gold-analysis-bot/internal/market"
)

// VolumePressure classifies which side drove a bar's volume
type VolumePressure string

const (
	VolumeBuying  VolumePressure = "buying"
	VolumeSelling VolumePressure = "selling"
	VolumeNeutral VolumePressure = "neutral"
)

// VolumeProfile represents volume analysis results.
type VolumeProfile struct {
	CurrentVolume  float64
	AverageVolume  float64
	VolumeRatio    float64 // current / average
	IsHighVolume   bool    // ratio > 2
	IsClimaxVolume bool    // ratio > 3
	OBV            float64
	Pressure       VolumePressure
}

// VolumeAnalyzer provides volume-based analysis
type VolumeAnalyzer struct {
	avgPeriod int
}

// NewVolumeAnalyzer creates an analyzer with the given averaging period.
// Non-positive periods default to 20.
func NewVolumeAnalyzer(avgPeriod int) *VolumeAnalyzer {
	if avgPeriod <= 0 {
		avgPeriod = 20
	}
	return &VolumeAnalyzer{avgPeriod: avgPeriod}
}

// Analyze computes the volume profile for the latest bar. Series without
// volume data yield nil.
func (va *VolumeAnalyzer) Analyze(series market.BarSeries) *VolumeProfile {
	if len(series) == 0 || !series.HasVolume() {
		return nil
	}

	current := series.Last()
	avg := va.AverageVolume(series)

	ratio := 0.0
	if avg > 0 {
		ratio = current.Volume / avg
	}

	return &VolumeProfile{
		CurrentVolume:  current.Volume,
		AverageVolume:  avg,
		VolumeRatio:    ratio,
		IsHighVolume:   ratio > 2.0,
		IsClimaxVolume: ratio > 3.0,
		OBV:            va.OBV(series),
		Pressure:       volumePressure(current),
	}
}

// AverageVolume computes the mean volume over the averaging period.
func (va *VolumeAnalyzer) AverageVolume(series market.BarSeries) float64 {
	if len(series) == 0 {
		return 0
	}
	period := va.avgPeriod
	if len(series) < period {
		period = len(series)
	}

	sum := 0.0
	for _, b := range series.Tail(period) {
		sum += b.Volume
	}
	return sum / float64(period)
}

// OBV accumulates volume signed by the close-to-close direction.
func (va *VolumeAnalyzer) OBV(series market.BarSeries) float64 {
	obv := 0.0
	for i := 1; i < len(series); i++ {
		switch {
		case series[i].Close > series[i-1].Close:
			obv += series[i].Volume
		case series[i].Close < series[i-1].Close:
			obv -= series[i].Volume
		}
	}
	return obv
}

// ConfirmsMove reports whether the latest volume supports a directional
// move: breakouts want >2x average, reversals >1.5x.
func (va *VolumeAnalyzer) ConfirmsMove(series market.BarSeries, breakout bool) bool {
	profile := va.Analyze(series)
	if profile == nil {
		return false
	}
	if breakout {
		return profile.IsHighVolume
	}
	return profile.VolumeRatio > 1.5
}

// volumePressure reads the candle shape: a close near the extreme of the
// bar marks one-sided volume.
func volumePressure(c market.Bar) VolumePressure {
	body := c.Body()
	switch {
	case c.IsBullish():
		if upperWick(c) < body*0.2 {
			return VolumeBuying
		}
	case c.IsBearish():
		if lowerWick(c) < body*0.2 {
			return VolumeSelling
		}
	}
	return VolumeNeutral
}
