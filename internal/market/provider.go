package market

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// DataProvider supplies historical bar data for the instrument under
// analysis. Implementations may return fewer bars than requested; the engine
// degrades gracefully on short series.
type DataProvider interface {
	// GetBarSeries returns up to count bars for the given timeframe,
	// oldest first.
	GetBarSeries(ctx context.Context, tf Timeframe, count int) (BarSeries, error)
}

// MockProvider generates deterministic synthetic price data. It is used when
// no live data source is configured and in development.
type MockProvider struct {
	BasePrice float64
	Drift     float64 // per-bar trend component
	Seed      int64
}

// NewMockProvider creates a synthetic data provider anchored at basePrice.
func NewMockProvider(basePrice float64) *MockProvider {
	return &MockProvider{
		BasePrice: basePrice,
		Drift:     0.02,
		Seed:      42,
	}
}

// GetBarSeries generates a deterministic random-walk series ending at the
// current time, aligned to the timeframe's bar duration.
func (p *MockProvider) GetBarSeries(_ context.Context, tf Timeframe, count int) (BarSeries, error) {
	step := barDuration(tf)
	rng := rand.New(rand.NewSource(p.Seed + int64(len(tf))))

	end := time.Now().UTC().Truncate(step)
	start := end.Add(-time.Duration(count) * step)

	series := make(BarSeries, 0, count)
	price := p.BasePrice
	vol := p.BasePrice * 0.002

	for i := 0; i < count; i++ {
		open := price
		move := rng.NormFloat64()*vol + p.Drift
		close := open + move
		high := math.Max(open, close) + rng.Float64()*vol*0.5
		low := math.Min(open, close) - rng.Float64()*vol*0.5

		series = append(series, Bar{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000 + rng.Float64()*5000,
		})
		price = close
	}

	return series, nil
}

func barDuration(tf Timeframe) time.Duration {
	switch tf {
	case TF1m:
		return time.Minute
	case TF5m:
		return 5 * time.Minute
	case TF15m:
		return 15 * time.Minute
	case TF1h:
		return time.Hour
	case TF4h:
		return 4 * time.Hour
	case TF1d:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}
