package risk

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func testCalculator() *Calculator {
	return NewCalculator(DefaultConfig(), zerolog.Nop())
}

// TestPositionSizeStandardCase tests sizing with a 300-pip stop on a
// $10,000 account risking 2%
func TestPositionSizeStandardCase(t *testing.T) {
	calc := testCalculator()

	// 300 pips = $3.00 on gold
	size := calc.CalculatePositionSize(2000.00, 1997.00)

	if size.Lots != 0.67 {
		t.Errorf("Expected 0.67 lots, got %f", size.Lots)
	}
	if size.StopPips != 300 {
		t.Errorf("Expected 300 pip stop, got %f", size.StopPips)
	}
	if size.Ounces != 67 {
		t.Errorf("Expected 67 ounces, got %f", size.Ounces)
	}
	if size.Capped {
		t.Error("Expected uncapped position")
	}
	// Actual risk: 0.67 lots x 300 pips x $1 = $201.
	if math.Abs(size.RiskAmount-201) > 0.01 {
		t.Errorf("Expected risk amount 201, got %f", size.RiskAmount)
	}
}

// TestPositionSizeCap tests the balance/5000 safety cap
func TestPositionSizeCap(t *testing.T) {
	calc := testCalculator()

	// 10 pip stop would size to 20 lots without the cap.
	size := calc.CalculatePositionSize(2000.00, 1999.90)

	if size.Lots != 2.0 {
		t.Errorf("Expected cap at 2.0 lots, got %f", size.Lots)
	}
	if !size.Capped {
		t.Error("Expected capped flag")
	}
}

// TestPositionSizeZeroStop tests the degenerate zero-distance case
func TestPositionSizeZeroStop(t *testing.T) {
	calc := testCalculator()

	size := calc.CalculatePositionSize(2000.00, 2000.00)
	if size.Lots != 0 {
		t.Errorf("Expected no position on zero stop distance, got %f", size.Lots)
	}
}

// TestRiskRewardTiers tests the quality grading thresholds
func TestRiskRewardTiers(t *testing.T) {
	calc := testCalculator()

	tests := []struct {
		name    string
		tp      float64
		quality Quality
		ok      bool
	}{
		{"excellent", 2007.50, QualityExcellent, true}, // 2.5 R:R
		{"good", 2006.00, QualityGood, true},           // 2.0
		{"acceptable", 2004.50, QualityAcceptable, true},
		{"poor", 2003.00, QualityPoor, false}, // 1.0
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := calc.RiskReward(2000.00, 1997.00, tt.tp)
			if rr.Quality != tt.quality {
				t.Errorf("Expected %s, got %s", tt.quality, rr.Quality)
			}
			if rr.IsAcceptable != tt.ok {
				t.Errorf("Expected acceptable=%v, got %v", tt.ok, rr.IsAcceptable)
			}
		})
	}
}

// TestMultiTargetWeightedRR tests the position-weighted ratio
func TestMultiTargetWeightedRR(t *testing.T) {
	calc := testCalculator()

	targets := []Target{
		{Price: 2003.00, Percentage: 50}, // 1.0 R:R
		{Price: 2006.00, Percentage: 30}, // 2.0
		{Price: 2009.00, Percentage: 20}, // 3.0
	}

	result := calc.MultiTarget(2000.00, 1997.00, targets)

	if result.RiskPips != 300 {
		t.Errorf("Expected 300 risk pips, got %f", result.RiskPips)
	}
	// 1.0*0.5 + 2.0*0.3 + 3.0*0.2 = 1.7
	if result.WeightedRR != 1.7 {
		t.Errorf("Expected weighted R:R 1.7, got %f", result.WeightedRR)
	}
	if len(result.Targets) != 3 {
		t.Fatalf("Expected 3 target entries, got %d", len(result.Targets))
	}
	if result.Targets[2].Ratio != 3.0 {
		t.Errorf("Expected third target ratio 3.0, got %f", result.Targets[2].Ratio)
	}
}

// TestValidateTradeParams tests the gold risk rules
func TestValidateTradeParams(t *testing.T) {
	calc := testCalculator()

	// 300-pip stop, 2:1 reward.
	v := calc.ValidateTradeParams(2000.00, 1997.00, 2006.00)
	if !v.IsValid {
		t.Errorf("Expected valid parameters, errors: %v", v.Errors)
	}

	// 100-pip stop is under the 150-pip floor.
	v = calc.ValidateTradeParams(2000.00, 1999.00, 2006.00)
	if v.IsValid {
		t.Error("Expected tight stop to be rejected")
	}

	// Buy with stop above entry.
	v = calc.ValidateTradeParams(2000.00, 2003.00, 2006.00)
	if v.IsValid {
		t.Error("Expected wrong-side stop to be rejected")
	}

	// Very wide stop warns but stays valid.
	v = calc.ValidateTradeParams(2000.00, 1994.00, 2015.00)
	if !v.IsValid {
		t.Errorf("Expected wide stop to remain valid, errors: %v", v.Errors)
	}
	if len(v.Warnings) == 0 {
		t.Error("Expected a warning for a 600-pip stop")
	}
}
