package ict

import (
	"testing"
	"time"
)

// TestKillZoneWindows tests session membership across the day
func TestKillZoneWindows(t *testing.T) {
	clock := NewKillZoneClock(nil)

	cases := []struct {
		hour, minute int
		inZone       bool
		name         string
		weight       float64
	}{
		{1, 30, true, "ASIAN", 0.7},
		{3, 0, true, "ASIAN", 0.7},
		{5, 0, false, "", 0.5},
		{7, 0, true, "LONDON", 0.9},
		{8, 15, true, "LONDON", 0.9},
		{12, 0, false, "", 0.5},
		{13, 30, true, "NEW_YORK", 1.0},
		// Overlap with LONDON_CLOSE resolves to the earlier session.
		{15, 30, true, "NEW_YORK", 1.0},
		{16, 30, true, "LONDON_CLOSE", 0.85},
		{17, 0, true, "LONDON_CLOSE", 0.85},
		{20, 0, false, "", 0.5},
	}

	for _, tc := range cases {
		ts := time.Date(2024, 1, 2, tc.hour, tc.minute, 0, 0, time.UTC)
		status := clock.Check(ts)

		if status.InKillZone != tc.inZone {
			t.Errorf("%02d:%02d: expected inZone=%v, got %v", tc.hour, tc.minute, tc.inZone, status.InKillZone)
		}
		if status.ZoneName != tc.name {
			t.Errorf("%02d:%02d: expected zone %q, got %q", tc.hour, tc.minute, tc.name, status.ZoneName)
		}
		if status.Weight != tc.weight {
			t.Errorf("%02d:%02d: expected weight %f, got %f", tc.hour, tc.minute, tc.weight, status.Weight)
		}
	}
}

// TestKillZoneConvertsToUTC tests that local timestamps are normalized
func TestKillZoneConvertsToUTC(t *testing.T) {
	clock := NewKillZoneClock(nil)

	// 10:00 at UTC+2 is 08:00 UTC, inside the London session.
	ts := time.Date(2024, 1, 2, 10, 0, 0, 0, time.FixedZone("EET", 2*3600))
	status := clock.Check(ts)

	if !status.InKillZone || status.ZoneName != "LONDON" {
		t.Errorf("Expected LONDON for 08:00 UTC, got %+v", status)
	}
}

// TestKillZoneCustomTable tests overriding the session table
func TestKillZoneCustomTable(t *testing.T) {
	clock := NewKillZoneClock([]KillZone{
		{Name: "TEST", Start: "09:00", End: "09:30", Weight: 0.4},
	})

	in := clock.Check(time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC))
	if !in.InKillZone || in.ZoneName != "TEST" || in.Weight != 0.4 {
		t.Errorf("Expected TEST zone, got %+v", in)
	}

	out := clock.Check(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC))
	if out.InKillZone {
		t.Error("Expected no zone outside the custom window")
	}
}
