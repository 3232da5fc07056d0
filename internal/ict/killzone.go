package ict

import (
	"time"
)

// KillZone is a fixed time-of-day window associated with higher expected
// liquidity and volatility.
type KillZone struct {
	Name   string
	Start  string // "HH:MM" UTC, inclusive
	End    string // "HH:MM" UTC, inclusive
	Weight float64
}

// DefaultKillZones are the standard ICT session windows in UTC.
var DefaultKillZones = []KillZone{
	{Name: "ASIAN", Start: "00:00", End: "03:00", Weight: 0.7},
	{Name: "LONDON", Start: "07:00", End: "10:00", Weight: 0.9},
	{Name: "NEW_YORK", Start: "13:30", End: "16:00", Weight: 1.0},
	{Name: "LONDON_CLOSE", Start: "15:00", End: "17:00", Weight: 0.85},
}

// KillZoneStatus reports whether a timestamp falls in a session window.
type KillZoneStatus struct {
	InKillZone bool
	ZoneName   string
	Weight     float64
}

// KillZoneClock evaluates session membership against a fixed zone table.
// Evaluation is driven by the timestamp passed in, keeping the engine a pure
// function of its inputs.
type KillZoneClock struct {
	zones []KillZone
}

// NewKillZoneClock creates a clock over the given zones, or the defaults
// when none are supplied.
func NewKillZoneClock(zones []KillZone) *KillZoneClock {
	if len(zones) == 0 {
		zones = DefaultKillZones
	}
	return &KillZoneClock{zones: zones}
}

// Check returns the kill-zone status at the given time. The first matching
// zone in table order wins. Outside any zone the weight is a neutral 0.5.
func (c *KillZoneClock) Check(ts time.Time) KillZoneStatus {
	clock := ts.UTC().Format("15:04")
	for _, z := range c.zones {
		if clock >= z.Start && clock <= z.End {
			return KillZoneStatus{InKillZone: true, ZoneName: z.Name, Weight: z.Weight}
		}
	}
	return KillZoneStatus{Weight: 0.5}
}
