package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/risk"
	"gold-analysis-bot/internal/signal"
)

type fakeNotifier struct {
	name    string
	enabled bool
	err     error
	sent    []*Notification
}

func (f *fakeNotifier) Send(n *Notification) error {
	f.sent = append(f.sent, n)
	return f.err
}
func (f *fakeNotifier) Name() string    { return f.name }
func (f *fakeNotifier) IsEnabled() bool { return f.enabled }

// TestFanOutSkipsDisabled tests that disabled providers are not called
func TestFanOutSkipsDisabled(t *testing.T) {
	m := NewManager(zerolog.Nop())
	active := &fakeNotifier{name: "active", enabled: true}
	inactive := &fakeNotifier{name: "inactive", enabled: false}
	m.AddNotifier(active)
	m.AddNotifier(inactive)

	if err := m.SendInfo("status", "cycle complete"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if len(active.sent) != 1 {
		t.Errorf("Expected 1 delivery to active provider, got %d", len(active.sent))
	}
	if len(inactive.sent) != 0 {
		t.Errorf("Expected no deliveries to disabled provider, got %d", len(inactive.sent))
	}
}

// TestFanOutContinuesPastFailure tests that one failing provider does not
// block the others
func TestFanOutContinuesPastFailure(t *testing.T) {
	m := NewManager(zerolog.Nop())
	failing := &fakeNotifier{name: "failing", enabled: true, err: errors.New("webhook down")}
	working := &fakeNotifier{name: "working", enabled: true}
	m.AddNotifier(failing)
	m.AddNotifier(working)

	err := m.SendError("analysis failed", "timeframe fetch error")
	if err == nil {
		t.Error("Expected the provider error to surface")
	}
	if len(working.sent) != 1 {
		t.Errorf("Expected delivery to the working provider, got %d", len(working.sent))
	}
}

// TestSendSignalFormatting tests the signal-to-notification mapping
func TestSendSignalFormatting(t *testing.T) {
	m := NewManager(zerolog.Nop())
	sink := &fakeNotifier{name: "sink", enabled: true}
	m.AddNotifier(sink)

	sig := &signal.Signal{
		ID:        "test-id",
		Timestamp: time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC),
		Pair:      "XAUUSD",
		Direction: market.DirectionBuy,
		Entry:     2031.50,
		StopLoss:  2028.50,
		TakeProfits: []risk.Target{
			{Price: 2035.00, Kind: "fib_1.272", Percentage: 50},
			{Price: 2038.00, Kind: "fib_1.618", Percentage: 30},
			{Price: 2042.00, Kind: "structural", Percentage: 20},
		},
		Confirmations: []signal.Confirmation{signal.ConfTrendAligned},
		InKillZone:    true,
		KillZoneName:  "LONDON",
		Quality:       signal.SignalGood,
	}

	if err := m.SendSignal(sig); err != nil {
		t.Fatalf("SendSignal returned error: %v", err)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(sink.sent))
	}

	n := sink.sent[0]
	if n.Type != NotifySignal {
		t.Errorf("Expected signal type, got %s", n.Type)
	}
	if n.Pair != "XAUUSD" || n.Price != 2031.50 {
		t.Errorf("Unexpected pair/price: %s %.2f", n.Pair, n.Price)
	}

	var hasKillZone bool
	for _, f := range n.Fields {
		if f.Name == "Kill Zone" && f.Value == "LONDON" {
			hasKillZone = true
		}
	}
	if !hasKillZone {
		t.Error("Expected kill zone field on the notification")
	}
}
