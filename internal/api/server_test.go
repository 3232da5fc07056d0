package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"gold-analysis-bot/internal/market"
	"gold-analysis-bot/internal/signal"
	"gold-analysis-bot/internal/storage"
)

type fakeStore struct {
	latest  *signal.Signal
	recent  []*signal.Signal
	healthy bool
}

func (f *fakeStore) HealthCheck(context.Context) error {
	if !f.healthy {
		return errors.New("down")
	}
	return nil
}

func (f *fakeStore) Latest(context.Context) (*signal.Signal, error) {
	if f.latest == nil {
		return nil, storage.ErrNoSignals
	}
	return f.latest, nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]*signal.Signal, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func testServer(store *fakeStore) *Server {
	return NewServer(ServerConfig{Host: "127.0.0.1", Port: 0, ProductionMode: true}, store, zerolog.Nop())
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

// TestHealthEndpoint tests both healthy and degraded states
func TestHealthEndpoint(t *testing.T) {
	store := &fakeStore{healthy: true}
	s := testServer(store)

	w := doRequest(t, s, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	store.healthy = false
	w = doRequest(t, s, "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 when store is down, got %d", w.Code)
	}
}

// TestLatestSignal tests the latest-signal endpoint
func TestLatestSignal(t *testing.T) {
	store := &fakeStore{healthy: true}
	s := testServer(store)

	w := doRequest(t, s, "/api/v1/signals/latest")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 with no signals, got %d", w.Code)
	}

	store.latest = &signal.Signal{ID: "abc", Pair: "XAUUSD", Direction: market.DirectionBuy, Entry: 2031.5}
	w = doRequest(t, s, "/api/v1/signals/latest")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var got signal.Signal
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if got.ID != "abc" || got.Entry != 2031.5 {
		t.Errorf("Unexpected signal payload: %+v", got)
	}
}

// TestRecentSignals tests the listing endpoint and limit validation
func TestRecentSignals(t *testing.T) {
	store := &fakeStore{
		healthy: true,
		recent: []*signal.Signal{
			{ID: "one", Pair: "XAUUSD"},
			{ID: "two", Pair: "XAUUSD"},
			{ID: "three", Pair: "XAUUSD"},
		},
	}
	s := testServer(store)

	w := doRequest(t, s, "/api/v1/signals?limit=2")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body struct {
		Signals []*signal.Signal `json:"signals"`
		Count   int              `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Bad response body: %v", err)
	}
	if body.Count != 2 || len(body.Signals) != 2 {
		t.Errorf("Expected 2 signals, got count=%d len=%d", body.Count, len(body.Signals))
	}

	for _, bad := range []string{"0", "-1", "abc", "500"} {
		w = doRequest(t, s, "/api/v1/signals?limit="+bad)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for limit=%s, got %d", bad, w.Code)
		}
	}
}
