package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gold-analysis-bot/internal/signal"
)

// ErrNoSignals is returned when the store holds no signals yet.
var ErrNoSignals = errors.New("no signals stored")

// SignalRepository persists generated signals.
type SignalRepository struct {
	db *DB
}

func NewSignalRepository(db *DB) *SignalRepository {
	return &SignalRepository{db: db}
}

// HealthCheck pings the underlying pool.
func (r *SignalRepository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// Insert stores one signal. The full signal travels as JSONB, the indexed
// columns carry what the listing queries need.
func (r *SignalRepository) Insert(ctx context.Context, sig *signal.Signal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}

	query := `
		INSERT INTO signals (id, pair, direction, entry, stop_loss, confidence, quality, payload, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.Pool.Exec(ctx, query,
		sig.ID, sig.Pair, string(sig.Direction), sig.Entry, sig.StopLoss,
		sig.Confidence, string(sig.Quality), payload, sig.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}
	return nil
}

// Latest returns the most recently generated signal.
func (r *SignalRepository) Latest(ctx context.Context) (*signal.Signal, error) {
	query := `SELECT payload FROM signals ORDER BY generated_at DESC LIMIT 1`

	var payload []byte
	if err := r.db.Pool.QueryRow(ctx, query).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSignals
		}
		return nil, fmt.Errorf("query latest signal: %w", err)
	}

	var sig signal.Signal
	if err := json.Unmarshal(payload, &sig); err != nil {
		return nil, fmt.Errorf("unmarshal signal: %w", err)
	}
	return &sig, nil
}

// Recent returns up to limit signals, newest first.
func (r *SignalRepository) Recent(ctx context.Context, limit int) ([]*signal.Signal, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT payload FROM signals ORDER BY generated_at DESC LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent signals: %w", err)
	}
	defer rows.Close()

	var signals []*signal.Signal
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		var sig signal.Signal
		if err := json.Unmarshal(payload, &sig); err != nil {
			return nil, fmt.Errorf("unmarshal signal: %w", err)
		}
		signals = append(signals, &sig)
	}
	return signals, rows.Err()
}
