package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"signal_monitor/internal/models"
)

// Snapshots implement db store
type Snapshots struct{}

// NewSnapshots instance
func NewSnapshots() *Snapshots {
	return &Snapshots{}
}

type snapshotPayload struct {
	Prices     map[string]float64 `json:"prices"`
	Dominance  float64            `json:"dominance"`
	FundingPct float64            `json:"funding_pct"`
	OIBillions float64            `json:"oi_billions"`
}

func (s *Snapshots) Insert(ctx context.Context, tx pgx.Tx, snap *models.MarketSnapshot) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Snapshots.Insert: %w", err)
		}
	}()

	data, err := sonic.Marshal(snapshotPayload{
		Prices:     snap.Prices,
		Dominance:  snap.Dominance,
		FundingPct: snap.FundingPct,
		OIBillions: snap.OIBillions,
	})
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO market_snapshots (taken_at, payload) VALUES ($1, $2)`,
		snap.TakenAt, data,
	)
	return err
}

// ClosestTo — снапшот, ближайший к моменту t в пределах суток.
func (s *Snapshots) ClosestTo(ctx context.Context, tx pgx.Tx, t time.Time) (snap *models.MarketSnapshot, err error) {
	defer func() {
		if err != nil && err != pgx.ErrNoRows {
			err = fmt.Errorf("Snapshots.ClosestTo: %w", err)
		}
	}()

	row := tx.QueryRow(ctx,
		`SELECT id, taken_at, payload
		   FROM market_snapshots
		  WHERE taken_at BETWEEN $1 AND $2
		  ORDER BY abs(extract(epoch FROM taken_at - $3::timestamptz))
		  LIMIT 1`,
		t.Add(-12*time.Hour), t.Add(12*time.Hour), t,
	)

	var (
		id      int64
		takenAt time.Time
		data    []byte
	)
	if err = row.Scan(&id, &takenAt, &data); err != nil {
		return nil, err
	}

	var payload snapshotPayload
	if err = sonic.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &models.MarketSnapshot{
		ID:         id,
		TakenAt:    takenAt,
		Prices:     payload.Prices,
		Dominance:  payload.Dominance,
		FundingPct: payload.FundingPct,
		OIBillions: payload.OIBillions,
	}, nil
}

// EnsureSchema создаёт таблицу при первом запуске.
func (s *Snapshots) EnsureSchema(ctx context.Context, tx pgx.Tx) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("Snapshots.EnsureSchema: %w", err)
		}
	}()

	_, err = tx.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS market_snapshots (
			id       BIGSERIAL PRIMARY KEY,
			taken_at TIMESTAMPTZ NOT NULL,
			payload  JSONB NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS market_snapshots_taken_at_idx
			ON market_snapshots (taken_at)`)
	return err
}
