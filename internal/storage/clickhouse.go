package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ecosystem-hub/internal/config"
	"github.com/ecosystem-hub/internal/models"
)

const createPointAwardsTable = `
CREATE TABLE IF NOT EXISTS point_awards (
	action       LowCardinality(String),
	amount       Int32,
	total_points Int64,
	new_badges   Array(String),
	occurred_at  DateTime64(3)
) ENGINE = MergeTree()
ORDER BY (occurred_at, action)`

// ActivityLedger appends every points award to ClickHouse for analytics.
// It is optional; the points engine works without it.
type ActivityLedger struct {
	conn driver.Conn
}

// NewActivityLedger connects to ClickHouse and ensures the ledger table exists
func NewActivityLedger(cfg *config.ClickHouseConfig) (*ActivityLedger, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      10 * time.Second,
		MaxOpenConns:     5,
		MaxIdleConns:     2,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := conn.Exec(ctx, createPointAwardsTable); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create point_awards table: %w", err)
	}

	return &ActivityLedger{conn: conn}, nil
}

// RecordAward appends one award event
func (l *ActivityLedger) RecordAward(ctx context.Context, event models.AwardEvent) error {
	badges := event.NewBadges
	if badges == nil {
		badges = []string{}
	}
	err := l.conn.Exec(ctx,
		`INSERT INTO point_awards (action, amount, total_points, new_badges, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		event.Action, int32(event.Amount), int64(event.TotalPoints), badges, event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert point award: %w", err)
	}
	return nil
}

// TotalsByAction sums awarded points per action
func (l *ActivityLedger) TotalsByAction(ctx context.Context) (map[string]int64, error) {
	rows, err := l.conn.Query(ctx, `SELECT action, sum(amount) FROM point_awards GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("query point awards: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var (
			action string
			total  int64
		)
		if err := rows.Scan(&action, &total); err != nil {
			return nil, fmt.Errorf("scan point award total: %w", err)
		}
		totals[action] = total
	}
	return totals, rows.Err()
}

// Ping checks if ClickHouse is reachable
func (l *ActivityLedger) Ping(ctx context.Context) error {
	return l.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (l *ActivityLedger) Close() error {
	if l.conn != nil {
		return l.conn.Close()
	}
	return nil
}
