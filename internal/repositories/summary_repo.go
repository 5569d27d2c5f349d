package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/traceops/backend/internal/models"
)

type SummaryRepo struct {
	pool *pgxpool.Pool
}

func NewSummaryRepo(pool *pgxpool.Pool) *SummaryRepo {
	return &SummaryRepo{pool: pool}
}

// Summarize rolls up events in [from, to] for one tenant. All queries share a
// read-only repeatable-read snapshot so totals and top lists agree.
func (r *SummaryRepo) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time, topN int) (*models.Summary, error) {
	s := &models.Summary{From: from, To: to}

	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT
				count(*),
				count(*) FILTER (WHERE result = $4),
				count(*) FILTER (WHERE result IS NOT NULL AND result <> $4),
				count(*) FILTER (WHERE action = $5)
			FROM audit_events
			WHERE tenant_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		`, tenantID, from, to, models.ResultSuccess, models.ActionExportData).Scan(
			&s.Totals.Events, &s.Totals.Success, &s.Totals.Failed, &s.Totals.Exports,
		)
		if err != nil {
			return fmt.Errorf("totals: %w", err)
		}

		if s.TopActions, err = topBy(ctx, tx, "action", tenantID, from, to, topN); err != nil {
			return fmt.Errorf("top actions: %w", err)
		}
		if s.TopActors, err = topBy(ctx, tx, "actor", tenantID, from, to, topN); err != nil {
			return fmt.Errorf("top actors: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// topBy counts events per value of column. column is never user input.
func topBy(ctx context.Context, tx pgx.Tx, column string, tenantID uuid.UUID, from, to time.Time, n int) ([]models.KeyCount, error) {
	rows, err := tx.Query(ctx, fmt.Sprintf(`
		SELECT %[1]s, count(*) AS c
		FROM audit_events
		WHERE tenant_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		GROUP BY %[1]s
		ORDER BY c DESC, %[1]s ASC
		LIMIT $4
	`, column), tenantID, from, to, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.KeyCount, 0, n)
	for rows.Next() {
		var kc models.KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			return nil, err
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}
