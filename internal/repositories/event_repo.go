package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/traceops/backend/internal/models"
)

const eventColumns = `id, tenant_id, occurred_at, actor, action, resource, resource_id, ip, result, metadata`

type EventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

// InsertWithAlerts writes events and the alerts derived from them in one
// transaction. Either every row lands or none does.
func (r *EventRepo) InsertWithAlerts(ctx context.Context, events []models.AuditEvent, alerts []models.Alert) error {
	if len(events) == 0 && len(alerts) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range events {
			e := &events[i]
			batch.Queue(`
				INSERT INTO audit_events (`+eventColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			`, e.ID, e.TenantID, e.OccurredAt, e.Actor, e.Action, e.Resource, e.ResourceID, e.IP, e.Result, jsonParam(e.Metadata))
		}
		for i := range alerts {
			queueAlertInsert(batch, &alerts[i])
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert events: %w", err)
		}
		return nil
	})
}

func (r *EventRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditEvent, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+eventColumns+`
		FROM audit_events WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// List returns one page of events newest first plus the total match count.
func (r *EventRepo) List(ctx context.Context, tenantID uuid.UUID, f EventFilter) ([]models.AuditEvent, int, error) {
	where, args := f.where(tenantID)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM audit_events WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM audit_events WHERE %s
		ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d
	`, eventColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]models.AuditEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *e)
	}
	return events, total, rows.Err()
}

// Stream walks every event matching f newest first without paging.
// Limit and Offset are ignored.
func (r *EventRepo) Stream(ctx context.Context, tenantID uuid.UUID, f EventFilter, fn func(*models.AuditEvent) error) error {
	where, args := f.where(tenantID)
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+` FROM audit_events WHERE `+where+`
		ORDER BY occurred_at DESC, id DESC
	`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanEvent(row pgx.Row) (*models.AuditEvent, error) {
	var e models.AuditEvent
	var metadata []byte
	if err := row.Scan(&e.ID, &e.TenantID, &e.OccurredAt, &e.Actor, &e.Action, &e.Resource,
		&e.ResourceID, &e.IP, &e.Result, &metadata); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		e.Metadata = metadata
	}
	return &e, nil
}

// jsonParam sends empty metadata as SQL NULL.
func jsonParam(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
