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

const alertColumns = `id, tenant_id, event_id, type, severity, title, details, created_at, is_resolved, resolved_at`

const insertAlertSQL = `
	INSERT INTO alerts (` + alertColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type AlertRepo struct {
	pool *pgxpool.Pool
}

func NewAlertRepo(pool *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

func alertArgs(a *models.Alert) []any {
	return []any{a.ID, a.TenantID, a.EventID, a.Type, a.Severity, a.Title, a.Details, a.CreatedAt, a.IsResolved, a.ResolvedAt}
}

func queueAlertInsert(batch *pgx.Batch, a *models.Alert) {
	batch.Queue(insertAlertSQL, alertArgs(a)...)
}

func (r *AlertRepo) Create(ctx context.Context, a *models.Alert) error {
	_, err := r.pool.Exec(ctx, insertAlertSQL, alertArgs(a)...)
	return err
}

func (r *AlertRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Alert, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+alertColumns+` FROM alerts WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	a, err := scanAlert(row)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *AlertRepo) List(ctx context.Context, tenantID uuid.UUID, f AlertFilter) ([]models.Alert, int, error) {
	where, args := f.where(tenantID)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM alerts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM alerts WHERE %s
		ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d
	`, alertColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	alerts := make([]models.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, *a)
	}
	return alerts, total, rows.Err()
}

// Resolve marks the alert resolved. The first resolution time sticks; changed
// reports whether this call flipped the alert from open to resolved.
func (r *AlertRepo) Resolve(ctx context.Context, tenantID, id uuid.UUID, at time.Time) (*models.Alert, bool, error) {
	row := r.pool.QueryRow(ctx, `
		WITH prev AS (
			SELECT is_resolved FROM alerts WHERE tenant_id = $1 AND id = $2 FOR UPDATE
		)
		UPDATE alerts a SET is_resolved = true, resolved_at = COALESCE(a.resolved_at, $3)
		FROM prev
		WHERE a.tenant_id = $1 AND a.id = $2
		RETURNING a.id, a.tenant_id, a.event_id, a.type, a.severity, a.title, a.details,
			a.created_at, a.is_resolved, a.resolved_at, NOT prev.is_resolved
	`, tenantID, id, at)

	var a models.Alert
	var changed bool
	err := row.Scan(&a.ID, &a.TenantID, &a.EventID, &a.Type, &a.Severity, &a.Title, &a.Details,
		&a.CreatedAt, &a.IsResolved, &a.ResolvedAt, &changed)
	if err != nil {
		return nil, false, notFound(err)
	}
	return &a, changed, nil
}

func scanAlert(row pgx.Row) (*models.Alert, error) {
	var a models.Alert
	if err := row.Scan(&a.ID, &a.TenantID, &a.EventID, &a.Type, &a.Severity, &a.Title, &a.Details,
		&a.CreatedAt, &a.IsResolved, &a.ResolvedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
