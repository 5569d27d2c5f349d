package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/traceops/backend/internal/models"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

func (r *ReportRepo) Create(ctx context.Context, run *models.ReportRun) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO report_runs (id, tenant_id, type, range_from, range_to, created_at, file_name, content_type, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, run.ID, run.TenantID, run.Type, run.From, run.To, run.CreatedAt, run.FileName, run.ContentType, run.Data)
	return err
}

// List returns run metadata newest first. Data is never loaded here.
func (r *ReportRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]models.ReportRun, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM report_runs WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, type, range_from, range_to, created_at, file_name, content_type
		FROM report_runs WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	runs := make([]models.ReportRun, 0)
	for rows.Next() {
		var run models.ReportRun
		if err := rows.Scan(&run.ID, &run.TenantID, &run.Type, &run.From, &run.To, &run.CreatedAt,
			&run.FileName, &run.ContentType); err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (r *ReportRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportRun, error) {
	var run models.ReportRun
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, type, range_from, range_to, created_at, file_name, content_type, data
		FROM report_runs WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(&run.ID, &run.TenantID, &run.Type, &run.From, &run.To, &run.CreatedAt,
		&run.FileName, &run.ContentType, &run.Data)
	if err != nil {
		return nil, notFound(err)
	}
	return &run, nil
}
