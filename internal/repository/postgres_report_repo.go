package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// PostgresReportRepo はPostgreSQLを使用した通報リポジトリ。
type PostgresReportRepo struct {
	db *sql.DB
}

// NewPostgresReportRepo はPostgresReportRepoを生成する。
func NewPostgresReportRepo(db *sql.DB) *PostgresReportRepo {
	return &PostgresReportRepo{db: db}
}

const reportColumns = `id, reporter_id, target_user_id, reason, details, status,
	resolution, resolved_by, resolved_at, created_at`

func scanReport(scan func(dest ...any) error) (*model.Report, error) {
	report := &model.Report{}
	err := scan(
		&report.ID, &report.ReporterID, &report.TargetUserID, &report.Reason, &report.Details,
		&report.Status, &report.Resolution, &report.ResolvedBy, &report.ResolvedAt, &report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Create は通報を作成する。
func (r *PostgresReportRepo) Create(ctx context.Context, report *model.Report) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reports (id, reporter_id, target_user_id, reason, details, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		report.ID, report.ReporterID, report.TargetUserID, report.Reason, report.Details,
		report.Status, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// FindByID は指定IDの通報を取得する。見つからない場合はnilを返す。
func (r *PostgresReportRepo) FindByID(ctx context.Context, id string) (*model.Report, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`,
		id,
	)
	report, err := scanReport(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report by ID: %w", err)
	}
	return report, nil
}

// List は通報一覧を新しい順で返す。statusが空の場合は全状態を対象とする。
func (r *PostgresReportRepo) List(ctx context.Context, status model.ReportStatus, limit, offset int) ([]*model.Report, int, error) {
	where := ""
	countArgs := []any{}
	if status != "" {
		where = " WHERE status = $1"
		countArgs = append(countArgs, status)
	}

	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`+where, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	args := append([]any{}, countArgs...)
	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s FROM reports%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		reportColumns, where, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := []*model.Report{}
	for rows.Next() {
		report, err := scanReport(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate reports: %w", err)
	}

	return reports, total, nil
}

// Resolve はOPEN状態の通報を解決済みまたは却下にする。
// 対象行がOPENでない場合はnilを返す（更新なし）。
func (r *PostgresReportRepo) Resolve(ctx context.Context, id string, status model.ReportStatus, resolution, resolvedBy string) (*model.Report, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE reports
		 SET status = $1, resolution = $2, resolved_by = $3, resolved_at = now()
		 WHERE id = $4 AND status = 'OPEN'
		 RETURNING `+reportColumns,
		status, resolution, resolvedBy, id,
	)
	report, err := scanReport(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report: %w", err)
	}
	return report, nil
}

// compile-time interface check
var _ ReportRepository = (*PostgresReportRepo)(nil)
