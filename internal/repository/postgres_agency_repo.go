package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// PostgresAgencyRepo はPostgreSQLを使用したエージェンシーリポジトリ。
type PostgresAgencyRepo struct {
	db *sql.DB
}

// NewPostgresAgencyRepo はPostgresAgencyRepoを生成する。
func NewPostgresAgencyRepo(db *sql.DB) *PostgresAgencyRepo {
	return &PostgresAgencyRepo{db: db}
}

const agencyColumns = `id, user_id, name, location, website, description,
	is_verified, is_active, total_escorts, active_escorts, verified_escorts, total_verifications,
	created_at, updated_at`

func scanAgencyRow(scan func(dest ...any) error) (*model.Agency, error) {
	agency := &model.Agency{}
	err := scan(
		&agency.ID, &agency.UserID, &agency.Name, &agency.Location, &agency.Website, &agency.Description,
		&agency.IsVerified, &agency.IsActive,
		&agency.TotalEscorts, &agency.ActiveEscorts, &agency.VerifiedEscorts, &agency.TotalVerifications,
		&agency.CreatedAt, &agency.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return agency, nil
}

// FindByID は指定IDのエージェンシーを取得する。見つからない場合はnilを返す。
func (r *PostgresAgencyRepo) FindByID(ctx context.Context, id string) (*model.Agency, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+agencyColumns+` FROM agencies WHERE id = $1`,
		id,
	)
	agency, err := scanAgencyRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find agency by ID: %w", err)
	}
	return agency, nil
}

// FindByUserID はユーザーIDでエージェンシーを検索する。見つからない場合はnilを返す。
func (r *PostgresAgencyRepo) FindByUserID(ctx context.Context, userID string) (*model.Agency, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+agencyColumns+` FROM agencies WHERE user_id = $1`,
		userID,
	)
	agency, err := scanAgencyRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find agency by user ID: %w", err)
	}
	return agency, nil
}

// Create はエージェンシープロフィールを作成する。
func (r *PostgresAgencyRepo) Create(ctx context.Context, agency *model.Agency) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO agencies (id, user_id, name, location, website, description, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		agency.ID, agency.UserID, agency.Name, agency.Location, agency.Website, agency.Description,
		agency.IsActive, agency.CreatedAt, agency.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert agency: %w", err)
	}
	return nil
}

// Search は条件に一致するエージェンシーの一覧と総件数を返す。
// ゼロ値のフィルタは条件に含めず、WHERE句を明示的に組み立てる。
func (r *PostgresAgencyRepo) Search(ctx context.Context, filter AgencySearchFilter) ([]*model.Agency, int, error) {
	conditions := []string{"is_active = TRUE"}
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		p := fmt.Sprintf("$%d", len(args))
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if filter.Verified != nil {
		args = append(args, *filter.Verified)
		conditions = append(conditions, fmt.Sprintf("is_verified = $%d", len(args)))
	}
	if filter.MinEscorts != nil {
		args = append(args, *filter.MinEscorts)
		conditions = append(conditions, fmt.Sprintf("active_escorts >= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM agencies WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count agencies: %w", err)
	}

	orderBy, args := searchOrderBy(filter.SortBy, filter.Query, args)

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(
		`SELECT %s FROM agencies WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		agencyColumns, where, orderBy, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search agencies: %w", err)
	}
	defer rows.Close()

	agencies := []*model.Agency{}
	for rows.Next() {
		agency, err := scanAgencyRow(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan agency: %w", err)
		}
		agencies = append(agencies, agency)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate agencies: %w", err)
	}

	return agencies, total, nil
}

// searchOrderBy はソートキーからORDER BY句を組み立てる。
// relevanceは検索語があるときのみ名前一致を説明文一致より上位に並べ、
// 検索語がない場合はnewestと同じ並び順になる。
func searchOrderBy(sortBy, query string, args []any) (string, []any) {
	switch sortBy {
	case "escorts":
		return "active_escorts DESC, created_at DESC", args
	case "verified":
		return "is_verified DESC, created_at DESC", args
	case "relevance":
		if query != "" {
			args = append(args, "%"+query+"%")
			return fmt.Sprintf("(CASE WHEN name ILIKE $%d THEN 0 ELSE 1 END), created_at DESC", len(args)), args
		}
	}
	return "created_at DESC", args
}

// Count は全エージェンシー数を返す。
func (r *PostgresAgencyRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agencies`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count agencies: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ AgencyRepository = (*PostgresAgencyRepo)(nil)
