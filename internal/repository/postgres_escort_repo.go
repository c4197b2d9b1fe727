package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// PostgresEscortRepo はPostgreSQLを使用したエスコートリポジトリ。
type PostgresEscortRepo struct {
	db *sql.DB
}

// NewPostgresEscortRepo はPostgresEscortRepoを生成する。
func NewPostgresEscortRepo(db *sql.DB) *PostgresEscortRepo {
	return &PostgresEscortRepo{db: db}
}

const escortColumns = `id, user_id, display_name, location, bio,
	is_verified, verified_at, verified_by, verification_expires_at, created_at, updated_at`

func scanEscort(row *sql.Row) (*model.Escort, error) {
	escort := &model.Escort{}
	err := row.Scan(
		&escort.ID, &escort.UserID, &escort.DisplayName, &escort.Location, &escort.Bio,
		&escort.IsVerified, &escort.VerifiedAt, &escort.VerifiedBy, &escort.VerificationExpiresAt,
		&escort.CreatedAt, &escort.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return escort, nil
}

// FindByID は指定IDのエスコートを取得する。見つからない場合はnilを返す。
func (r *PostgresEscortRepo) FindByID(ctx context.Context, id string) (*model.Escort, error) {
	escort, err := scanEscort(r.db.QueryRowContext(ctx,
		`SELECT `+escortColumns+` FROM escorts WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find escort by ID: %w", err)
	}
	return escort, nil
}

// FindByUserID はユーザーIDでエスコートを検索する。見つからない場合はnilを返す。
func (r *PostgresEscortRepo) FindByUserID(ctx context.Context, userID string) (*model.Escort, error) {
	escort, err := scanEscort(r.db.QueryRowContext(ctx,
		`SELECT `+escortColumns+` FROM escorts WHERE user_id = $1`,
		userID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to find escort by user ID: %w", err)
	}
	return escort, nil
}

// Create はエスコートプロフィールを作成する。
func (r *PostgresEscortRepo) Create(ctx context.Context, escort *model.Escort) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO escorts (id, user_id, display_name, location, bio, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		escort.ID, escort.UserID, escort.DisplayName, escort.Location, escort.Bio,
		escort.CreatedAt, escort.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert escort: %w", err)
	}
	return nil
}

// Count は全エスコート数を返す。
func (r *PostgresEscortRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM escorts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count escorts: %w", err)
	}
	return count, nil
}

// CountVerified は認証済みエスコート数を返す。
func (r *PostgresEscortRepo) CountVerified(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM escorts WHERE is_verified = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count verified escorts: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ EscortRepository = (*PostgresEscortRepo)(nil)
