package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresReputationRepo はPostgreSQLを使用したエージェンシー評価リポジトリ。
type PostgresReputationRepo struct {
	db *sql.DB
}

// NewPostgresReputationRepo はPostgresReputationRepoを生成する。
func NewPostgresReputationRepo(db *sql.DB) *PostgresReputationRepo {
	return &PostgresReputationRepo{db: db}
}

// Bump はエージェンシーの評価スコアをdeltaだけ加算する（行が無ければ作成）。
func (r *PostgresReputationRepo) Bump(ctx context.Context, agencyID string, delta float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO agency_reputation (agency_id, score, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (agency_id)
		 DO UPDATE SET score = agency_reputation.score + EXCLUDED.score, updated_at = now()`,
		agencyID, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to bump reputation: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ReputationRepository = (*PostgresReputationRepo)(nil)
