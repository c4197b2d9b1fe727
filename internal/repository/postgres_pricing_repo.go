package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// PostgresPricingRepo はPostgreSQLを使用した認証料金プランリポジトリ。
type PostgresPricingRepo struct {
	db *sql.DB
}

// NewPostgresPricingRepo はPostgresPricingRepoを生成する。
func NewPostgresPricingRepo(db *sql.DB) *PostgresPricingRepo {
	return &PostgresPricingRepo{db: db}
}

// ListActive は有効な料金プラン一覧をコスト昇順で返す。
// テーブルが空の場合は空スライスを返す。
func (r *PostgresPricingRepo) ListActive(ctx context.Context) ([]*model.VerificationPricing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, cost, duration_days, features, is_active
		 FROM verification_pricing WHERE is_active = TRUE ORDER BY cost ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing: %w", err)
	}
	defer rows.Close()

	pricings := []*model.VerificationPricing{}
	for rows.Next() {
		p := &model.VerificationPricing{}
		err := rows.Scan(&p.ID, &p.Name, &p.Cost, &p.DurationDays, pq.Array(&p.Features), &p.IsActive)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing: %w", err)
		}
		pricings = append(pricings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pricing: %w", err)
	}

	return pricings, nil
}

// FindByID は指定IDの料金プランを取得する。見つからない場合はnilを返す。
func (r *PostgresPricingRepo) FindByID(ctx context.Context, id string) (*model.VerificationPricing, error) {
	p := &model.VerificationPricing{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, cost, duration_days, features, is_active
		 FROM verification_pricing WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.Cost, &p.DurationDays, pq.Array(&p.Features), &p.IsActive)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pricing by ID: %w", err)
	}

	return p, nil
}

// compile-time interface check
var _ PricingRepository = (*PostgresPricingRepo)(nil)
