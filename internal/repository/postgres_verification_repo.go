package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// PostgresVerificationRepo はPostgreSQLを使用した認証イベントリポジトリ。
type PostgresVerificationRepo struct {
	db *sql.DB
}

// NewPostgresVerificationRepo はPostgresVerificationRepoを生成する。
func NewPostgresVerificationRepo(db *sql.DB) *PostgresVerificationRepo {
	return &PostgresVerificationRepo{db: db}
}

const verificationColumns = `id, agency_id, escort_id, pricing_id, status, starts_at, expires_at,
	verified_by, completed_at, verification_notes, created_at`

func scanVerification(scan func(dest ...any) error) (*model.EscortVerification, error) {
	v := &model.EscortVerification{}
	err := scan(
		&v.ID, &v.AgencyID, &v.EscortID, &v.PricingID, &v.Status, &v.StartsAt, &v.ExpiresAt,
		&v.VerifiedBy, &v.CompletedAt, &v.VerificationNotes, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// CreateWithEscortUpdate は認証イベントの作成と、エスコートの認証フィールド更新、
// エージェンシーカウンター更新を同一トランザクションで行う。
// total_verificationsは常に、verified_escortsは初回認証時のみインクリメントする。
func (r *PostgresVerificationRepo) CreateWithEscortUpdate(ctx context.Context, v *model.EscortVerification, isRenewal bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO escort_verifications (id, agency_id, escort_id, pricing_id, status, starts_at, expires_at, verified_by, completed_at, verification_notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.AgencyID, v.EscortID, v.PricingID, v.Status, v.StartsAt, v.ExpiresAt,
		v.VerifiedBy, v.CompletedAt, v.VerificationNotes, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert verification: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE escorts
		 SET is_verified = TRUE, verified_at = $1, verified_by = $2, verification_expires_at = $3, updated_at = now()
		 WHERE id = $4`,
		v.CompletedAt, v.VerifiedBy, v.ExpiresAt, v.EscortID,
	)
	if err != nil {
		return fmt.Errorf("failed to update escort verification fields: %w", err)
	}

	counterUpdate := `UPDATE agencies SET total_verifications = total_verifications + 1, updated_at = now() WHERE id = $1`
	if !isRenewal {
		counterUpdate = `UPDATE agencies SET total_verifications = total_verifications + 1, verified_escorts = verified_escorts + 1, updated_at = now() WHERE id = $1`
	}
	_, err = tx.ExecContext(ctx, counterUpdate, v.AgencyID)
	if err != nil {
		return fmt.Errorf("failed to increment agency counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindLatestByEscort はエスコートの最新の認証イベントを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresVerificationRepo) FindLatestByEscort(ctx context.Context, escortID string) (*model.EscortVerification, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+verificationColumns+` FROM escort_verifications
		 WHERE escort_id = $1 ORDER BY completed_at DESC LIMIT 1`,
		escortID,
	)
	v, err := scanVerification(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest verification: %w", err)
	}
	return v, nil
}

// ListExpiring はエージェンシーの認証のうちexpires_atがbefore以前のものを
// expires_at昇順で返す。
func (r *PostgresVerificationRepo) ListExpiring(ctx context.Context, agencyID string, before time.Time, limit, offset int) ([]VerificationWithEscort, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM escort_verifications v
		 JOIN escorts e ON e.id = v.escort_id
		 WHERE v.agency_id = $1 AND v.expires_at <= $2 AND e.is_verified = TRUE`,
		agencyID, before,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count expiring verifications: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT v.id, v.agency_id, v.escort_id, v.pricing_id, v.status, v.starts_at, v.expires_at,
		 v.verified_by, v.completed_at, v.verification_notes, v.created_at,
		 e.user_id, e.display_name
		 FROM escort_verifications v
		 JOIN escorts e ON e.id = v.escort_id
		 WHERE v.agency_id = $1 AND v.expires_at <= $2 AND e.is_verified = TRUE
		 ORDER BY v.expires_at ASC LIMIT $3 OFFSET $4`,
		agencyID, before, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expiring verifications: %w", err)
	}
	defer rows.Close()

	verifications := []VerificationWithEscort{}
	for rows.Next() {
		var vw VerificationWithEscort
		err := rows.Scan(
			&vw.ID, &vw.AgencyID, &vw.EscortID, &vw.PricingID, &vw.Status, &vw.StartsAt, &vw.ExpiresAt,
			&vw.VerifiedBy, &vw.CompletedAt, &vw.VerificationNotes, &vw.CreatedAt,
			&vw.EscortUserID, &vw.EscortDisplayName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan verification: %w", err)
		}
		verifications = append(verifications, vw)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate verifications: %w", err)
	}

	return verifications, total, nil
}

// Count は全認証イベント数を返す。
func (r *PostgresVerificationRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM escort_verifications`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count verifications: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ VerificationRepository = (*PostgresVerificationRepo)(nil)
