package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// PostgresInvitationRepo はPostgreSQLを使用した勧誘リポジトリ。
type PostgresInvitationRepo struct {
	db *sql.DB
}

// NewPostgresInvitationRepo はPostgresInvitationRepoを生成する。
func NewPostgresInvitationRepo(db *sql.DB) *PostgresInvitationRepo {
	return &PostgresInvitationRepo{db: db}
}

const invitationColumns = `id, agency_id, escort_id, status, message, proposed_commission,
	proposed_role, proposed_benefits, expires_at, invited_by, responded_at, created_at, updated_at`

func scanInvitation(scan func(dest ...any) error) (*model.AgencyInvitation, error) {
	inv := &model.AgencyInvitation{}
	err := scan(
		&inv.ID, &inv.AgencyID, &inv.EscortID, &inv.Status, &inv.Message, &inv.ProposedCommission,
		&inv.ProposedRole, &inv.ProposedBenefits, &inv.ExpiresAt, &inv.InvitedBy, &inv.RespondedAt,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// FindByID は指定IDの勧誘を取得する。見つからない場合はnilを返す。
func (r *PostgresInvitationRepo) FindByID(ctx context.Context, id string) (*model.AgencyInvitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM agency_invitations WHERE id = $1`,
		id,
	)
	inv, err := scanInvitation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find invitation by ID: %w", err)
	}
	return inv, nil
}

// FindPendingByAgencyAndEscort は(agency, escort)の組のPENDINGかつ
// 未失効の勧誘を検索する。見つからない場合はnilを返す。
func (r *PostgresInvitationRepo) FindPendingByAgencyAndEscort(ctx context.Context, agencyID, escortID string, now time.Time) (*model.AgencyInvitation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM agency_invitations
		 WHERE agency_id = $1 AND escort_id = $2 AND status = 'PENDING' AND expires_at > $3
		 ORDER BY created_at DESC LIMIT 1`,
		agencyID, escortID, now,
	)
	inv, err := scanInvitation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending invitation: %w", err)
	}
	return inv, nil
}

// Create は勧誘を作成する。
func (r *PostgresInvitationRepo) Create(ctx context.Context, inv *model.AgencyInvitation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO agency_invitations (id, agency_id, escort_id, status, message, proposed_commission, proposed_role, proposed_benefits, expires_at, invited_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.AgencyID, inv.EscortID, inv.Status, inv.Message, inv.ProposedCommission,
		inv.ProposedRole, inv.ProposedBenefits, inv.ExpiresAt, inv.InvitedBy, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %w", err)
	}
	return nil
}

// MarkRejected は勧誘をREJECTEDにし、responded_atを記録する。
func (r *PostgresInvitationRepo) MarkRejected(ctx context.Context, id string, respondedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE agency_invitations
		 SET status = 'REJECTED', responded_at = $1, updated_at = now()
		 WHERE id = $2 AND status = 'PENDING'`,
		respondedAt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark invitation rejected: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("invitation not in PENDING state: %s", id)
	}
	return nil
}

// ListByEscort はエスコートが受信した勧誘一覧を返す。
func (r *PostgresInvitationRepo) ListByEscort(ctx context.Context, escortID string, status model.InvitationStatus) ([]*model.AgencyInvitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM agency_invitations WHERE escort_id = $1`
	args := []any{escortID}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	invitations := []*model.AgencyInvitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}

	return invitations, nil
}

// DeleteExpiredBefore は指定時刻より前に失効したPENDING勧誘を削除し、件数を返す。
func (r *PostgresInvitationRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM agency_invitations WHERE status = 'PENDING' AND expires_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// compile-time interface check
var _ InvitationRepository = (*PostgresInvitationRepo)(nil)
