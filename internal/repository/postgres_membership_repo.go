package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// PostgresMembershipRepo はPostgreSQLを使用したメンバーシップリポジトリ。
// カウンターを伴う状態遷移はすべて単一トランザクション内で行う。
type PostgresMembershipRepo struct {
	db *sql.DB
}

// NewPostgresMembershipRepo はPostgresMembershipRepoを生成する。
func NewPostgresMembershipRepo(db *sql.DB) *PostgresMembershipRepo {
	return &PostgresMembershipRepo{db: db}
}

const membershipColumns = `id, escort_id, agency_id, status, role, commission_rate, message,
	approved_by, approved_at, created_at, updated_at`

func scanMembership(scan func(dest ...any) error) (*model.AgencyMembership, error) {
	m := &model.AgencyMembership{}
	err := scan(
		&m.ID, &m.EscortID, &m.AgencyID, &m.Status, &m.Role, &m.CommissionRate, &m.Message,
		&m.ApprovedBy, &m.ApprovedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// FindByID は指定IDのメンバーシップを取得する。見つからない場合はnilを返す。
func (r *PostgresMembershipRepo) FindByID(ctx context.Context, id string) (*model.AgencyMembership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM agency_memberships WHERE id = $1`,
		id,
	)
	m, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership by ID: %w", err)
	}
	return m, nil
}

// FindByEscortAndAgency は(escort, agency)の組のメンバーシップ行を取得する。
// 見つからない場合はnilを返す。
func (r *PostgresMembershipRepo) FindByEscortAndAgency(ctx context.Context, escortID, agencyID string) (*model.AgencyMembership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM agency_memberships WHERE escort_id = $1 AND agency_id = $2`,
		escortID, agencyID,
	)
	m, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership by escort and agency: %w", err)
	}
	return m, nil
}

// FindActiveByEscort はエスコートのACTIVEメンバーシップを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresMembershipRepo) FindActiveByEscort(ctx context.Context, escortID string) (*model.AgencyMembership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM agency_memberships WHERE escort_id = $1 AND status = 'ACTIVE'`,
		escortID,
	)
	m, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active membership: %w", err)
	}
	return m, nil
}

// Create はメンバーシップ行を作成する。
func (r *PostgresMembershipRepo) Create(ctx context.Context, m *model.AgencyMembership) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO agency_memberships (id, escort_id, agency_id, status, role, commission_rate, message, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.EscortID, m.AgencyID, m.Status, m.Role, m.CommissionRate, m.Message, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

// Resurrect はREJECTED行をPENDINGに戻す（再申請時の行再利用）。
// 対象行がREJECTEDでない場合はnilを返す（更新なし）。
func (r *PostgresMembershipRepo) Resurrect(ctx context.Context, id, message string) (*model.AgencyMembership, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE agency_memberships
		 SET status = 'PENDING', message = $1, approved_by = NULL, approved_at = NULL, updated_at = now()
		 WHERE id = $2 AND status = 'REJECTED'
		 RETURNING `+membershipColumns,
		message, id,
	)
	m, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resurrect membership: %w", err)
	}
	return m, nil
}

// Approve はPENDINGメンバーシップをACTIVEにし、同一トランザクションで
// エージェンシーのtotal_escorts/active_escortsをインクリメントする。
// 対象行がPENDINGでない場合はnilを返す（更新なし）。
func (r *PostgresMembershipRepo) Approve(ctx context.Context, id, approvedBy string, commissionRate float64, role string) (*model.AgencyMembership, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// PENDING以外からの遷移を防ぐため、状態の前提条件をWHERE句で検査する
	row := tx.QueryRowContext(ctx,
		`UPDATE agency_memberships
		 SET status = 'ACTIVE', role = $1, commission_rate = $2, approved_by = $3, approved_at = now(), updated_at = now()
		 WHERE id = $4 AND status = 'PENDING'
		 RETURNING `+membershipColumns,
		role, commissionRate, approvedBy, id,
	)
	m, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve membership: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE agencies
		 SET total_escorts = total_escorts + 1, active_escorts = active_escorts + 1, updated_at = now()
		 WHERE id = $1`,
		m.AgencyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment agency counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return m, nil
}

// Reject はPENDINGメンバーシップをREJECTEDにする。
// 対象行がPENDINGでない場合はnilを返す（更新なし）。
func (r *PostgresMembershipRepo) Reject(ctx context.Context, id string) (*model.AgencyMembership, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE agency_memberships
		 SET status = 'REJECTED', updated_at = now()
		 WHERE id = $1 AND status = 'PENDING'
		 RETURNING `+membershipColumns,
		id,
	)
	m, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject membership: %w", err)
	}
	return m, nil
}

// CreateActiveFromInvitation は勧誘承諾時の一連の更新を同一トランザクションで行う。
// (escort, agency)ペアにはUNIQUE制約があるため、過去に拒否・脱退したペアの
// REJECTED行は新しい行を作らずACTIVEに更新する（重複排除ポリシー）。
// 既存行がREJECTED以外の場合はnilを返す（更新なし）。
func (r *PostgresMembershipRepo) CreateActiveFromInvitation(ctx context.Context, m *model.AgencyMembership, invitationID string, respondedAt time.Time) (*model.AgencyMembership, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`INSERT INTO agency_memberships (id, escort_id, agency_id, status, role, commission_rate, message, approved_by, approved_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (escort_id, agency_id) DO UPDATE
		 SET status = EXCLUDED.status, role = EXCLUDED.role, commission_rate = EXCLUDED.commission_rate,
		     approved_by = EXCLUDED.approved_by, approved_at = EXCLUDED.approved_at, updated_at = EXCLUDED.updated_at
		 WHERE agency_memberships.status = 'REJECTED'
		 RETURNING `+membershipColumns,
		m.ID, m.EscortID, m.AgencyID, m.Status, m.Role, m.CommissionRate, m.Message,
		m.ApprovedBy, m.ApprovedAt, m.CreatedAt, m.UpdatedAt,
	)
	created, err := scanMembership(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert membership: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE agencies
		 SET total_escorts = total_escorts + 1, active_escorts = active_escorts + 1, updated_at = now()
		 WHERE id = $1`,
		created.AgencyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment agency counters: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE agency_invitations
		 SET status = 'ACCEPTED', responded_at = $1, updated_at = now()
		 WHERE id = $2 AND status = 'PENDING'`,
		respondedAt, invitationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark invitation accepted: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("invitation not in PENDING state: %s", invitationID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// Leave は脱退時の一連の更新を同一トランザクションで行う。
// エージェンシーカウンターのデクリメントはエスコートの認証状態に
// 関わらず無条件に行う。
func (r *PostgresMembershipRepo) Leave(ctx context.Context, membershipID, escortID, agencyID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE agency_memberships
		 SET status = 'REJECTED', updated_at = now()
		 WHERE id = $1 AND status = 'ACTIVE'`,
		membershipID,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("membership not in ACTIVE state: %s", membershipID)
	}

	// 脱退時は認証ステータスを全て剥奪する
	_, err = tx.ExecContext(ctx,
		`UPDATE escorts
		 SET is_verified = FALSE, verified_at = NULL, verified_by = NULL, verification_expires_at = NULL, updated_at = now()
		 WHERE id = $1`,
		escortID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear escort verification: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE agencies
		 SET active_escorts = active_escorts - 1, verified_escorts = verified_escorts - 1, updated_at = now()
		 WHERE id = $1`,
		agencyID,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement agency counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByAgency はエージェンシーのメンバーシップ一覧をエスコート情報付きで返す。
func (r *PostgresMembershipRepo) ListByAgency(ctx context.Context, agencyID string, status model.MembershipStatus, search string) ([]MembershipWithEscort, error) {
	query := `SELECT m.id, m.escort_id, m.agency_id, m.status, m.role, m.commission_rate, m.message,
		m.approved_by, m.approved_at, m.created_at, m.updated_at,
		e.user_id, e.display_name, e.location, e.is_verified
		FROM agency_memberships m
		JOIN escorts e ON e.id = m.escort_id
		WHERE m.agency_id = $1`
	args := []any{agencyID}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND m.status = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND e.display_name ILIKE $%d", len(args))
	}
	query += " ORDER BY m.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	memberships := []MembershipWithEscort{}
	for rows.Next() {
		var mw MembershipWithEscort
		err := rows.Scan(
			&mw.ID, &mw.EscortID, &mw.AgencyID, &mw.Status, &mw.Role, &mw.CommissionRate, &mw.Message,
			&mw.ApprovedBy, &mw.ApprovedAt, &mw.CreatedAt, &mw.UpdatedAt,
			&mw.EscortUserID, &mw.EscortDisplayName, &mw.EscortLocation, &mw.EscortIsVerified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, mw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return memberships, nil
}

// CountByStatus は状態ごとのメンバーシップ件数を返す。
func (r *PostgresMembershipRepo) CountByStatus(ctx context.Context) (map[model.MembershipStatus]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM agency_memberships GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count memberships by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.MembershipStatus]int)
	for rows.Next() {
		var status model.MembershipStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan membership count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate membership counts: %w", err)
	}

	return counts, nil
}

// compile-time interface check
var _ MembershipRepository = (*PostgresMembershipRepo)(nil)
