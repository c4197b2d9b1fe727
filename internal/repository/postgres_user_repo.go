package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, user_type, is_banned, ban_reason, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.UserType, &user.IsBanned, &user.BanReason, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
func (r *PostgresUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ユーザーを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, name, user_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Name, user.UserType, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	// identityを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO identities (id, user_id, provider, provider_user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		identity.ID, identity.UserID, identity.Provider, identity.ProviderUserID, identity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert identity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateUserType はユーザー種別を更新する。
func (r *PostgresUserRepo) UpdateUserType(ctx context.Context, id string, userType model.UserType) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET user_type = $1, updated_at = now() WHERE id = $2`,
		userType, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update user type: %w", err)
	}
	return nil
}

// SetBan はユーザーのBAN状態と理由を更新する。
func (r *PostgresUserRepo) SetBan(ctx context.Context, id string, banned bool, reason string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_banned = $1, ban_reason = $2, updated_at = now() WHERE id = $3`,
		banned, reason, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update ban status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// CountByType はユーザー種別ごとの件数を返す。
func (r *PostgresUserRepo) CountByType(ctx context.Context) (map[model.UserType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_type, COUNT(*) FROM users GROUP BY user_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.UserType]int)
	for rows.Next() {
		var userType model.UserType
		var count int
		if err := rows.Scan(&userType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan user count: %w", err)
		}
		counts[userType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user counts: %w", err)
	}

	return counts, nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 関連するidentities、sessions、プロフィールはCASCADE削除される。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
