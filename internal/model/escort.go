package model

import "time"

// Escort はエスコートプロフィールを表す。Userと1:1で紐付く。
// 認証（verification）関連フィールドはエージェンシーメンバーシップサービスのみが更新する。
type Escort struct {
	ID          string
	UserID      string
	DisplayName string
	Location    string
	Bio         string

	IsVerified            bool
	VerifiedAt            *time.Time
	VerifiedBy            *string
	VerificationExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
