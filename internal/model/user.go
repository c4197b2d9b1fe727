// Package model はドメインモデルを定義する。
package model

import "time"

// UserType はユーザーの種別を表す。
type UserType string

const (
	// UserTypeClient は一般クライアントユーザー。
	UserTypeClient UserType = "CLIENT"
	// UserTypeEscort はエスコートプロフィールを持つユーザー。
	UserTypeEscort UserType = "ESCORT"
	// UserTypeAgency はエージェンシープロフィールを持つユーザー。
	UserTypeAgency UserType = "AGENCY"
	// UserTypeAdmin は管理者ユーザー。
	UserTypeAdmin UserType = "ADMIN"
)

// User はサービス利用ユーザーを表す。
type User struct {
	ID        string
	Email     string
	Name      string
	UserType  UserType
	IsBanned  bool
	BanReason string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// 将来的に複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
