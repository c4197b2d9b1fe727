package model

import "time"

// Agency はエージェンシープロフィールを表す。Userと1:1で紐付く。
// 各カウンターは集計で再計算せず、状態遷移時にインクリメンタルに維持される。
// カウンターの更新は必ず状態遷移と同一トランザクション内で行うこと。
type Agency struct {
	ID          string
	UserID      string
	Name        string
	Location    string
	Website     string
	Description string

	IsVerified bool
	IsActive   bool

	TotalEscorts       int
	ActiveEscorts      int
	VerifiedEscorts    int
	TotalVerifications int

	CreatedAt time.Time
	UpdatedAt time.Time
}
