package model

import "time"

// VerificationStatus はエスコート認証イベントの状態を表す。
type VerificationStatus string

const (
	// VerificationStatusCompleted は完了した認証イベント。
	// 認証は作成時点で完了扱いとなる。
	VerificationStatusCompleted VerificationStatus = "COMPLETED"
)

// DefaultVerificationDays はプライシング未指定時の認証有効日数。
const DefaultVerificationDays = 30

// RenewalWindowDays は更新が許可される失効前の日数。
// 失効済み、または失効までこの日数以内の認証は更新可能。
const RenewalWindowDays = 7

// EscortVerification はエスコート認証（初回・更新）のイベントを表す。
// 認証・更新ごとに1行が追記され、履歴として保持される（追記専用）。
// expiresAt = completedAt + pricing.durationDays。
type EscortVerification struct {
	ID                string
	AgencyID          string
	EscortID          string
	PricingID         string
	Status            VerificationStatus
	StartsAt          time.Time
	ExpiresAt         time.Time
	VerifiedBy        string
	CompletedAt       time.Time
	VerificationNotes string
	CreatedAt         time.Time
}

// VerificationPricing はエスコート認証の料金プランを表す。
// テーブルが空の場合はハードコードされた3プランにフォールバックする。
type VerificationPricing struct {
	ID           string
	Name         string
	Cost         int
	DurationDays int
	Features     []string
	IsActive     bool
}
