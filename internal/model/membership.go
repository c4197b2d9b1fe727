package model

import "time"

// MembershipStatus はエスコートとエージェンシーの関係の状態を表す。
type MembershipStatus string

const (
	// MembershipStatusPending は承認待ちの状態。
	MembershipStatusPending MembershipStatus = "PENDING"
	// MembershipStatusActive は所属中の状態。
	MembershipStatusActive MembershipStatus = "ACTIVE"
	// MembershipStatusRejected は拒否または脱退済みの状態。
	// エージェンシーによる拒否とエスコート自身の脱退の両方で同じ値を使う。
	// 再申請時は同じ行がPENDINGに戻る（(escort, agency)ペアごとに1行の重複排除ポリシー）。
	MembershipStatusRejected MembershipStatus = "REJECTED"
)

// MembershipRoleMember は承認時に付与されるデフォルトのロール。
const MembershipRoleMember = "MEMBER"

// DefaultCommissionRate は手数料率が未指定の場合のデフォルト値。
const DefaultCommissionRate = 0.15

// AgencyMembership はエスコートとエージェンシーの関係を表す。
// (escortId, agencyId)の組につき最大1行。REJECTED行は再申請で再利用される。
type AgencyMembership struct {
	ID             string
	EscortID       string
	AgencyID       string
	Status         MembershipStatus
	Role           string
	CommissionRate float64
	Message        string
	ApprovedBy     *string
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
