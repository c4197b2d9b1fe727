package model

import "time"

// InvitationStatus はエージェンシーからの勧誘の状態を表す。
type InvitationStatus string

const (
	// InvitationStatusPending は応答待ちの状態。
	InvitationStatusPending InvitationStatus = "PENDING"
	// InvitationStatusAccepted は承諾済みの状態。
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
	// InvitationStatusRejected は辞退済みの状態。
	InvitationStatusRejected InvitationStatus = "REJECTED"
)

// InvitationValidityDays は勧誘の有効日数。
const InvitationValidityDays = 7

// AgencyInvitation はエージェンシーからエスコートへの勧誘を表す。
// メンバーシップ行とは独立に作成され、承諾時に新しいACTIVEメンバーシップが作られる。
// 不変条件: (agency, escort)の組につきPENDINGかつ未失効の勧誘は最大1件。
type AgencyInvitation struct {
	ID                 string
	AgencyID           string
	EscortID           string
	Status             InvitationStatus
	Message            string
	ProposedCommission float64
	ProposedRole       string
	ProposedBenefits   string
	ExpiresAt          time.Time
	InvitedBy          string
	RespondedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsExpired は勧誘が指定時刻時点で失効しているかを返す。
// 失効した勧誘は応答時にINVITATION_NOT_FOUNDとして扱われる。
func (i *AgencyInvitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
