// Package policy はメンバーシップと認証に関する純粋な判定ロジックを提供する。
// データベースや時計に依存せず、呼び出し元が現在時刻と状態を渡す。
package policy

import (
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// VerificationDecision はエスコート認証可否の判定結果を表す。
type VerificationDecision struct {
	// Allowed は認証を実行してよいかを示す。
	Allowed bool
	// IsRenewal は許可された認証が更新（2回目以降）かを示す。
	IsRenewal bool
	// Reason は拒否時の理由。許可時は空。
	Reason string
}

// 拒否理由。
const (
	// ReasonNotMember はエスコートがこのエージェンシーのACTIVEメンバーでない。
	ReasonNotMember = "escort is not an active member of this agency"
	// ReasonAlreadyVerified は認証済みかつ更新ウィンドウ外。
	ReasonAlreadyVerified = "escort is already verified and not within the renewal window"
)

// IsAgencyMember はメンバーシップが指定エージェンシーのACTIVEメンバーシップかを返す。
func IsAgencyMember(m *model.AgencyMembership, agencyID string) bool {
	return m != nil && m.AgencyID == agencyID && m.Status == model.MembershipStatusActive
}

// NeedsRenewal は認証済みエスコートが更新可能な状態かを返す。
// 失効済み、または失効までRenewalWindowDays以内の場合に更新可能。
// 未認証のエスコートに対してはfalseを返す。
func NeedsRenewal(escort *model.Escort, now time.Time) bool {
	if !escort.IsVerified || escort.VerificationExpiresAt == nil {
		return false
	}
	window := escort.VerificationExpiresAt.AddDate(0, 0, -model.RenewalWindowDays)
	return !now.Before(window)
}

// CanVerifyEscort はエージェンシーがエスコートを認証（初回または更新）できるかを判定する。
// membershipはエスコートのACTIVEメンバーシップ（存在しない場合はnil）。
//
// 判定順序:
//  1. このエージェンシーのACTIVEメンバーでなければ拒否。
//  2. 認証済みかつ更新ウィンドウ外であれば拒否。
//  3. 認証済みかつ更新ウィンドウ内であれば更新として許可。
//  4. 未認証であれば初回認証として許可。
func CanVerifyEscort(escort *model.Escort, membership *model.AgencyMembership, agencyID string, now time.Time) VerificationDecision {
	if !IsAgencyMember(membership, agencyID) {
		return VerificationDecision{Allowed: false, Reason: ReasonNotMember}
	}

	if escort.IsVerified {
		if !NeedsRenewal(escort, now) {
			return VerificationDecision{Allowed: false, Reason: ReasonAlreadyVerified}
		}
		return VerificationDecision{Allowed: true, IsRenewal: true}
	}

	return VerificationDecision{Allowed: true, IsRenewal: false}
}

// ClampCommission は手数料率を[0, 1]の範囲に収める。
// 負数は0、1超は1に丸め、ゼロ値はデフォルトの手数料率に置き換える。
func ClampCommission(rate float64) float64 {
	if rate == 0 {
		return model.DefaultCommissionRate
	}
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
