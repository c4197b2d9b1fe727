// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// codeはAPIレスポンスのエラーコード、categoryはHTTPステータス判定に使う分類。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, membership, verification, admin, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAgencyNotFound      = "AGENCY_NOT_FOUND"
	ErrCodeEscortNotFound      = "ESCORT_NOT_FOUND"
	ErrCodeEscortDataMissing   = "ESCORT_DATA_MISSING"
	ErrCodeMembershipPending   = "MEMBERSHIP_PENDING"
	ErrCodeMembershipActive    = "MEMBERSHIP_ACTIVE"
	ErrCodeMembershipNotFound  = "MEMBERSHIP_NOT_FOUND"
	ErrCodeNoActiveMembership  = "NO_ACTIVE_MEMBERSHIP"
	ErrCodeInvitationExists    = "INVITATION_EXISTS"
	ErrCodeInvitationNotFound  = "INVITATION_NOT_FOUND"
	ErrCodeEscortAlreadyMember = "ESCORT_ALREADY_MEMBER"
	ErrCodeInvalidAction       = "INVALID_ACTION"
	ErrCodeVerificationDenied  = "VERIFICATION_NOT_ALLOWED"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeUserBanned          = "USER_BANNED"
	ErrCodeForbiddenUserType   = "FORBIDDEN_USER_TYPE"
	ErrCodeProfileExists       = "PROFILE_EXISTS"
	ErrCodeReportNotFound      = "REPORT_NOT_FOUND"
)

// NewAgencyNotFoundError はエージェンシー未検出エラーを生成する。
// 存在しない場合だけでなく、非アクティブ・BAN済みのエージェンシーも対象。
func NewAgencyNotFoundError(agencyID string) *APIError {
	return &APIError{
		Code:     ErrCodeAgencyNotFound,
		Message:  fmt.Sprintf("指定されたエージェンシーが見つかりません: %s", agencyID),
		Category: "membership",
	}
}

// NewEscortNotFoundError はエスコート未検出エラーを生成する。
func NewEscortNotFoundError(escortID string) *APIError {
	return &APIError{
		Code:     ErrCodeEscortNotFound,
		Message:  fmt.Sprintf("指定されたエスコートが見つかりません: %s", escortID),
		Category: "membership",
	}
}

// NewEscortDataMissingError は呼び出し元にエスコートプロフィールが無い場合のエラーを生成する。
// 認証済みユーザーのプロフィール欠損はデータ不整合のためシステムエラー扱い。
func NewEscortDataMissingError() *APIError {
	return &APIError{
		Code:     ErrCodeEscortDataMissing,
		Message:  "エスコートプロフィールが見つかりません。",
		Category: "system",
	}
}

// NewMembershipPendingError は承認待ちメンバーシップが既に存在する場合のエラーを生成する。
func NewMembershipPendingError() *APIError {
	return &APIError{
		Code:     ErrCodeMembershipPending,
		Message:  "このエージェンシーへの申請は既に承認待ちです。",
		Category: "membership",
	}
}

// NewMembershipActiveError は既に所属中の場合のエラーを生成する。
func NewMembershipActiveError() *APIError {
	return &APIError{
		Code:     ErrCodeMembershipActive,
		Message:  "既にこのエージェンシーに所属しています。",
		Category: "membership",
	}
}

// NewMembershipNotFoundError はメンバーシップ未検出エラーを生成する。
// 他エージェンシーの行やPENDING以外の行もNOT_FOUNDとして扱う。
func NewMembershipNotFoundError(membershipID string) *APIError {
	return &APIError{
		Code:     ErrCodeMembershipNotFound,
		Message:  fmt.Sprintf("指定されたメンバーシップが見つかりません: %s", membershipID),
		Category: "membership",
	}
}

// NewNoActiveMembershipError は所属中のエージェンシーが無い場合のエラーを生成する。
func NewNoActiveMembershipError() *APIError {
	return &APIError{
		Code:     ErrCodeNoActiveMembership,
		Message:  "所属中のエージェンシーがありません。",
		Category: "membership",
	}
}

// NewInvitationExistsError は有効な勧誘が既に存在する場合のエラーを生成する。
func NewInvitationExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvitationExists,
		Message:  "このエスコートへの勧誘は既に送信済みです。",
		Category: "membership",
	}
}

// NewInvitationNotFoundError は勧誘未検出エラーを生成する。
// 失効した勧誘もNOT_FOUNDとして扱う。
func NewInvitationNotFoundError(invitationID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvitationNotFound,
		Message:  fmt.Sprintf("指定された勧誘が見つかりません: %s", invitationID),
		Category: "membership",
	}
}

// NewEscortAlreadyMemberError はエスコートが既に申請中または所属中の場合のエラーを生成する。
func NewEscortAlreadyMemberError() *APIError {
	return &APIError{
		Code:     ErrCodeEscortAlreadyMember,
		Message:  "このエスコートは既に申請中または所属中です。",
		Category: "membership",
	}
}

// NewInvalidActionError は無効なアクションエラーを生成する。
func NewInvalidActionError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAction,
		Message:  fmt.Sprintf("無効なアクションです: %s", action),
		Category: "validation",
	}
}

// NewVerificationDeniedError は認証が許可されない場合のエラーを生成する。
func NewVerificationDeniedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeVerificationDenied,
		Message:  fmt.Sprintf("エスコート認証を実行できません: %s", reason),
		Category: "verification",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
	}
}

// NewUserBannedError はBAN済みユーザーの操作を拒否するエラーを生成する。
func NewUserBannedError() *APIError {
	return &APIError{
		Code:     ErrCodeUserBanned,
		Message:  "このアカウントは利用停止中です。",
		Category: "auth",
	}
}

// NewForbiddenUserTypeError はユーザー種別が操作の要件を満たさない場合のエラーを生成する。
func NewForbiddenUserTypeError(required UserType) *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenUserType,
		Message:  fmt.Sprintf("この操作には%sユーザーの権限が必要です。", required),
		Category: "auth",
	}
}

// NewProfileExistsError はプロフィールが既に存在する場合のエラーを生成する。
func NewProfileExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileExists,
		Message:  "プロフィールは既に作成されています。",
		Category: "validation",
	}
}

// NewReportNotFoundError は通報未検出エラーを生成する。
func NewReportNotFoundError(reportID string) *APIError {
	return &APIError{
		Code:     ErrCodeReportNotFound,
		Message:  fmt.Sprintf("指定された通報が見つかりません: %s", reportID),
		Category: "admin",
	}
}
