// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// UpdateUserType はユーザー種別を更新する。
	UpdateUserType(ctx context.Context, id string, userType model.UserType) error

	// SetBan はユーザーのBAN状態と理由を更新する。
	SetBan(ctx context.Context, id string, banned bool, reason string) error

	// CountByType はユーザー種別ごとの件数を返す。
	CountByType(ctx context.Context) (map[model.UserType]int, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentities、sessions、プロフィールはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// EscortRepository はエスコートプロフィールの永続化インターフェース。
// 認証関連フィールドの更新はVerificationRepository/MembershipRepositoryの
// トランザクションメソッド経由でのみ行う。
type EscortRepository interface {
	// FindByID は指定IDのエスコートを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Escort, error)

	// FindByUserID はユーザーIDでエスコートを検索する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Escort, error)

	// Create はエスコートプロフィールを作成する。
	Create(ctx context.Context, escort *model.Escort) error

	// Count は全エスコート数を返す。
	Count(ctx context.Context) (int, error)

	// CountVerified は認証済みエスコート数を返す。
	CountVerified(ctx context.Context) (int, error)
}

// AgencySearchFilter はエージェンシー検索の条件を表す。
// ゼロ値のフィールドは条件に含めない（明示的なフィルタビルダー）。
type AgencySearchFilter struct {
	Query      string
	Location   string
	Verified   *bool
	MinEscorts *int
	SortBy     string // relevance, newest, escorts, verified
	Limit      int
	Offset     int
}

// AgencyRepository はエージェンシープロフィールの永続化インターフェース。
type AgencyRepository interface {
	// FindByID は指定IDのエージェンシーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Agency, error)

	// FindByUserID はユーザーIDでエージェンシーを検索する。見つからない場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Agency, error)

	// Create はエージェンシープロフィールを作成する。
	Create(ctx context.Context, agency *model.Agency) error

	// Search は条件に一致するエージェンシーの一覧と総件数を返す。
	Search(ctx context.Context, filter AgencySearchFilter) ([]*model.Agency, int, error)

	// Count は全エージェンシー数を返す。
	Count(ctx context.Context) (int, error)
}

// MembershipWithEscort はメンバーシップとエスコート情報を結合した構造体。
type MembershipWithEscort struct {
	model.AgencyMembership
	EscortUserID      string
	EscortDisplayName string
	EscortLocation    string
	EscortIsVerified  bool
}

// MembershipRepository はエスコートとエージェンシーの関係の永続化インターフェース。
// 複数テーブルにまたがる状態遷移（承認・脱退・勧誘承諾）は
// 同一トランザクション内でカウンター更新まで行う。
type MembershipRepository interface {
	// FindByID は指定IDのメンバーシップを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AgencyMembership, error)

	// FindByEscortAndAgency は(escort, agency)の組のメンバーシップ行を取得する。
	// 状態を問わず最大1行。見つからない場合はnilを返す。
	FindByEscortAndAgency(ctx context.Context, escortID, agencyID string) (*model.AgencyMembership, error)

	// FindActiveByEscort はエスコートのACTIVEメンバーシップを取得する。
	// 見つからない場合はnilを返す。
	FindActiveByEscort(ctx context.Context, escortID string) (*model.AgencyMembership, error)

	// Create はメンバーシップ行を作成する。
	Create(ctx context.Context, m *model.AgencyMembership) error

	// Resurrect はREJECTED行をPENDINGに戻す（再申請時の行再利用）。
	// messageを差し替え、approved_by/approved_atをクリアし、updated_atを更新する。
	// 対象行がREJECTEDでない場合はnilを返す（更新なし）。
	Resurrect(ctx context.Context, id, message string) (*model.AgencyMembership, error)

	// Approve はPENDINGメンバーシップをACTIVEにし、同一トランザクションで
	// エージェンシーのtotal_escorts/active_escortsをインクリメントする。
	// 対象行がPENDINGでない場合はnilを返す（更新なし）。
	Approve(ctx context.Context, id, approvedBy string, commissionRate float64, role string) (*model.AgencyMembership, error)

	// Reject はPENDINGメンバーシップをREJECTEDにする。
	// 対象行がPENDINGでない場合はnilを返す（更新なし）。
	Reject(ctx context.Context, id string) (*model.AgencyMembership, error)

	// CreateActiveFromInvitation は勧誘承諾時の一連の更新を同一トランザクションで行う:
	// ACTIVEメンバーシップの作成、エージェンシーカウンターのインクリメント、
	// 勧誘のACCEPTEDへの更新。(escort, agency)ペアの既存REJECTED行がある場合は
	// 新しい行を作らずその行をACTIVEに更新し、更新後の行を返す（重複排除ポリシー）。
	// 既存行がREJECTED以外の場合はnilを返す（更新なし）。
	CreateActiveFromInvitation(ctx context.Context, m *model.AgencyMembership, invitationID string, respondedAt time.Time) (*model.AgencyMembership, error)

	// Leave は脱退時の一連の更新を同一トランザクションで行う:
	// メンバーシップをREJECTEDへ、エスコートの認証フィールドの全クリア、
	// エージェンシーのactive_escorts/verified_escortsのデクリメント。
	// デクリメントは認証状態に関わらず無条件に行う（観測された挙動の維持）。
	Leave(ctx context.Context, membershipID, escortID, agencyID string) error

	// ListByAgency はエージェンシーのメンバーシップ一覧をエスコート情報付きで返す。
	// statusが空の場合は全状態を対象とする。searchはエスコート表示名の部分一致。
	ListByAgency(ctx context.Context, agencyID string, status model.MembershipStatus, search string) ([]MembershipWithEscort, error)

	// CountByStatus は状態ごとのメンバーシップ件数を返す。
	CountByStatus(ctx context.Context) (map[model.MembershipStatus]int, error)
}

// InvitationRepository はエージェンシー勧誘の永続化インターフェース。
type InvitationRepository interface {
	// FindByID は指定IDの勧誘を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.AgencyInvitation, error)

	// FindPendingByAgencyAndEscort は(agency, escort)の組のPENDINGかつ
	// 未失効の勧誘を検索する。見つからない場合はnilを返す。
	FindPendingByAgencyAndEscort(ctx context.Context, agencyID, escortID string, now time.Time) (*model.AgencyInvitation, error)

	// Create は勧誘を作成する。
	Create(ctx context.Context, inv *model.AgencyInvitation) error

	// MarkRejected は勧誘をREJECTEDにし、responded_atを記録する。
	MarkRejected(ctx context.Context, id string, respondedAt time.Time) error

	// ListByEscort はエスコートが受信した勧誘一覧を返す。
	// statusが空の場合は全状態を対象とする。
	ListByEscort(ctx context.Context, escortID string, status model.InvitationStatus) ([]*model.AgencyInvitation, error)

	// DeleteExpiredBefore は指定時刻より前に失効したPENDING勧誘を削除し、件数を返す。
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// VerificationWithEscort は認証イベントとエスコート情報を結合した構造体。
type VerificationWithEscort struct {
	model.EscortVerification
	EscortUserID      string
	EscortDisplayName string
}

// VerificationRepository はエスコート認証イベントの永続化インターフェース。
// 認証イベントは追記専用で、エスコート側のミラーフィールドと
// エージェンシーカウンターの更新を同一トランザクションで行う。
type VerificationRepository interface {
	// CreateWithEscortUpdate は認証イベントの作成と、エスコートの認証フィールド更新、
	// エージェンシーカウンター更新を同一トランザクションで行う。
	// total_verificationsは常に、verified_escortsは初回認証時のみインクリメントする。
	CreateWithEscortUpdate(ctx context.Context, v *model.EscortVerification, isRenewal bool) error

	// FindLatestByEscort はエスコートの最新の認証イベントを取得する。
	// 見つからない場合はnilを返す。
	FindLatestByEscort(ctx context.Context, escortID string) (*model.EscortVerification, error)

	// ListExpiring はエージェンシーの認証のうちexpires_atがbefore以前のものを
	// expires_at昇順で返す。ページネーション付きで総件数も返す。
	ListExpiring(ctx context.Context, agencyID string, before time.Time, limit, offset int) ([]VerificationWithEscort, int, error)

	// Count は全認証イベント数を返す。
	Count(ctx context.Context) (int, error)
}

// PricingRepository は認証料金プランの永続化インターフェース。
type PricingRepository interface {
	// ListActive は有効な料金プラン一覧を返す。テーブルが空の場合は空スライスを返す。
	ListActive(ctx context.Context) ([]*model.VerificationPricing, error)

	// FindByID は指定IDの料金プランを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.VerificationPricing, error)
}

// ReputationRepository はエージェンシー評価スコアの永続化インターフェース。
// 更新はベストエフォートであり、失敗しても呼び出し元の処理は継続する。
type ReputationRepository interface {
	// Bump はエージェンシーの評価スコアをdeltaだけ加算する（行が無ければ作成）。
	Bump(ctx context.Context, agencyID string, delta float64) error
}

// NotificationRepository は通知レコードの永続化インターフェース。
type NotificationRepository interface {
	// Create は通知を作成する。
	Create(ctx context.Context, n *model.Notification) error

	// ListByUser はユーザーの通知一覧を新しい順で返す。
	// unreadOnlyがtrueの場合は未読のみを対象とする。
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]*model.Notification, error)

	// MarkRead は指定通知を既読にする。本人の通知でない場合は更新されない。
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead はユーザーの全通知を既読にする。
	MarkAllRead(ctx context.Context, userID string) error

	// DeleteReadBefore は指定時刻より前に作成された既読通知を削除し、件数を返す。
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ReportRepository は通報の永続化インターフェース。
type ReportRepository interface {
	// Create は通報を作成する。
	Create(ctx context.Context, r *model.Report) error

	// FindByID は指定IDの通報を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Report, error)

	// List は通報一覧を新しい順で返す。statusが空の場合は全状態を対象とする。
	List(ctx context.Context, status model.ReportStatus, limit, offset int) ([]*model.Report, int, error)

	// Resolve はOPEN状態の通報を解決済みまたは却下にする。
	// 対象行がOPENでない場合はnilを返す（更新なし）。
	Resolve(ctx context.Context, id string, status model.ReportStatus, resolution, resolvedBy string) (*model.Report, error)
}
