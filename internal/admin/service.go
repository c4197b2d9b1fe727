// Package admin は管理者向けのモデレーション機能を提供する。
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// 通報処理のアクション
const (
	ActionResolve = "resolve"
	ActionDismiss = "dismiss"
)

// Notifier は管理者操作の通知を送る。
type Notifier interface {
	Notify(ctx context.Context, userID string, notificationType model.NotificationType, title, body string)
}

// Sanitizer はユーザー入力の自由テキストを無害化する。
type Sanitizer interface {
	Sanitize(s string) string
}

// Pagination はページネーション結果のメタ情報。
type Pagination struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// PlatformStats はプラットフォーム全体の統計サマリー。
type PlatformStats struct {
	UsersByType         map[model.UserType]int
	TotalEscorts        int
	VerifiedEscorts     int
	TotalAgencies       int
	MembershipsByStatus map[model.MembershipStatus]int
	TotalVerifications  int
	GeneratedAt         time.Time
}

// Service は管理者操作のサービス層。
type Service struct {
	userRepo         repository.UserRepository
	escortRepo       repository.EscortRepository
	agencyRepo       repository.AgencyRepository
	membershipRepo   repository.MembershipRepository
	verificationRepo repository.VerificationRepository
	reportRepo       repository.ReportRepository
	sessionRepo      repository.SessionRepository
	notifier         Notifier
	sanitizer        Sanitizer

	// now はテストで時刻を固定するために差し替え可能。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	escortRepo repository.EscortRepository,
	agencyRepo repository.AgencyRepository,
	membershipRepo repository.MembershipRepository,
	verificationRepo repository.VerificationRepository,
	reportRepo repository.ReportRepository,
	sessionRepo repository.SessionRepository,
	notifier Notifier,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		userRepo:         userRepo,
		escortRepo:       escortRepo,
		agencyRepo:       agencyRepo,
		membershipRepo:   membershipRepo,
		verificationRepo: verificationRepo,
		reportRepo:       reportRepo,
		sessionRepo:      sessionRepo,
		notifier:         notifier,
		sanitizer:        sanitizer,
		now:              time.Now,
	}
}

func (s *Service) sanitize(text string) string {
	if s.sanitizer == nil {
		return text
	}
	return s.sanitizer.Sanitize(text)
}

func (s *Service) notify(ctx context.Context, userID string, notificationType model.NotificationType, title, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, userID, notificationType, title, body)
}

// BanUser は対象ユーザーをBANする。
// 既存セッションをすべて破棄し、対象ユーザーに通知を送る。
func (s *Service) BanUser(ctx context.Context, targetUserID, reason string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	reason = s.sanitize(reason)
	if err := s.userRepo.SetBan(ctx, targetUserID, true, reason); err != nil {
		return nil, fmt.Errorf("BAN状態の更新に失敗しました: %w", err)
	}

	// BAN済みユーザーのセッションを即時無効化する
	if err := s.sessionRepo.DeleteByUserID(ctx, targetUserID); err != nil {
		return nil, fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	user.IsBanned = true
	user.BanReason = reason

	s.notify(ctx, targetUserID, model.NotificationTypeModeration,
		"アカウントが利用停止されました",
		"規約違反によりアカウントが利用停止されました。理由: "+reason)

	return user, nil
}

// UnbanUser は対象ユーザーのBANを解除する。
func (s *Service) UnbanUser(ctx context.Context, targetUserID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	if err := s.userRepo.SetBan(ctx, targetUserID, false, ""); err != nil {
		return nil, fmt.Errorf("BAN状態の更新に失敗しました: %w", err)
	}

	user.IsBanned = false
	user.BanReason = ""

	s.notify(ctx, targetUserID, model.NotificationTypeModeration,
		"アカウントの利用停止が解除されました",
		"アカウントが再び利用可能になりました。")

	return user, nil
}

// ListReports は通報一覧を新しい順で返す。
// statusは "open" / "resolved" / "dismissed" / 空（全件）を受け付ける。
func (s *Service) ListReports(ctx context.Context, status string, page, limit int) ([]*model.Report, Pagination, error) {
	var repoStatus model.ReportStatus
	switch status {
	case "open":
		repoStatus = model.ReportStatusOpen
	case "resolved":
		repoStatus = model.ReportStatusResolved
	case "dismissed":
		repoStatus = model.ReportStatusDismissed
	case "":
		repoStatus = ""
	default:
		return nil, Pagination{}, model.NewInvalidActionError(status)
	}

	page, limit = normalizePagination(page, limit)
	reports, total, err := s.reportRepo.List(ctx, repoStatus, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("通報一覧の取得に失敗しました: %w", err)
	}

	return reports, newPagination(page, limit, total), nil
}

// ResolveReport はOPEN状態の通報を解決済みまたは却下にする。
// 既に処理済みの通報はREPORT_NOT_FOUNDとして扱う。
func (s *Service) ResolveReport(ctx context.Context, adminUserID, reportID, action, resolution string) (*model.Report, error) {
	var status model.ReportStatus
	switch action {
	case ActionResolve:
		status = model.ReportStatusResolved
	case ActionDismiss:
		status = model.ReportStatusDismissed
	default:
		return nil, model.NewInvalidActionError(action)
	}

	report, err := s.reportRepo.FindByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("通報の取得に失敗しました: %w", err)
	}
	if report == nil || report.Status != model.ReportStatusOpen {
		return nil, model.NewReportNotFoundError(reportID)
	}

	resolved, err := s.reportRepo.Resolve(ctx, reportID, status, s.sanitize(resolution), adminUserID)
	if err != nil {
		return nil, fmt.Errorf("通報の更新に失敗しました: %w", err)
	}
	if resolved == nil {
		// 取得から更新までの間に他の管理者が処理した場合
		return nil, model.NewReportNotFoundError(reportID)
	}

	return resolved, nil
}

// GetPlatformStats はプラットフォーム全体の統計サマリーを返す。
func (s *Service) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	usersByType, err := s.userRepo.CountByType(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー統計の取得に失敗しました: %w", err)
	}

	totalEscorts, err := s.escortRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("エスコート統計の取得に失敗しました: %w", err)
	}

	verifiedEscorts, err := s.escortRepo.CountVerified(ctx)
	if err != nil {
		return nil, fmt.Errorf("エスコート統計の取得に失敗しました: %w", err)
	}

	totalAgencies, err := s.agencyRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("エージェンシー統計の取得に失敗しました: %w", err)
	}

	membershipsByStatus, err := s.membershipRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップ統計の取得に失敗しました: %w", err)
	}

	totalVerifications, err := s.verificationRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("認証統計の取得に失敗しました: %w", err)
	}

	return &PlatformStats{
		UsersByType:         usersByType,
		TotalEscorts:        totalEscorts,
		VerifiedEscorts:     verifiedEscorts,
		TotalAgencies:       totalAgencies,
		MembershipsByStatus: membershipsByStatus,
		TotalVerifications:  totalVerifications,
		GeneratedAt:         s.now().UTC(),
	}, nil
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func newPagination(page, limit, total int) Pagination {
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
