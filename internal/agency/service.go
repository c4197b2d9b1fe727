// Package agency はエージェンシーメンバーシップと認証ライフサイクルのドメインロジックを提供する。
package agency

import (
	"context"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// Notifier は状態遷移の通知を送る。
// 実装側で失敗をログに記録し、呼び出し元のトランザクションには影響させない。
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

// Service はエージェンシーメンバーシップのサービス層。
// 申請・勧誘・承認・脱退・認証のビジネスロジックを提供する。
type Service struct {
	agencyRepo       repository.AgencyRepository
	escortRepo       repository.EscortRepository
	userRepo         repository.UserRepository
	membershipRepo   repository.MembershipRepository
	invitationRepo   repository.InvitationRepository
	verificationRepo repository.VerificationRepository
	pricingRepo      repository.PricingRepository
	reputationRepo   repository.ReputationRepository
	notifier         Notifier
	sanitizer        Sanitizer

	// now はテストで時刻を固定するために差し替え可能。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	agencyRepo repository.AgencyRepository,
	escortRepo repository.EscortRepository,
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	invitationRepo repository.InvitationRepository,
	verificationRepo repository.VerificationRepository,
	pricingRepo repository.PricingRepository,
	reputationRepo repository.ReputationRepository,
	notifier Notifier,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		agencyRepo:       agencyRepo,
		escortRepo:       escortRepo,
		userRepo:         userRepo,
		membershipRepo:   membershipRepo,
		invitationRepo:   invitationRepo,
		verificationRepo: verificationRepo,
		pricingRepo:      pricingRepo,
		reputationRepo:   reputationRepo,
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

// findVisibleAgency はエージェンシーを取得し、存在しない・非アクティブ・
// オーナーがBAN済みの場合はいずれもAGENCY_NOT_FOUNDとして扱う。
func (s *Service) findVisibleAgency(ctx context.Context, agencyID string) (*model.Agency, error) {
	agency, err := s.agencyRepo.FindByID(ctx, agencyID)
	if err != nil {
		return nil, err
	}
	if agency == nil || !agency.IsActive {
		return nil, model.NewAgencyNotFoundError(agencyID)
	}

	owner, err := s.userRepo.FindByID(ctx, agency.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.IsBanned {
		return nil, model.NewAgencyNotFoundError(agencyID)
	}

	return agency, nil
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
