package agency

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/policy"
)

// 評価スコアへの加算値。
const (
	reputationInitialVerification = 2.0
	reputationRenewal             = 1.0
)

// fallbackListingPricing は料金プランテーブルが空の場合に一覧へ返すデフォルトプラン。
func fallbackListingPricing() []*model.VerificationPricing {
	return []*model.VerificationPricing{
		{ID: "default-basic", Name: "ベーシック認証", Cost: 50, DurationDays: 30,
			Features: []string{"認証バッジ", "検索結果での優先表示"}, IsActive: true},
		{ID: "default-premium", Name: "プレミアム認証", Cost: 75, DurationDays: 60,
			Features: []string{"認証バッジ", "検索結果での優先表示", "プロフィールのハイライト"}, IsActive: true},
		{ID: "default-vip", Name: "VIP認証", Cost: 100, DurationDays: 90,
			Features: []string{"認証バッジ", "検索結果での最優先表示", "プロフィールのハイライト", "専任サポート"}, IsActive: true},
	}
}

// fallbackVerifyPricing は認証実行時にプランが解決できない場合のデフォルトプラン。
// 一覧用のフォールバック（50/75/100）とは金額が異なるが、観測された挙動として維持する。
func fallbackVerifyPricing() map[string]*model.VerificationPricing {
	return map[string]*model.VerificationPricing{
		"default-basic":   {ID: "default-basic", Name: "ベーシック認証", Cost: 10, DurationDays: model.DefaultVerificationDays, IsActive: true},
		"default-premium": {ID: "default-premium", Name: "プレミアム認証", Cost: 10, DurationDays: model.DefaultVerificationDays, IsActive: true},
		"default-vip":     {ID: "default-vip", Name: "VIP認証", Cost: 10, DurationDays: model.DefaultVerificationDays, IsActive: true},
	}
}

// VerificationResult はエスコート認証の実行結果。
type VerificationResult struct {
	Verification *model.EscortVerification
	Pricing      *model.VerificationPricing
	IsRenewal    bool
}

// resolvePricing はpricingIdから料金プランを解決する。
// テーブルに存在しない場合やテーブル自体が無い環境ではデフォルトプランで代替する。
func (s *Service) resolvePricing(ctx context.Context, pricingID string) *model.VerificationPricing {
	if pricingID != "" {
		pricing, err := s.pricingRepo.FindByID(ctx, pricingID)
		if err == nil && pricing != nil {
			return pricing
		}
	}

	fallback := fallbackVerifyPricing()
	if pricing, ok := fallback[pricingID]; ok {
		return pricing
	}
	return fallback["default-basic"]
}

// VerifyEscort はエージェンシーがメンバーのエスコートを認証する（初回・更新共通）。
// 可否判定はpolicy.CanVerifyEscortに委譲し、更新は同じ処理にisRenewalフラグが
// 立つだけで別の経路は持たない。評価スコアの更新はベストエフォート。
func (s *Service) VerifyEscort(ctx context.Context, actor *model.AuthenticatedActor, escortID, pricingID, notes string) (*VerificationResult, error) {
	if !actor.HasAgencyProfile() {
		return nil, model.NewForbiddenUserTypeError(model.UserTypeAgency)
	}
	agency := actor.Agency

	escort, err := s.escortRepo.FindByID(ctx, escortID)
	if err != nil {
		return nil, fmt.Errorf("エスコートの取得に失敗しました: %w", err)
	}
	if escort == nil {
		return nil, model.NewEscortNotFoundError(escortID)
	}

	membership, err := s.membershipRepo.FindByEscortAndAgency(ctx, escort.ID, agency.ID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの取得に失敗しました: %w", err)
	}

	now := s.now()
	decision := policy.CanVerifyEscort(escort, membership, agency.ID, now)
	if !decision.Allowed {
		return nil, model.NewVerificationDeniedError(decision.Reason)
	}

	pricing := s.resolvePricing(ctx, pricingID)
	expiresAt := now.AddDate(0, 0, pricing.DurationDays)

	verification := &model.EscortVerification{
		ID:                uuid.NewString(),
		AgencyID:          agency.ID,
		EscortID:          escort.ID,
		PricingID:         pricing.ID,
		Status:            model.VerificationStatusCompleted,
		StartsAt:          now,
		ExpiresAt:         expiresAt,
		VerifiedBy:        agency.ID,
		CompletedAt:       now,
		VerificationNotes: s.sanitize(notes),
		CreatedAt:         now,
	}
	if err := s.verificationRepo.CreateWithEscortUpdate(ctx, verification, decision.IsRenewal); err != nil {
		return nil, fmt.Errorf("認証の作成に失敗しました: %w", err)
	}

	// 評価スコアの更新は失敗しても認証自体は成立させる
	if s.reputationRepo != nil {
		delta := reputationInitialVerification
		if decision.IsRenewal {
			delta = reputationRenewal
		}
		_ = s.reputationRepo.Bump(ctx, agency.ID, delta)
	}

	title := "認証が完了しました"
	if decision.IsRenewal {
		title = "認証が更新されました"
	}
	s.notify(ctx, escort.UserID, model.NotificationTypeVerification,
		title, fmt.Sprintf("%sによる認証が%sまで有効です。", agency.Name, expiresAt.Format("2006-01-02")))

	return &VerificationResult{
		Verification: verification,
		Pricing:      pricing,
		IsRenewal:    decision.IsRenewal,
	}, nil
}

// GetVerificationPricing は有効な料金プラン一覧を返す。
// テーブルが空、またはテーブルが存在しない環境では3つのデフォルトプランを返す。
func (s *Service) GetVerificationPricing(ctx context.Context) []*model.VerificationPricing {
	pricings, err := s.pricingRepo.ListActive(ctx)
	if err != nil || len(pricings) == 0 {
		return fallbackListingPricing()
	}
	return pricings
}
