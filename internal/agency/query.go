package agency

import (
	"context"
	"fmt"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/policy"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// SearchParams はエージェンシー検索の入力。
type SearchParams struct {
	Query      string
	Location   string
	Verified   *bool
	MinEscorts *int
	SortBy     string
	Page       int
	Limit      int
}

// EscortListStatus はエスコート一覧のステータスフィルター。
const (
	EscortListPending = "pending"
	EscortListActive  = "active"
	EscortListAll     = "all"
)

// StatusSummary はエスコートの現在の所属・認証状態のサマリー。
type StatusSummary struct {
	Membership   *model.AgencyMembership
	Agency       *model.Agency
	IsVerified   bool
	VerifiedAt   *time.Time
	ExpiresAt    *time.Time
	NeedsRenewal bool
}

// SearchAgencies は条件に一致するアクティブなエージェンシーを検索する。
func (s *Service) SearchAgencies(ctx context.Context, params SearchParams) ([]*model.Agency, Pagination, error) {
	page, limit := normalizePagination(params.Page, params.Limit)

	filter := repository.AgencySearchFilter{
		Query:      params.Query,
		Location:   params.Location,
		Verified:   params.Verified,
		MinEscorts: params.MinEscorts,
		SortBy:     params.SortBy,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	agencies, total, err := s.agencyRepo.Search(ctx, filter)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("エージェンシーの検索に失敗しました: %w", err)
	}

	return agencies, newPagination(page, limit, total), nil
}

// ListAgencyEscorts はエージェンシーのエスコート一覧を返す。
// statusはpending/active/allのいずれか。pendingは申請行、active/allは所属行を対象とする。
func (s *Service) ListAgencyEscorts(ctx context.Context, actor *model.AuthenticatedActor, status, search string) ([]repository.MembershipWithEscort, error) {
	if !actor.HasAgencyProfile() {
		return nil, model.NewForbiddenUserTypeError(model.UserTypeAgency)
	}

	var filter model.MembershipStatus
	switch status {
	case EscortListPending:
		filter = model.MembershipStatusPending
	case EscortListActive, "":
		filter = model.MembershipStatusActive
	case EscortListAll:
		filter = ""
	default:
		return nil, model.NewInvalidActionError(status)
	}

	memberships, err := s.membershipRepo.ListByAgency(ctx, actor.Agency.ID, filter, search)
	if err != nil {
		return nil, fmt.Errorf("エスコート一覧の取得に失敗しました: %w", err)
	}

	return memberships, nil
}

// ListEscortInvitations はエスコートが受信した勧誘一覧を返す。
func (s *Service) ListEscortInvitations(ctx context.Context, actor *model.AuthenticatedActor, status string) ([]*model.AgencyInvitation, error) {
	if !actor.HasEscortProfile() {
		return nil, model.NewEscortDataMissingError()
	}

	var filter model.InvitationStatus
	switch status {
	case "":
		filter = ""
	case "pending":
		filter = model.InvitationStatusPending
	case "accepted":
		filter = model.InvitationStatusAccepted
	case "rejected":
		filter = model.InvitationStatusRejected
	default:
		return nil, model.NewInvalidActionError(status)
	}

	invitations, err := s.invitationRepo.ListByEscort(ctx, actor.Escort.ID, filter)
	if err != nil {
		return nil, fmt.Errorf("勧誘一覧の取得に失敗しました: %w", err)
	}

	return invitations, nil
}

// MembershipStatus はエスコートの現在の所属・認証状態のサマリーを返す。
// 認証の失効判定はこの読み取り時にのみ行われ、能動的な失効処理は存在しない。
func (s *Service) MembershipStatus(ctx context.Context, actor *model.AuthenticatedActor) (*StatusSummary, error) {
	if !actor.HasEscortProfile() {
		return nil, model.NewEscortDataMissingError()
	}
	escort := actor.Escort

	summary := &StatusSummary{
		IsVerified:   escort.IsVerified,
		VerifiedAt:   escort.VerifiedAt,
		ExpiresAt:    escort.VerificationExpiresAt,
		NeedsRenewal: policy.NeedsRenewal(escort, s.now()),
	}

	membership, err := s.membershipRepo.FindActiveByEscort(ctx, escort.ID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの取得に失敗しました: %w", err)
	}
	if membership == nil {
		return summary, nil
	}
	summary.Membership = membership

	agency, err := s.agencyRepo.FindByID(ctx, membership.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("エージェンシーの取得に失敗しました: %w", err)
	}
	summary.Agency = agency

	return summary, nil
}

// ListExpiringVerifications はエージェンシーの認証のうち、指定日数以内に
// 失効するものをexpires_at昇順で返す。
func (s *Service) ListExpiringVerifications(ctx context.Context, actor *model.AuthenticatedActor, days, page, limit int) ([]repository.VerificationWithEscort, Pagination, error) {
	if !actor.HasAgencyProfile() {
		return nil, Pagination{}, model.NewForbiddenUserTypeError(model.UserTypeAgency)
	}

	if days < 1 {
		days = model.RenewalWindowDays
	}
	page, limit = normalizePagination(page, limit)
	before := s.now().AddDate(0, 0, days)

	verifications, total, err := s.verificationRepo.ListExpiring(ctx, actor.Agency.ID, before, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("失効予定の認証一覧の取得に失敗しました: %w", err)
	}

	return verifications, newPagination(page, limit, total), nil
}
