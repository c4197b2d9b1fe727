package agency

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/policy"
)

// メンバーシップ操作のアクション。
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// RequestToJoin はエスコートからエージェンシーへの加入申請を作成する。
// 同じ(escort, agency)ペアのREJECTED行が存在する場合は、新しい行を作らず
// その行をPENDINGに戻す（重複排除ポリシー）。
func (s *Service) RequestToJoin(ctx context.Context, actor *model.AuthenticatedActor, agencyID, message string) (*model.AgencyMembership, error) {
	if !actor.HasEscortProfile() {
		return nil, model.NewEscortDataMissingError()
	}
	escort := actor.Escort

	agency, err := s.findVisibleAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	existing, err := s.membershipRepo.FindByEscortAndAgency(ctx, escort.ID, agency.ID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの取得に失敗しました: %w", err)
	}

	message = s.sanitize(message)
	now := s.now()

	var membership *model.AgencyMembership
	switch {
	case existing == nil:
		membership = &model.AgencyMembership{
			ID:        uuid.NewString(),
			EscortID:  escort.ID,
			AgencyID:  agency.ID,
			Status:    model.MembershipStatusPending,
			Message:   message,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.membershipRepo.Create(ctx, membership); err != nil {
			return nil, fmt.Errorf("メンバーシップの作成に失敗しました: %w", err)
		}

	case existing.Status == model.MembershipStatusPending:
		return nil, model.NewMembershipPendingError()

	case existing.Status == model.MembershipStatusActive:
		return nil, model.NewMembershipActiveError()

	default:
		// REJECTED行を再利用してPENDINGに戻す
		membership, err = s.membershipRepo.Resurrect(ctx, existing.ID, message)
		if err != nil {
			return nil, fmt.Errorf("メンバーシップの再申請に失敗しました: %w", err)
		}
		if membership == nil {
			// 取得後に別リクエストが先に再申請していた場合
			return nil, model.NewMembershipPendingError()
		}
	}

	s.notify(ctx, agency.UserID, model.NotificationTypeMembershipRequest,
		"新しい加入申請", fmt.Sprintf("%sから加入申請が届きました。", escort.DisplayName))

	return membership, nil
}

// ManageMembershipRequest はエージェンシーがPENDING申請を承認または拒否する。
// 承認は手数料率を[0,1]に丸め、role=MEMBERを付与し、カウンター更新まで
// 同一トランザクションで行う。
func (s *Service) ManageMembershipRequest(ctx context.Context, actor *model.AuthenticatedActor, membershipID, action string, commissionRate float64) (*model.AgencyMembership, error) {
	if !actor.HasAgencyProfile() {
		return nil, model.NewForbiddenUserTypeError(model.UserTypeAgency)
	}
	agency := actor.Agency

	if action != ActionApprove && action != ActionReject {
		return nil, model.NewInvalidActionError(action)
	}

	membership, err := s.membershipRepo.FindByID(ctx, membershipID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの取得に失敗しました: %w", err)
	}
	// 他エージェンシーの行とPENDING以外の行はいずれもNOT_FOUND扱い
	if membership == nil || membership.AgencyID != agency.ID || membership.Status != model.MembershipStatusPending {
		return nil, model.NewMembershipNotFoundError(membershipID)
	}

	escort, err := s.escortRepo.FindByID(ctx, membership.EscortID)
	if err != nil {
		return nil, fmt.Errorf("エスコートの取得に失敗しました: %w", err)
	}
	if escort == nil {
		return nil, model.NewEscortNotFoundError(membership.EscortID)
	}

	var updated *model.AgencyMembership
	if action == ActionApprove {
		rate := policy.ClampCommission(commissionRate)
		updated, err = s.membershipRepo.Approve(ctx, membershipID, agency.ID, rate, model.MembershipRoleMember)
		if err != nil {
			return nil, fmt.Errorf("メンバーシップの承認に失敗しました: %w", err)
		}
	} else {
		updated, err = s.membershipRepo.Reject(ctx, membershipID)
		if err != nil {
			return nil, fmt.Errorf("メンバーシップの拒否に失敗しました: %w", err)
		}
	}
	if updated == nil {
		// 取得後に別リクエストが状態を変えた場合
		return nil, model.NewMembershipNotFoundError(membershipID)
	}

	if action == ActionApprove {
		s.notify(ctx, escort.UserID, model.NotificationTypeMembershipApproved,
			"加入申請が承認されました", fmt.Sprintf("%sへの加入が承認されました。", agency.Name))
	} else {
		s.notify(ctx, escort.UserID, model.NotificationTypeMembershipRejected,
			"加入申請が拒否されました", fmt.Sprintf("%sへの加入申請は承認されませんでした。", agency.Name))
	}

	return updated, nil
}

// LeaveCurrentAgency はエスコートが所属中のエージェンシーから脱退する。
// 脱退はメンバーシップのREJECTED化、認証ステータスの剥奪、
// カウンターのデクリメントを同一トランザクションで行う。
func (s *Service) LeaveCurrentAgency(ctx context.Context, actor *model.AuthenticatedActor, reason string) error {
	if !actor.HasEscortProfile() {
		return model.NewEscortDataMissingError()
	}
	escort := actor.Escort

	membership, err := s.membershipRepo.FindActiveByEscort(ctx, escort.ID)
	if err != nil {
		return fmt.Errorf("メンバーシップの取得に失敗しました: %w", err)
	}
	if membership == nil {
		return model.NewNoActiveMembershipError()
	}

	if err := s.membershipRepo.Leave(ctx, membership.ID, escort.ID, membership.AgencyID); err != nil {
		return fmt.Errorf("脱退処理に失敗しました: %w", err)
	}

	agency, err := s.agencyRepo.FindByID(ctx, membership.AgencyID)
	if err != nil {
		return fmt.Errorf("エージェンシーの取得に失敗しました: %w", err)
	}
	if agency != nil {
		s.notify(ctx, agency.UserID, model.NotificationTypeMembershipLeft,
			"エスコートが脱退しました", fmt.Sprintf("%sがエージェンシーを脱退しました。", escort.DisplayName))
	}

	return nil
}
