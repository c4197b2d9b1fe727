package agency

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/policy"
)

// 勧誘応答のアクション。
const (
	ActionAccept = "accept"
)

// InviteInput はエージェンシーからエスコートへの勧誘の入力。
type InviteInput struct {
	Message            string
	ProposedCommission float64
	ProposedRole       string
	ProposedBenefits   string
}

// InvitationResponse は勧誘への応答結果。
// 承諾時はMembershipに作成されたACTIVEメンバーシップが入る。
type InvitationResponse struct {
	Invitation *model.AgencyInvitation
	Membership *model.AgencyMembership
}

// InviteEscort はエージェンシーからエスコートへの勧誘を作成する。
// 同じ(agency, escort)ペアのPENDINGかつ未失効の勧誘は最大1件。
func (s *Service) InviteEscort(ctx context.Context, actor *model.AuthenticatedActor, escortID string, input InviteInput) (*model.AgencyInvitation, error) {
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
	if membership != nil && membership.Status != model.MembershipStatusRejected {
		return nil, model.NewEscortAlreadyMemberError()
	}

	now := s.now()
	existing, err := s.invitationRepo.FindPendingByAgencyAndEscort(ctx, agency.ID, escort.ID, now)
	if err != nil {
		return nil, fmt.Errorf("勧誘の取得に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewInvitationExistsError()
	}

	role := input.ProposedRole
	if role == "" {
		role = model.MembershipRoleMember
	}

	invitation := &model.AgencyInvitation{
		ID:                 uuid.NewString(),
		AgencyID:           agency.ID,
		EscortID:           escort.ID,
		Status:             model.InvitationStatusPending,
		Message:            s.sanitize(input.Message),
		ProposedCommission: policy.ClampCommission(input.ProposedCommission),
		ProposedRole:       role,
		ProposedBenefits:   s.sanitize(input.ProposedBenefits),
		ExpiresAt:          now.AddDate(0, 0, model.InvitationValidityDays),
		InvitedBy:          actor.UserID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("勧誘の作成に失敗しました: %w", err)
	}

	s.notify(ctx, escort.UserID, model.NotificationTypeInvitation,
		"エージェンシーからの勧誘", fmt.Sprintf("%sから勧誘が届きました。", agency.Name))

	return invitation, nil
}

// RespondToInvitation はエスコートが受信した勧誘に応答する。
// 承諾時はACTIVEメンバーシップの作成、カウンター更新、勧誘のACCEPTED化を
// 同一トランザクションで行う。失効済みの勧誘はINVITATION_NOT_FOUND扱い。
func (s *Service) RespondToInvitation(ctx context.Context, actor *model.AuthenticatedActor, invitationID, action string) (*InvitationResponse, error) {
	if !actor.HasEscortProfile() {
		return nil, model.NewEscortDataMissingError()
	}
	escort := actor.Escort

	if action != ActionAccept && action != ActionReject {
		return nil, model.NewInvalidActionError(action)
	}

	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return nil, fmt.Errorf("勧誘の取得に失敗しました: %w", err)
	}
	now := s.now()
	if invitation == nil || invitation.EscortID != escort.ID ||
		invitation.Status != model.InvitationStatusPending || invitation.IsExpired(now) {
		return nil, model.NewInvitationNotFoundError(invitationID)
	}

	agency, err := s.agencyRepo.FindByID(ctx, invitation.AgencyID)
	if err != nil {
		return nil, fmt.Errorf("エージェンシーの取得に失敗しました: %w", err)
	}
	if agency == nil {
		return nil, model.NewAgencyNotFoundError(invitation.AgencyID)
	}

	if action == ActionReject {
		if err := s.invitationRepo.MarkRejected(ctx, invitation.ID, now); err != nil {
			return nil, fmt.Errorf("勧誘の辞退に失敗しました: %w", err)
		}
		invitation.Status = model.InvitationStatusRejected
		invitation.RespondedAt = &now

		s.notify(ctx, agency.UserID, model.NotificationTypeInvitationRejected,
			"勧誘が辞退されました", fmt.Sprintf("%sが勧誘を辞退しました。", escort.DisplayName))

		return &InvitationResponse{Invitation: invitation}, nil
	}

	approvedBy := invitation.InvitedBy
	membership := &model.AgencyMembership{
		ID:             uuid.NewString(),
		EscortID:       escort.ID,
		AgencyID:       agency.ID,
		Status:         model.MembershipStatusActive,
		Role:           invitation.ProposedRole,
		CommissionRate: invitation.ProposedCommission,
		ApprovedBy:     &approvedBy,
		ApprovedAt:     &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := s.membershipRepo.CreateActiveFromInvitation(ctx, membership, invitation.ID, now)
	if err != nil {
		return nil, fmt.Errorf("勧誘の承諾に失敗しました: %w", err)
	}
	if created == nil {
		// 取得後に別リクエストがペア行をREJECTED以外に変えた場合
		return nil, model.NewEscortAlreadyMemberError()
	}
	invitation.Status = model.InvitationStatusAccepted
	invitation.RespondedAt = &now

	s.notify(ctx, agency.UserID, model.NotificationTypeInvitationAccepted,
		"勧誘が承諾されました", fmt.Sprintf("%sが勧誘を承諾しました。", escort.DisplayName))

	return &InvitationResponse{Invitation: invitation, Membership: created}, nil
}
