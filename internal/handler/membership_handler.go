package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/agency"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// MembershipServiceInterface はメンバーシップハンドラーが必要とするサービスインターフェース。
type MembershipServiceInterface interface {
	// RequestToJoin はエスコートからエージェンシーへの加入申請を作成する。
	RequestToJoin(ctx context.Context, actor *model.AuthenticatedActor, agencyID, message string) (*model.AgencyMembership, error)
	// ManageMembershipRequest は承認待ち申請の承認・拒否を行う。
	ManageMembershipRequest(ctx context.Context, actor *model.AuthenticatedActor, membershipID, action string, commissionRate float64) (*model.AgencyMembership, error)
	// LeaveCurrentAgency は所属中のエージェンシーから脱退する。
	LeaveCurrentAgency(ctx context.Context, actor *model.AuthenticatedActor, reason string) error
	// InviteEscort はエージェンシーからエスコートへの勧誘を作成する。
	InviteEscort(ctx context.Context, actor *model.AuthenticatedActor, escortID string, input agency.InviteInput) (*model.AgencyInvitation, error)
	// RespondToInvitation は勧誘への承諾・辞退を処理する。
	RespondToInvitation(ctx context.Context, actor *model.AuthenticatedActor, invitationID, action string) (*agency.InvitationResponse, error)
	// ListAgencyEscorts はエージェンシーのエスコート一覧を返す。
	ListAgencyEscorts(ctx context.Context, actor *model.AuthenticatedActor, status, search string) ([]repository.MembershipWithEscort, error)
	// ListEscortInvitations はエスコートが受信した勧誘一覧を返す。
	ListEscortInvitations(ctx context.Context, actor *model.AuthenticatedActor, status string) ([]*model.AgencyInvitation, error)
	// MembershipStatus はエスコートの所属・認証サマリーを返す。
	MembershipStatus(ctx context.Context, actor *model.AuthenticatedActor) (*agency.StatusSummary, error)
}

// TransitionRecorder はメンバーシップの状態遷移メトリクスを記録する。
type TransitionRecorder interface {
	RecordMembershipTransition(toStatus string)
}

// MembershipHandler はメンバーシップライフサイクルのHTTPハンドラー。
type MembershipHandler struct {
	service MembershipServiceInterface
	metrics TransitionRecorder
}

// NewMembershipHandler はMembershipHandlerを生成する。
// metricsはnil可（テスト用）。
func NewMembershipHandler(service MembershipServiceInterface, metrics TransitionRecorder) *MembershipHandler {
	return &MembershipHandler{
		service: service,
		metrics: metrics,
	}
}

func (h *MembershipHandler) recordTransition(toStatus model.MembershipStatus) {
	if h.metrics != nil {
		h.metrics.RecordMembershipTransition(string(toStatus))
	}
}

// --- リクエスト/レスポンス型 ---

type joinRequest struct {
	Message string `json:"message"`
}

type manageRequest struct {
	Action         string  `json:"action"`
	CommissionRate float64 `json:"commissionRate"`
}

type leaveRequest struct {
	Reason string `json:"reason"`
}

type inviteRequest struct {
	Message            string  `json:"message"`
	ProposedCommission float64 `json:"proposedCommission"`
	ProposedRole       string  `json:"proposedRole"`
	ProposedBenefits   string  `json:"proposedBenefits"`
}

type respondRequest struct {
	Action string `json:"action"`
}

type membershipResponse struct {
	ID             string     `json:"id"`
	EscortID       string     `json:"escortId"`
	AgencyID       string     `json:"agencyId"`
	Status         string     `json:"status"`
	Role           string     `json:"role"`
	CommissionRate float64    `json:"commissionRate"`
	Message        string     `json:"message,omitempty"`
	ApprovedBy     *string    `json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type invitationResponse struct {
	ID                 string     `json:"id"`
	AgencyID           string     `json:"agencyId"`
	EscortID           string     `json:"escortId"`
	Status             string     `json:"status"`
	Message            string     `json:"message,omitempty"`
	ProposedCommission float64    `json:"proposedCommission"`
	ProposedRole       string     `json:"proposedRole"`
	ProposedBenefits   string     `json:"proposedBenefits,omitempty"`
	ExpiresAt          time.Time  `json:"expiresAt"`
	RespondedAt        *time.Time `json:"respondedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

type memberEntryResponse struct {
	membershipResponse
	EscortUserID      string `json:"escortUserId"`
	EscortDisplayName string `json:"escortDisplayName"`
	EscortLocation    string `json:"escortLocation,omitempty"`
	EscortIsVerified  bool   `json:"escortIsVerified"`
}

type statusSummaryResponse struct {
	Membership   *membershipResponse `json:"membership"`
	Agency       *agencyResponse     `json:"agency"`
	IsVerified   bool                `json:"isVerified"`
	VerifiedAt   *time.Time          `json:"verifiedAt,omitempty"`
	ExpiresAt    *time.Time          `json:"expiresAt,omitempty"`
	NeedsRenewal bool                `json:"needsRenewal"`
}

// RequestToJoin は加入申請を処理する。
// POST /api/agencies/:agencyID/join
func (h *MembershipHandler) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	agencyID := chi.URLParam(r, "agencyID")

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	membership, err := h.service.RequestToJoin(r.Context(), actor, agencyID, req.Message)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTransition(membership.Status)
	writeSuccess(w, http.StatusCreated, toMembershipResponse(membership))
}

// Manage は申請の承認・拒否を処理する。
// POST /api/agencies/memberships/:membershipID/manage
func (h *MembershipHandler) Manage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	membershipID := chi.URLParam(r, "membershipID")

	var req manageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	membership, err := h.service.ManageMembershipRequest(r.Context(), actor, membershipID, req.Action, req.CommissionRate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTransition(membership.Status)
	writeSuccess(w, http.StatusOK, toMembershipResponse(membership))
}

// Leave は所属エージェンシーからの脱退を処理する。
// POST /api/agencies/escort/leave
func (h *MembershipHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	// ボディは省略可能
	var req leaveRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.service.LeaveCurrentAgency(r.Context(), actor, req.Reason); err != nil {
		handleServiceError(w, err)
		return
	}

	h.recordTransition(model.MembershipStatusRejected)
	writeSuccess(w, http.StatusOK, map[string]string{"status": "left"})
}

// Invite はエスコートへの勧誘を処理する。
// POST /api/agencies/escorts/:escortID/invite
func (h *MembershipHandler) Invite(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	escortID := chi.URLParam(r, "escortID")

	var req inviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	invitation, err := h.service.InviteEscort(r.Context(), actor, escortID, agency.InviteInput{
		Message:            req.Message,
		ProposedCommission: req.ProposedCommission,
		ProposedRole:       req.ProposedRole,
		ProposedBenefits:   req.ProposedBenefits,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toInvitationResponse(invitation))
}

// Respond は勧誘への承諾・辞退を処理する。
// POST /api/agencies/invitations/:invitationID/respond
func (h *MembershipHandler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	invitationID := chi.URLParam(r, "invitationID")

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	result, err := h.service.RespondToInvitation(r.Context(), actor, invitationID, req.Action)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := map[string]interface{}{
		"invitation": toInvitationResponse(result.Invitation),
	}
	if result.Membership != nil {
		h.recordTransition(result.Membership.Status)
		resp["membership"] = toMembershipResponse(result.Membership)
	}

	writeSuccess(w, http.StatusOK, resp)
}

// ListEscorts はエージェンシーのエスコート一覧を返す。
// GET /api/agencies/escorts?status=pending|active|all&search=xxx
func (h *MembershipHandler) ListEscorts(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	members, err := h.service.ListAgencyEscorts(r.Context(), actor, status, search)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]memberEntryResponse, 0, len(members))
	for _, m := range members {
		entries = append(entries, memberEntryResponse{
			membershipResponse: toMembershipResponse(&m.AgencyMembership),
			EscortUserID:       m.EscortUserID,
			EscortDisplayName:  m.EscortDisplayName,
			EscortLocation:     m.EscortLocation,
			EscortIsVerified:   m.EscortIsVerified,
		})
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{"escorts": entries})
}

// ListInvitations はエスコートが受信した勧誘一覧を返す。
// GET /api/agencies/escort/invitations?status=pending|accepted|rejected|all
func (h *MembershipHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")

	invitations, err := h.service.ListEscortInvitations(r.Context(), actor, status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]invitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		entries = append(entries, toInvitationResponse(inv))
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{"invitations": entries})
}

// Status はエスコートの所属・認証サマリーを返す。
// GET /api/agencies/escort/membership-status
func (h *MembershipHandler) Status(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.service.MembershipStatus(r.Context(), actor)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := statusSummaryResponse{
		IsVerified:   summary.IsVerified,
		VerifiedAt:   summary.VerifiedAt,
		ExpiresAt:    summary.ExpiresAt,
		NeedsRenewal: summary.NeedsRenewal,
	}
	if summary.Membership != nil {
		m := toMembershipResponse(summary.Membership)
		resp.Membership = &m
	}
	if summary.Agency != nil {
		a := toAgencyResponse(summary.Agency)
		resp.Agency = &a
	}

	writeSuccess(w, http.StatusOK, resp)
}

// --- 変換ヘルパー ---

func toMembershipResponse(m *model.AgencyMembership) membershipResponse {
	return membershipResponse{
		ID:             m.ID,
		EscortID:       m.EscortID,
		AgencyID:       m.AgencyID,
		Status:         string(m.Status),
		Role:           m.Role,
		CommissionRate: m.CommissionRate,
		Message:        m.Message,
		ApprovedBy:     m.ApprovedBy,
		ApprovedAt:     m.ApprovedAt,
		CreatedAt:      m.CreatedAt,
	}
}

func toInvitationResponse(inv *model.AgencyInvitation) invitationResponse {
	return invitationResponse{
		ID:                 inv.ID,
		AgencyID:           inv.AgencyID,
		EscortID:           inv.EscortID,
		Status:             string(inv.Status),
		Message:            inv.Message,
		ProposedCommission: inv.ProposedCommission,
		ProposedRole:       inv.ProposedRole,
		ProposedBenefits:   inv.ProposedBenefits,
		ExpiresAt:          inv.ExpiresAt,
		RespondedAt:        inv.RespondedAt,
		CreatedAt:          inv.CreatedAt,
	}
}
