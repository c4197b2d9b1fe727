package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/agency"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/middleware"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// --- モック定義 ---

// mockMembershipService はMembershipServiceInterfaceのモック実装。
type mockMembershipService struct {
	requestToJoinFn         func(ctx context.Context, actor *model.AuthenticatedActor, agencyID, message string) (*model.AgencyMembership, error)
	manageFn                func(ctx context.Context, actor *model.AuthenticatedActor, membershipID, action string, commissionRate float64) (*model.AgencyMembership, error)
	leaveFn                 func(ctx context.Context, actor *model.AuthenticatedActor, reason string) error
	inviteEscortFn          func(ctx context.Context, actor *model.AuthenticatedActor, escortID string, input agency.InviteInput) (*model.AgencyInvitation, error)
	respondToInvitationFn   func(ctx context.Context, actor *model.AuthenticatedActor, invitationID, action string) (*agency.InvitationResponse, error)
	listAgencyEscortsFn     func(ctx context.Context, actor *model.AuthenticatedActor, status, search string) ([]repository.MembershipWithEscort, error)
	listEscortInvitationsFn func(ctx context.Context, actor *model.AuthenticatedActor, status string) ([]*model.AgencyInvitation, error)
	membershipStatusFn      func(ctx context.Context, actor *model.AuthenticatedActor) (*agency.StatusSummary, error)
}

func (m *mockMembershipService) RequestToJoin(ctx context.Context, actor *model.AuthenticatedActor, agencyID, message string) (*model.AgencyMembership, error) {
	if m.requestToJoinFn != nil {
		return m.requestToJoinFn(ctx, actor, agencyID, message)
	}
	return nil, nil
}

func (m *mockMembershipService) ManageMembershipRequest(ctx context.Context, actor *model.AuthenticatedActor, membershipID, action string, commissionRate float64) (*model.AgencyMembership, error) {
	if m.manageFn != nil {
		return m.manageFn(ctx, actor, membershipID, action, commissionRate)
	}
	return nil, nil
}

func (m *mockMembershipService) LeaveCurrentAgency(ctx context.Context, actor *model.AuthenticatedActor, reason string) error {
	if m.leaveFn != nil {
		return m.leaveFn(ctx, actor, reason)
	}
	return nil
}

func (m *mockMembershipService) InviteEscort(ctx context.Context, actor *model.AuthenticatedActor, escortID string, input agency.InviteInput) (*model.AgencyInvitation, error) {
	if m.inviteEscortFn != nil {
		return m.inviteEscortFn(ctx, actor, escortID, input)
	}
	return nil, nil
}

func (m *mockMembershipService) RespondToInvitation(ctx context.Context, actor *model.AuthenticatedActor, invitationID, action string) (*agency.InvitationResponse, error) {
	if m.respondToInvitationFn != nil {
		return m.respondToInvitationFn(ctx, actor, invitationID, action)
	}
	return nil, nil
}

func (m *mockMembershipService) ListAgencyEscorts(ctx context.Context, actor *model.AuthenticatedActor, status, search string) ([]repository.MembershipWithEscort, error) {
	if m.listAgencyEscortsFn != nil {
		return m.listAgencyEscortsFn(ctx, actor, status, search)
	}
	return nil, nil
}

func (m *mockMembershipService) ListEscortInvitations(ctx context.Context, actor *model.AuthenticatedActor, status string) ([]*model.AgencyInvitation, error) {
	if m.listEscortInvitationsFn != nil {
		return m.listEscortInvitationsFn(ctx, actor, status)
	}
	return nil, nil
}

func (m *mockMembershipService) MembershipStatus(ctx context.Context, actor *model.AuthenticatedActor) (*agency.StatusSummary, error) {
	if m.membershipStatusFn != nil {
		return m.membershipStatusFn(ctx, actor)
	}
	return nil, nil
}

var _ MembershipServiceInterface = (*mockMembershipService)(nil)

// mockTransitionRecorder は状態遷移メトリクスのモック実装。
type mockTransitionRecorder struct {
	transitions []string
}

func (m *mockTransitionRecorder) RecordMembershipTransition(toStatus string) {
	m.transitions = append(m.transitions, toStatus)
}

// --- テストヘルパー ---

// withActor はテスト用にリクエストコンテキストに実行主体を注入するヘルパー。
func withActor(r *http.Request, actor *model.AuthenticatedActor) *http.Request {
	ctx := middleware.ContextWithActor(r.Context(), actor)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func escortActor(userID, escortID string) *model.AuthenticatedActor {
	return &model.AuthenticatedActor{
		UserID:   userID,
		UserType: model.UserTypeEscort,
		Escort:   &model.Escort{ID: escortID, UserID: userID, DisplayName: "テスト嬢"},
	}
}

func agencyActor(userID, agencyID string) *model.AuthenticatedActor {
	return &model.AuthenticatedActor{
		UserID:   userID,
		UserType: model.UserTypeAgency,
		Agency:   &model.Agency{ID: agencyID, UserID: userID, Name: "テストエージェンシー"},
	}
}

// decodeSuccessEnvelope は成功レスポンスのdataフィールドをデコードするヘルパー。
func decodeSuccessEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Success   bool                   `json:"success"`
		Data      map[string]interface{} `json:"data"`
		Timestamp string                 `json:"timestamp"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !envelope.Success {
		t.Error("success = false, want true")
	}
	if envelope.Timestamp == "" {
		t.Error("timestamp is empty")
	}
	return envelope.Data
}

// decodeErrorEnvelope はエラーレスポンスをデコードするヘルパー。
func decodeErrorEnvelope(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if envelope.Success {
		t.Error("success = true, want false")
	}
	return envelope.Code, envelope.Message
}

// --- POST /api/agencies/{agencyID}/join テスト ---

func TestMembershipHandler_RequestToJoin_Success(t *testing.T) {
	svc := &mockMembershipService{
		requestToJoinFn: func(ctx context.Context, actor *model.AuthenticatedActor, agencyID, message string) (*model.AgencyMembership, error) {
			if agencyID != "agency-1" {
				t.Errorf("agencyID = %q, want %q", agencyID, "agency-1")
			}
			if message != "よろしくお願いします" {
				t.Errorf("message = %q", message)
			}
			return &model.AgencyMembership{
				ID:       "membership-1",
				EscortID: actor.Escort.ID,
				AgencyID: agencyID,
				Status:   model.MembershipStatusPending,
				Role:     model.MembershipRoleMember,
			}, nil
		},
	}
	recorder := &mockTransitionRecorder{}
	h := NewMembershipHandler(svc, recorder)

	body := `{"message": "よろしくお願いします"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/agency-1/join", bytes.NewBufferString(body))
	req = withActor(req, escortActor("user-1", "escort-1"))
	req = withChiURLParam(req, "agencyID", "agency-1")
	w := httptest.NewRecorder()

	h.RequestToJoin(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if len(recorder.transitions) != 1 || recorder.transitions[0] != "PENDING" {
		t.Errorf("transitions = %v, want [PENDING]", recorder.transitions)
	}
}

func TestMembershipHandler_RequestToJoin_MembershipPending(t *testing.T) {
	svc := &mockMembershipService{
		requestToJoinFn: func(ctx context.Context, actor *model.AuthenticatedActor, agencyID, message string) (*model.AgencyMembership, error) {
			return nil, model.NewMembershipPendingError()
		},
	}
	h := NewMembershipHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agencies/agency-1/join", bytes.NewBufferString(`{}`))
	req = withActor(req, escortActor("user-1", "escort-1"))
	req = withChiURLParam(req, "agencyID", "agency-1")
	w := httptest.NewRecorder()

	h.RequestToJoin(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	code, _ := decodeErrorEnvelope(t, w)
	if code != model.ErrCodeMembershipPending {
		t.Errorf("code = %q, want %q", code, model.ErrCodeMembershipPending)
	}
}

func TestMembershipHandler_RequestToJoin_NoActor(t *testing.T) {
	h := NewMembershipHandler(&mockMembershipService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agencies/agency-1/join", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()

	h.RequestToJoin(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMembershipHandler_RequestToJoin_InvalidBody(t *testing.T) {
	h := NewMembershipHandler(&mockMembershipService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agencies/agency-1/join", bytes.NewBufferString(`{invalid`))
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.RequestToJoin(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- POST /api/agencies/memberships/{membershipID}/manage テスト ---

func TestMembershipHandler_Manage_Approve(t *testing.T) {
	svc := &mockMembershipService{
		manageFn: func(ctx context.Context, actor *model.AuthenticatedActor, membershipID, action string, commissionRate float64) (*model.AgencyMembership, error) {
			if membershipID != "membership-1" {
				t.Errorf("membershipID = %q", membershipID)
			}
			if action != "approve" {
				t.Errorf("action = %q, want approve", action)
			}
			if commissionRate != 0.2 {
				t.Errorf("commissionRate = %f, want 0.2", commissionRate)
			}
			return &model.AgencyMembership{
				ID:     membershipID,
				Status: model.MembershipStatusActive,
			}, nil
		},
	}
	recorder := &mockTransitionRecorder{}
	h := NewMembershipHandler(svc, recorder)

	body := `{"action": "approve", "commissionRate": 0.2}`
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/memberships/membership-1/manage", bytes.NewBufferString(body))
	req = withActor(req, agencyActor("user-2", "agency-1"))
	req = withChiURLParam(req, "membershipID", "membership-1")
	w := httptest.NewRecorder()

	h.Manage(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	data := decodeSuccessEnvelope(t, w)
	if data["status"] != "ACTIVE" {
		t.Errorf("data.status = %v, want ACTIVE", data["status"])
	}
	if len(recorder.transitions) != 1 || recorder.transitions[0] != "ACTIVE" {
		t.Errorf("transitions = %v, want [ACTIVE]", recorder.transitions)
	}
}

func TestMembershipHandler_Manage_InvalidAction(t *testing.T) {
	svc := &mockMembershipService{
		manageFn: func(ctx context.Context, actor *model.AuthenticatedActor, membershipID, action string, commissionRate float64) (*model.AgencyMembership, error) {
			return nil, model.NewInvalidActionError(action)
		},
	}
	h := NewMembershipHandler(svc, nil)

	body := `{"action": "escalate"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/memberships/membership-1/manage", bytes.NewBufferString(body))
	req = withActor(req, agencyActor("user-2", "agency-1"))
	req = withChiURLParam(req, "membershipID", "membership-1")
	w := httptest.NewRecorder()

	h.Manage(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	code, _ := decodeErrorEnvelope(t, w)
	if code != model.ErrCodeInvalidAction {
		t.Errorf("code = %q, want %q", code, model.ErrCodeInvalidAction)
	}
}

// --- POST /api/agencies/escort/leave テスト ---

func TestMembershipHandler_Leave_Success(t *testing.T) {
	called := false
	svc := &mockMembershipService{
		leaveFn: func(ctx context.Context, actor *model.AuthenticatedActor, reason string) error {
			called = true
			if reason != "移籍のため" {
				t.Errorf("reason = %q", reason)
			}
			return nil
		},
	}
	recorder := &mockTransitionRecorder{}
	h := NewMembershipHandler(svc, recorder)

	body := `{"reason": "移籍のため"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/escort/leave", bytes.NewBufferString(body))
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.Leave(w, req)

	if !called {
		t.Fatal("LeaveCurrentAgency was not called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if len(recorder.transitions) != 1 || recorder.transitions[0] != "REJECTED" {
		t.Errorf("transitions = %v, want [REJECTED]", recorder.transitions)
	}
}

func TestMembershipHandler_Leave_EmptyBody(t *testing.T) {
	svc := &mockMembershipService{
		leaveFn: func(ctx context.Context, actor *model.AuthenticatedActor, reason string) error {
			if reason != "" {
				t.Errorf("reason = %q, want empty", reason)
			}
			return nil
		},
	}
	h := NewMembershipHandler(svc, nil)

	// ボディ省略でもエラーにならない
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/escort/leave", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.Leave(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestMembershipHandler_Leave_NoActiveMembership(t *testing.T) {
	svc := &mockMembershipService{
		leaveFn: func(ctx context.Context, actor *model.AuthenticatedActor, reason string) error {
			return model.NewNoActiveMembershipError()
		},
	}
	h := NewMembershipHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agencies/escort/leave", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.Leave(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- POST /api/agencies/escorts/{escortID}/invite テスト ---

func TestMembershipHandler_Invite_Success(t *testing.T) {
	svc := &mockMembershipService{
		inviteEscortFn: func(ctx context.Context, actor *model.AuthenticatedActor, escortID string, input agency.InviteInput) (*model.AgencyInvitation, error) {
			if escortID != "escort-2" {
				t.Errorf("escortID = %q", escortID)
			}
			if input.ProposedCommission != 0.25 {
				t.Errorf("proposedCommission = %f", input.ProposedCommission)
			}
			return &model.AgencyInvitation{
				ID:                 "invitation-1",
				AgencyID:           actor.Agency.ID,
				EscortID:           escortID,
				Status:             model.InvitationStatusPending,
				ProposedCommission: input.ProposedCommission,
				ExpiresAt:          time.Now().AddDate(0, 0, 7),
			}, nil
		},
	}
	h := NewMembershipHandler(svc, nil)

	body := `{"message": "ぜひ弊社へ", "proposedCommission": 0.25, "proposedRole": "MEMBER"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/escorts/escort-2/invite", bytes.NewBufferString(body))
	req = withActor(req, agencyActor("user-2", "agency-1"))
	req = withChiURLParam(req, "escortID", "escort-2")
	w := httptest.NewRecorder()

	h.Invite(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	data := decodeSuccessEnvelope(t, w)
	if data["id"] != "invitation-1" {
		t.Errorf("data.id = %v", data["id"])
	}
}

func TestMembershipHandler_Invite_AlreadyMember(t *testing.T) {
	svc := &mockMembershipService{
		inviteEscortFn: func(ctx context.Context, actor *model.AuthenticatedActor, escortID string, input agency.InviteInput) (*model.AgencyInvitation, error) {
			return nil, model.NewEscortAlreadyMemberError()
		},
	}
	h := NewMembershipHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agencies/escorts/escort-2/invite", bytes.NewBufferString(`{}`))
	req = withActor(req, agencyActor("user-2", "agency-1"))
	req = withChiURLParam(req, "escortID", "escort-2")
	w := httptest.NewRecorder()

	h.Invite(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

// --- POST /api/agencies/invitations/{invitationID}/respond テスト ---

func TestMembershipHandler_Respond_Accept(t *testing.T) {
	svc := &mockMembershipService{
		respondToInvitationFn: func(ctx context.Context, actor *model.AuthenticatedActor, invitationID, action string) (*agency.InvitationResponse, error) {
			if action != "accept" {
				t.Errorf("action = %q, want accept", action)
			}
			return &agency.InvitationResponse{
				Invitation: &model.AgencyInvitation{
					ID:     invitationID,
					Status: model.InvitationStatusAccepted,
				},
				Membership: &model.AgencyMembership{
					ID:     "membership-1",
					Status: model.MembershipStatusActive,
				},
			}, nil
		},
	}
	recorder := &mockTransitionRecorder{}
	h := NewMembershipHandler(svc, recorder)

	body := `{"action": "accept"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/invitations/invitation-1/respond", bytes.NewBufferString(body))
	req = withActor(req, escortActor("user-1", "escort-1"))
	req = withChiURLParam(req, "invitationID", "invitation-1")
	w := httptest.NewRecorder()

	h.Respond(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	data := decodeSuccessEnvelope(t, w)
	if data["membership"] == nil {
		t.Error("membership is nil, want ACTIVE membership")
	}
	if len(recorder.transitions) != 1 || recorder.transitions[0] != "ACTIVE" {
		t.Errorf("transitions = %v, want [ACTIVE]", recorder.transitions)
	}
}

func TestMembershipHandler_Respond_Reject(t *testing.T) {
	svc := &mockMembershipService{
		respondToInvitationFn: func(ctx context.Context, actor *model.AuthenticatedActor, invitationID, action string) (*agency.InvitationResponse, error) {
			return &agency.InvitationResponse{
				Invitation: &model.AgencyInvitation{
					ID:     invitationID,
					Status: model.InvitationStatusRejected,
				},
			}, nil
		},
	}
	recorder := &mockTransitionRecorder{}
	h := NewMembershipHandler(svc, recorder)

	body := `{"action": "reject"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/invitations/invitation-1/respond", bytes.NewBufferString(body))
	req = withActor(req, escortActor("user-1", "escort-1"))
	req = withChiURLParam(req, "invitationID", "invitation-1")
	w := httptest.NewRecorder()

	h.Respond(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	data := decodeSuccessEnvelope(t, w)
	if _, ok := data["membership"]; ok {
		t.Error("membership should be absent for reject")
	}
	if len(recorder.transitions) != 0 {
		t.Errorf("transitions = %v, want empty", recorder.transitions)
	}
}

func TestMembershipHandler_Respond_NotFound(t *testing.T) {
	svc := &mockMembershipService{
		respondToInvitationFn: func(ctx context.Context, actor *model.AuthenticatedActor, invitationID, action string) (*agency.InvitationResponse, error) {
			return nil, model.NewInvitationNotFoundError(invitationID)
		},
	}
	h := NewMembershipHandler(svc, nil)

	body := `{"action": "accept"}`
	req := httptest.NewRequest(http.MethodPost, "/api/agencies/invitations/invitation-x/respond", bytes.NewBufferString(body))
	req = withActor(req, escortActor("user-1", "escort-1"))
	req = withChiURLParam(req, "invitationID", "invitation-x")
	w := httptest.NewRecorder()

	h.Respond(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- GET /api/agencies/escorts テスト ---

func TestMembershipHandler_ListEscorts(t *testing.T) {
	svc := &mockMembershipService{
		listAgencyEscortsFn: func(ctx context.Context, actor *model.AuthenticatedActor, status, search string) ([]repository.MembershipWithEscort, error) {
			if status != "active" {
				t.Errorf("status = %q, want active", status)
			}
			if search != "花子" {
				t.Errorf("search = %q", search)
			}
			return []repository.MembershipWithEscort{
				{
					AgencyMembership: model.AgencyMembership{
						ID:     "membership-1",
						Status: model.MembershipStatusActive,
					},
					EscortDisplayName: "花子",
					EscortIsVerified:  true,
				},
			}, nil
		},
	}
	h := NewMembershipHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/agencies/escorts?status=active&search=%E8%8A%B1%E5%AD%90", nil)
	req = withActor(req, agencyActor("user-2", "agency-1"))
	w := httptest.NewRecorder()

	h.ListEscorts(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	data := decodeSuccessEnvelope(t, w)
	escorts, ok := data["escorts"].([]interface{})
	if !ok || len(escorts) != 1 {
		t.Fatalf("escorts = %v, want 1 entry", data["escorts"])
	}
	entry := escorts[0].(map[string]interface{})
	if entry["escortDisplayName"] != "花子" {
		t.Errorf("escortDisplayName = %v", entry["escortDisplayName"])
	}
}

// --- GET /api/agencies/escort/membership-status テスト ---

func TestMembershipHandler_Status_WithMembership(t *testing.T) {
	verifiedAt := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	svc := &mockMembershipService{
		membershipStatusFn: func(ctx context.Context, actor *model.AuthenticatedActor) (*agency.StatusSummary, error) {
			return &agency.StatusSummary{
				Membership: &model.AgencyMembership{
					ID:     "membership-1",
					Status: model.MembershipStatusActive,
				},
				Agency: &model.Agency{
					ID:   "agency-1",
					Name: "テストエージェンシー",
				},
				IsVerified: true,
				VerifiedAt: &verifiedAt,
			}, nil
		},
	}
	h := NewMembershipHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/agencies/escort/membership-status", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.Status(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	data := decodeSuccessEnvelope(t, w)
	if data["isVerified"] != true {
		t.Errorf("isVerified = %v, want true", data["isVerified"])
	}
	if data["membership"] == nil {
		t.Error("membership is nil")
	}
	if data["agency"] == nil {
		t.Error("agency is nil")
	}
}

func TestMembershipHandler_Status_Unaffiliated(t *testing.T) {
	svc := &mockMembershipService{
		membershipStatusFn: func(ctx context.Context, actor *model.AuthenticatedActor) (*agency.StatusSummary, error) {
			return &agency.StatusSummary{}, nil
		},
	}
	h := NewMembershipHandler(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/agencies/escort/membership-status", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.Status(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	data := decodeSuccessEnvelope(t, w)
	if data["membership"] != nil {
		t.Errorf("membership = %v, want null", data["membership"])
	}
	if data["isVerified"] != false {
		t.Errorf("isVerified = %v, want false", data["isVerified"])
	}
}
