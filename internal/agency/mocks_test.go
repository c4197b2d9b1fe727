package agency

import (
	"context"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// --- モック ---

type mockAgencyRepo struct {
	findByIDFn     func(ctx context.Context, id string) (*model.Agency, error)
	findByUserIDFn func(ctx context.Context, userID string) (*model.Agency, error)
	searchFn       func(ctx context.Context, filter repository.AgencySearchFilter) ([]*model.Agency, int, error)
}

func (m *mockAgencyRepo) FindByID(ctx context.Context, id string) (*model.Agency, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockAgencyRepo) FindByUserID(ctx context.Context, userID string) (*model.Agency, error) {
	if m.findByUserIDFn != nil {
		return m.findByUserIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockAgencyRepo) Create(ctx context.Context, agency *model.Agency) error { return nil }
func (m *mockAgencyRepo) Search(ctx context.Context, filter repository.AgencySearchFilter) ([]*model.Agency, int, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, filter)
	}
	return nil, 0, nil
}
func (m *mockAgencyRepo) Count(ctx context.Context) (int, error) { return 0, nil }

type mockEscortRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Escort, error)
}

func (m *mockEscortRepo) FindByID(ctx context.Context, id string) (*model.Escort, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockEscortRepo) FindByUserID(ctx context.Context, userID string) (*model.Escort, error) {
	return nil, nil
}
func (m *mockEscortRepo) Create(ctx context.Context, escort *model.Escort) error { return nil }
func (m *mockEscortRepo) Count(ctx context.Context) (int, error)                 { return 0, nil }
func (m *mockEscortRepo) CountVerified(ctx context.Context) (int, error)         { return 0, nil }

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id}, nil
}
func (m *mockUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	return nil
}
func (m *mockUserRepo) UpdateUserType(ctx context.Context, id string, userType model.UserType) error {
	return nil
}
func (m *mockUserRepo) SetBan(ctx context.Context, id string, banned bool, reason string) error {
	return nil
}
func (m *mockUserRepo) CountByType(ctx context.Context) (map[model.UserType]int, error) {
	return nil, nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error { return nil }

type mockMembershipRepo struct {
	findByIDFn                   func(ctx context.Context, id string) (*model.AgencyMembership, error)
	findByEscortAndAgencyFn      func(ctx context.Context, escortID, agencyID string) (*model.AgencyMembership, error)
	findActiveByEscortFn         func(ctx context.Context, escortID string) (*model.AgencyMembership, error)
	createFn                     func(ctx context.Context, m *model.AgencyMembership) error
	resurrectFn                  func(ctx context.Context, id, message string) (*model.AgencyMembership, error)
	approveFn                    func(ctx context.Context, id, approvedBy string, commissionRate float64, role string) (*model.AgencyMembership, error)
	rejectFn                     func(ctx context.Context, id string) (*model.AgencyMembership, error)
	createActiveFromInvitationFn func(ctx context.Context, m *model.AgencyMembership, invitationID string, respondedAt time.Time) (*model.AgencyMembership, error)
	leaveFn                      func(ctx context.Context, membershipID, escortID, agencyID string) error
	listByAgencyFn               func(ctx context.Context, agencyID string, status model.MembershipStatus, search string) ([]repository.MembershipWithEscort, error)
}

func (m *mockMembershipRepo) FindByID(ctx context.Context, id string) (*model.AgencyMembership, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockMembershipRepo) FindByEscortAndAgency(ctx context.Context, escortID, agencyID string) (*model.AgencyMembership, error) {
	if m.findByEscortAndAgencyFn != nil {
		return m.findByEscortAndAgencyFn(ctx, escortID, agencyID)
	}
	return nil, nil
}
func (m *mockMembershipRepo) FindActiveByEscort(ctx context.Context, escortID string) (*model.AgencyMembership, error) {
	if m.findActiveByEscortFn != nil {
		return m.findActiveByEscortFn(ctx, escortID)
	}
	return nil, nil
}
func (m *mockMembershipRepo) Create(ctx context.Context, membership *model.AgencyMembership) error {
	if m.createFn != nil {
		return m.createFn(ctx, membership)
	}
	return nil
}
func (m *mockMembershipRepo) Resurrect(ctx context.Context, id, message string) (*model.AgencyMembership, error) {
	if m.resurrectFn != nil {
		return m.resurrectFn(ctx, id, message)
	}
	return nil, nil
}
func (m *mockMembershipRepo) Approve(ctx context.Context, id, approvedBy string, commissionRate float64, role string) (*model.AgencyMembership, error) {
	if m.approveFn != nil {
		return m.approveFn(ctx, id, approvedBy, commissionRate, role)
	}
	return nil, nil
}
func (m *mockMembershipRepo) Reject(ctx context.Context, id string) (*model.AgencyMembership, error) {
	if m.rejectFn != nil {
		return m.rejectFn(ctx, id)
	}
	return nil, nil
}
func (m *mockMembershipRepo) CreateActiveFromInvitation(ctx context.Context, membership *model.AgencyMembership, invitationID string, respondedAt time.Time) (*model.AgencyMembership, error) {
	if m.createActiveFromInvitationFn != nil {
		return m.createActiveFromInvitationFn(ctx, membership, invitationID, respondedAt)
	}
	return membership, nil
}
func (m *mockMembershipRepo) Leave(ctx context.Context, membershipID, escortID, agencyID string) error {
	if m.leaveFn != nil {
		return m.leaveFn(ctx, membershipID, escortID, agencyID)
	}
	return nil
}
func (m *mockMembershipRepo) ListByAgency(ctx context.Context, agencyID string, status model.MembershipStatus, search string) ([]repository.MembershipWithEscort, error) {
	if m.listByAgencyFn != nil {
		return m.listByAgencyFn(ctx, agencyID, status, search)
	}
	return nil, nil
}
func (m *mockMembershipRepo) CountByStatus(ctx context.Context) (map[model.MembershipStatus]int, error) {
	return nil, nil
}

type mockInvitationRepo struct {
	findByIDFn                     func(ctx context.Context, id string) (*model.AgencyInvitation, error)
	findPendingByAgencyAndEscortFn func(ctx context.Context, agencyID, escortID string, now time.Time) (*model.AgencyInvitation, error)
	createFn                       func(ctx context.Context, inv *model.AgencyInvitation) error
	markRejectedFn                 func(ctx context.Context, id string, respondedAt time.Time) error
	listByEscortFn                 func(ctx context.Context, escortID string, status model.InvitationStatus) ([]*model.AgencyInvitation, error)
}

func (m *mockInvitationRepo) FindByID(ctx context.Context, id string) (*model.AgencyInvitation, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockInvitationRepo) FindPendingByAgencyAndEscort(ctx context.Context, agencyID, escortID string, now time.Time) (*model.AgencyInvitation, error) {
	if m.findPendingByAgencyAndEscortFn != nil {
		return m.findPendingByAgencyAndEscortFn(ctx, agencyID, escortID, now)
	}
	return nil, nil
}
func (m *mockInvitationRepo) Create(ctx context.Context, inv *model.AgencyInvitation) error {
	if m.createFn != nil {
		return m.createFn(ctx, inv)
	}
	return nil
}
func (m *mockInvitationRepo) MarkRejected(ctx context.Context, id string, respondedAt time.Time) error {
	if m.markRejectedFn != nil {
		return m.markRejectedFn(ctx, id, respondedAt)
	}
	return nil
}
func (m *mockInvitationRepo) ListByEscort(ctx context.Context, escortID string, status model.InvitationStatus) ([]*model.AgencyInvitation, error) {
	if m.listByEscortFn != nil {
		return m.listByEscortFn(ctx, escortID, status)
	}
	return nil, nil
}
func (m *mockInvitationRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type mockVerificationRepo struct {
	createWithEscortUpdateFn func(ctx context.Context, v *model.EscortVerification, isRenewal bool) error
	findLatestByEscortFn     func(ctx context.Context, escortID string) (*model.EscortVerification, error)
	listExpiringFn           func(ctx context.Context, agencyID string, before time.Time, limit, offset int) ([]repository.VerificationWithEscort, int, error)
}

func (m *mockVerificationRepo) CreateWithEscortUpdate(ctx context.Context, v *model.EscortVerification, isRenewal bool) error {
	if m.createWithEscortUpdateFn != nil {
		return m.createWithEscortUpdateFn(ctx, v, isRenewal)
	}
	return nil
}
func (m *mockVerificationRepo) FindLatestByEscort(ctx context.Context, escortID string) (*model.EscortVerification, error) {
	if m.findLatestByEscortFn != nil {
		return m.findLatestByEscortFn(ctx, escortID)
	}
	return nil, nil
}
func (m *mockVerificationRepo) ListExpiring(ctx context.Context, agencyID string, before time.Time, limit, offset int) ([]repository.VerificationWithEscort, int, error) {
	if m.listExpiringFn != nil {
		return m.listExpiringFn(ctx, agencyID, before, limit, offset)
	}
	return nil, 0, nil
}
func (m *mockVerificationRepo) Count(ctx context.Context) (int, error) { return 0, nil }

type mockPricingRepo struct {
	listActiveFn func(ctx context.Context) ([]*model.VerificationPricing, error)
	findByIDFn   func(ctx context.Context, id string) (*model.VerificationPricing, error)
}

func (m *mockPricingRepo) ListActive(ctx context.Context) ([]*model.VerificationPricing, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}
func (m *mockPricingRepo) FindByID(ctx context.Context, id string) (*model.VerificationPricing, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

type mockReputationRepo struct {
	bumpFn func(ctx context.Context, agencyID string, delta float64) error
}

func (m *mockReputationRepo) Bump(ctx context.Context, agencyID string, delta float64) error {
	if m.bumpFn != nil {
		return m.bumpFn(ctx, agencyID, delta)
	}
	return nil
}

type mockNotifier struct {
	notifications []model.NotificationType
}

func (m *mockNotifier) Notify(ctx context.Context, userID string, notificationType model.NotificationType, title, body string) {
	m.notifications = append(m.notifications, notificationType)
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(s string) string { return s }

// --- フィクスチャ ---

type testDeps struct {
	agencyRepo       *mockAgencyRepo
	escortRepo       *mockEscortRepo
	userRepo         *mockUserRepo
	membershipRepo   *mockMembershipRepo
	invitationRepo   *mockInvitationRepo
	verificationRepo *mockVerificationRepo
	pricingRepo      *mockPricingRepo
	reputationRepo   *mockReputationRepo
	notifier         *mockNotifier
}

func newTestService() (*Service, *testDeps) {
	deps := &testDeps{
		agencyRepo:       &mockAgencyRepo{},
		escortRepo:       &mockEscortRepo{},
		userRepo:         &mockUserRepo{},
		membershipRepo:   &mockMembershipRepo{},
		invitationRepo:   &mockInvitationRepo{},
		verificationRepo: &mockVerificationRepo{},
		pricingRepo:      &mockPricingRepo{},
		reputationRepo:   &mockReputationRepo{},
		notifier:         &mockNotifier{},
	}
	svc := NewService(
		deps.agencyRepo, deps.escortRepo, deps.userRepo,
		deps.membershipRepo, deps.invitationRepo, deps.verificationRepo,
		deps.pricingRepo, deps.reputationRepo,
		deps.notifier, passthroughSanitizer{},
	)
	return svc, deps
}

func escortActor() *model.AuthenticatedActor {
	return &model.AuthenticatedActor{
		UserID:   "user-escort",
		UserType: model.UserTypeEscort,
		Escort: &model.Escort{
			ID:          "escort-1",
			UserID:      "user-escort",
			DisplayName: "テスト花子",
		},
	}
}

func agencyActor() *model.AuthenticatedActor {
	return &model.AuthenticatedActor{
		UserID:   "user-agency",
		UserType: model.UserTypeAgency,
		Agency: &model.Agency{
			ID:       "agency-1",
			UserID:   "user-agency",
			Name:     "テストエージェンシー",
			IsActive: true,
		},
	}
}
