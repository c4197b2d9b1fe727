package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	updateUserTypeFn func(ctx context.Context, id string, userType model.UserType) error
	deleteByIDFn     func(ctx context.Context, id string) error
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
	if m.updateUserTypeFn != nil {
		return m.updateUserTypeFn(ctx, id, userType)
	}
	return nil
}
func (m *mockUserRepo) SetBan(ctx context.Context, id string, banned bool, reason string) error {
	return nil
}
func (m *mockUserRepo) CountByType(ctx context.Context) (map[model.UserType]int, error) {
	return nil, nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockSessionRepo struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error { return nil }
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error { return nil }
func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

type mockEscortRepo struct {
	findByUserIDFn func(ctx context.Context, userID string) (*model.Escort, error)
	createFn       func(ctx context.Context, escort *model.Escort) error
}

func (m *mockEscortRepo) FindByID(ctx context.Context, id string) (*model.Escort, error) {
	return nil, nil
}
func (m *mockEscortRepo) FindByUserID(ctx context.Context, userID string) (*model.Escort, error) {
	if m.findByUserIDFn != nil {
		return m.findByUserIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockEscortRepo) Create(ctx context.Context, escort *model.Escort) error {
	if m.createFn != nil {
		return m.createFn(ctx, escort)
	}
	return nil
}
func (m *mockEscortRepo) Count(ctx context.Context) (int, error)         { return 0, nil }
func (m *mockEscortRepo) CountVerified(ctx context.Context) (int, error) { return 0, nil }

type mockAgencyRepo struct {
	findByUserIDFn func(ctx context.Context, userID string) (*model.Agency, error)
	createFn       func(ctx context.Context, agency *model.Agency) error
}

func (m *mockAgencyRepo) FindByID(ctx context.Context, id string) (*model.Agency, error) {
	return nil, nil
}
func (m *mockAgencyRepo) FindByUserID(ctx context.Context, userID string) (*model.Agency, error) {
	if m.findByUserIDFn != nil {
		return m.findByUserIDFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockAgencyRepo) Create(ctx context.Context, agency *model.Agency) error {
	if m.createFn != nil {
		return m.createFn(ctx, agency)
	}
	return nil
}
func (m *mockAgencyRepo) Search(ctx context.Context, filter repository.AgencySearchFilter) ([]*model.Agency, int, error) {
	return nil, 0, nil
}
func (m *mockAgencyRepo) Count(ctx context.Context) (int, error) { return 0, nil }

type mockReportRepo struct {
	createFn func(ctx context.Context, r *model.Report) error
}

func (m *mockReportRepo) Create(ctx context.Context, r *model.Report) error {
	if m.createFn != nil {
		return m.createFn(ctx, r)
	}
	return nil
}
func (m *mockReportRepo) FindByID(ctx context.Context, id string) (*model.Report, error) {
	return nil, nil
}
func (m *mockReportRepo) List(ctx context.Context, status model.ReportStatus, limit, offset int) ([]*model.Report, int, error) {
	return nil, 0, nil
}
func (m *mockReportRepo) Resolve(ctx context.Context, id string, status model.ReportStatus, resolution, resolvedBy string) (*model.Report, error) {
	return nil, nil
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(s string) string { return s }

type testDeps struct {
	userRepo    *mockUserRepo
	sessionRepo *mockSessionRepo
	escortRepo  *mockEscortRepo
	agencyRepo  *mockAgencyRepo
	reportRepo  *mockReportRepo
}

func newTestService() (*Service, *testDeps) {
	deps := &testDeps{
		userRepo:    &mockUserRepo{},
		sessionRepo: &mockSessionRepo{},
		escortRepo:  &mockEscortRepo{},
		agencyRepo:  &mockAgencyRepo{},
		reportRepo:  &mockReportRepo{},
	}
	svc := NewService(deps.userRepo, deps.sessionRepo, deps.escortRepo, deps.agencyRepo, deps.reportRepo, passthroughSanitizer{})
	return svc, deps
}

// --- テスト ---

// TestCreateEscortProfile はプロフィール作成時にユーザー種別がESCORTへ更新されることを検証する。
func TestCreateEscortProfile(t *testing.T) {
	svc, deps := newTestService()

	var created *model.Escort
	deps.escortRepo.createFn = func(ctx context.Context, escort *model.Escort) error {
		created = escort
		return nil
	}
	var updatedType model.UserType
	deps.userRepo.updateUserTypeFn = func(ctx context.Context, id string, userType model.UserType) error {
		updatedType = userType
		return nil
	}

	escort, err := svc.CreateEscortProfile(context.Background(), "user-1", EscortProfileInput{
		DisplayName: "テスト花子",
		Location:    "東京",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil || escort.DisplayName != "テスト花子" {
		t.Error("expected escort profile to be created")
	}
	if updatedType != model.UserTypeEscort {
		t.Errorf("user type = %q, want ESCORT", updatedType)
	}
}

// TestCreateEscortProfile_AlreadyExists は重複作成がPROFILE_EXISTSになることを検証する。
func TestCreateEscortProfile_AlreadyExists(t *testing.T) {
	svc, deps := newTestService()
	deps.escortRepo.findByUserIDFn = func(ctx context.Context, userID string) (*model.Escort, error) {
		return &model.Escort{ID: "escort-1", UserID: userID}, nil
	}

	_, err := svc.CreateEscortProfile(context.Background(), "user-1", EscortProfileInput{DisplayName: "x"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProfileExists {
		t.Errorf("error = %v, want PROFILE_EXISTS", err)
	}
}

// TestCreateAgencyProfile はエージェンシープロフィールがアクティブ状態で作成されることを検証する。
func TestCreateAgencyProfile(t *testing.T) {
	svc, deps := newTestService()

	var created *model.Agency
	deps.agencyRepo.createFn = func(ctx context.Context, agency *model.Agency) error {
		created = agency
		return nil
	}

	_, err := svc.CreateAgencyProfile(context.Background(), "user-1", AgencyProfileInput{Name: "テストエージェンシー"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil || !created.IsActive {
		t.Error("new agency should be active")
	}
	if created.TotalEscorts != 0 || created.VerifiedEscorts != 0 {
		t.Error("new agency counters should start at zero")
	}
}

// TestCreateReport_TargetNotFound は存在しないユーザーへの通報がUSER_NOT_FOUNDになることを検証する。
func TestCreateReport_TargetNotFound(t *testing.T) {
	svc, deps := newTestService()
	deps.userRepo.findByIDFn = func(ctx context.Context, id string) (*model.User, error) {
		return nil, nil
	}

	_, err := svc.CreateReport(context.Background(), "user-1", "missing", "spam", "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error = %v, want USER_NOT_FOUND", err)
	}
}

// TestCreateReport はOPEN状態の通報が作成されることを検証する。
func TestCreateReport(t *testing.T) {
	svc, deps := newTestService()

	var created *model.Report
	deps.reportRepo.createFn = func(ctx context.Context, r *model.Report) error {
		created = r
		return nil
	}

	report, err := svc.CreateReport(context.Background(), "user-1", "user-2", "迷惑行為", "詳細")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil || report.Status != model.ReportStatusOpen {
		t.Errorf("report.Status = %q, want OPEN", report.Status)
	}
	if created.CreatedAt.After(time.Now()) {
		t.Error("created_at should not be in the future")
	}
}

// TestWithdraw は退会処理がセッションとユーザーを削除することを検証する。
func TestWithdraw(t *testing.T) {
	svc, deps := newTestService()

	sessionDeleteCalled := false
	deps.sessionRepo.deleteByUserIDFn = func(ctx context.Context, userID string) error {
		sessionDeleteCalled = true
		return nil
	}
	userDeleteCalled := false
	deps.userRepo.deleteByIDFn = func(ctx context.Context, id string) error {
		userDeleteCalled = true
		return nil
	}

	if err := svc.Withdraw(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sessionDeleteCalled || !userDeleteCalled {
		t.Error("withdraw should delete sessions and the user")
	}
}
