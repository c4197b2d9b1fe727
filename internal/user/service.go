// Package user はユーザーアカウントとプロフィールのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// Sanitizer はユーザー入力の自由テキストを無害化する。
type Sanitizer interface {
	Sanitize(s string) string
}

// Profile はユーザーと関連プロフィールを結合したドメインオブジェクト。
type Profile struct {
	User   *model.User
	Escort *model.Escort
	Agency *model.Agency
}

// EscortProfileInput はエスコートプロフィール作成の入力。
type EscortProfileInput struct {
	DisplayName string
	Location    string
	Bio         string
}

// AgencyProfileInput はエージェンシープロフィール作成の入力。
type AgencyProfileInput struct {
	Name        string
	Location    string
	Website     string
	Description string
}

// Service はユーザー管理のサービス層。
// プロフィール作成、退会、通報のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	escortRepo  repository.EscortRepository
	agencyRepo  repository.AgencyRepository
	reportRepo  repository.ReportRepository
	sanitizer   Sanitizer
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	escortRepo repository.EscortRepository,
	agencyRepo repository.AgencyRepository,
	reportRepo repository.ReportRepository,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		escortRepo:  escortRepo,
		agencyRepo:  agencyRepo,
		reportRepo:  reportRepo,
		sanitizer:   sanitizer,
	}
}

func (s *Service) sanitize(text string) string {
	if s.sanitizer == nil {
		return text
	}
	return s.sanitizer.Sanitize(text)
}

// GetProfile はユーザーと関連プロフィールを取得する。
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	escort, err := s.escortRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("エスコートプロフィールの取得に失敗しました: %w", err)
	}
	agency, err := s.agencyRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("エージェンシープロフィールの取得に失敗しました: %w", err)
	}

	return &Profile{User: user, Escort: escort, Agency: agency}, nil
}

// CreateEscortProfile はエスコートプロフィールを作成し、ユーザー種別をESCORTに更新する。
func (s *Service) CreateEscortProfile(ctx context.Context, userID string, input EscortProfileInput) (*model.Escort, error) {
	existing, err := s.escortRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("エスコートプロフィールの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewProfileExistsError()
	}

	now := time.Now()
	escort := &model.Escort{
		ID:          uuid.NewString(),
		UserID:      userID,
		DisplayName: s.sanitize(input.DisplayName),
		Location:    s.sanitize(input.Location),
		Bio:         s.sanitize(input.Bio),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.escortRepo.Create(ctx, escort); err != nil {
		return nil, fmt.Errorf("エスコートプロフィールの作成に失敗しました: %w", err)
	}

	if err := s.userRepo.UpdateUserType(ctx, userID, model.UserTypeEscort); err != nil {
		return nil, fmt.Errorf("ユーザー種別の更新に失敗しました: %w", err)
	}

	return escort, nil
}

// CreateAgencyProfile はエージェンシープロフィールを作成し、ユーザー種別をAGENCYに更新する。
func (s *Service) CreateAgencyProfile(ctx context.Context, userID string, input AgencyProfileInput) (*model.Agency, error) {
	existing, err := s.agencyRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("エージェンシープロフィールの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewProfileExistsError()
	}

	now := time.Now()
	agency := &model.Agency{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        s.sanitize(input.Name),
		Location:    s.sanitize(input.Location),
		Website:     s.sanitize(input.Website),
		Description: s.sanitize(input.Description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.agencyRepo.Create(ctx, agency); err != nil {
		return nil, fmt.Errorf("エージェンシープロフィールの作成に失敗しました: %w", err)
	}

	if err := s.userRepo.UpdateUserType(ctx, userID, model.UserTypeAgency); err != nil {
		return nil, fmt.Errorf("ユーザー種別の更新に失敗しました: %w", err)
	}

	return agency, nil
}

// CreateReport は他ユーザーへの通報を作成する。
func (s *Service) CreateReport(ctx context.Context, reporterID, targetUserID, reason, details string) (*model.Report, error) {
	target, err := s.userRepo.FindByID(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("通報対象の取得に失敗しました: %w", err)
	}
	if target == nil {
		return nil, model.NewUserNotFoundError()
	}

	report := &model.Report{
		ID:           uuid.NewString(),
		ReporterID:   reporterID,
		TargetUserID: targetUserID,
		Reason:       s.sanitize(reason),
		Details:      s.sanitize(details),
		Status:       model.ReportStatusOpen,
		CreatedAt:    time.Now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("通報の作成に失敗しました: %w", err)
	}

	return report, nil
}

// Withdraw は退会処理を行う。
// 全セッションを削除した後、ユーザーを削除する。
// プロフィール・メンバーシップ・通知はCASCADE削除される。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	return nil
}
