// Package notification は状態遷移に伴うユーザー通知を提供する。
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// FailureRecorder は通知作成失敗メトリクスの記録先。
type FailureRecorder interface {
	RecordNotificationFailure()
}

// Service は通知のサービス層。
// 通知の作成は副作用専用であり、失敗してもログに記録するだけで
// 呼び出し元のトランザクションには影響させない。
type Service struct {
	repo    repository.NotificationRepository
	metrics FailureRecorder
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnil可。
func NewService(repo repository.NotificationRepository, metrics FailureRecorder) *Service {
	return &Service{repo: repo, metrics: metrics}
}

// Notify は通知を作成する。失敗はログに記録し、エラーは伝播させない。
func (s *Service) Notify(ctx context.Context, userID string, notificationType model.NotificationType, title, body string) {
	n := &model.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      notificationType,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		slog.Error("failed to create notification",
			"user_id", userID,
			"type", notificationType,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.RecordNotificationFailure()
		}
	}
}

// List はユーザーの通知一覧を新しい順で返す。
func (s *Service) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]*model.Notification, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, err := s.repo.ListByUser(ctx, userID, unreadOnly, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("通知一覧の取得に失敗しました: %w", err)
	}
	return notifications, nil
}

// MarkRead は指定通知を既読にする。
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		return fmt.Errorf("通知の既読化に失敗しました: %w", err)
	}
	return nil
}

// MarkAllRead はユーザーの全通知を既読にする。
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("通知の一括既読化に失敗しました: %w", err)
	}
	return nil
}
