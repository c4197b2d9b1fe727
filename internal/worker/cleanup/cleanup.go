// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 保持期間を超過した失効済み勧誘と既読通知を日次バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// InvitationPurger は失効済み勧誘の削除先。
type InvitationPurger interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationPurger は既読通知の削除先。
type NotificationPurger interface {
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DeletionRecorder は削除件数メトリクスの記録先。
type DeletionRecorder interface {
	RecordCleanupDeleted(target string, count int64)
}

// CleanupJob は保持期間を超過した勧誘・通知の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	invitations   InvitationPurger
	notifications NotificationPurger
	metrics       DeletionRecorder
	logger        *slog.Logger
	now           func() time.Time

	// InvitationRetentionDays は失効済み勧誘の保持日数（デフォルト: 90）
	InvitationRetentionDays int
	// NotificationRetentionDays は既読通知の保持日数（デフォルト: 90）
	NotificationRetentionDays int
}

// NewCleanupJob は新しいCleanupJobを生成する。
// metricsはnil可。デフォルトの保持日数はどちらも90日。
func NewCleanupJob(invitations InvitationPurger, notifications NotificationPurger, metrics DeletionRecorder, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		invitations:               invitations,
		notifications:             notifications,
		metrics:                   metrics,
		logger:                    logger,
		now:                       time.Now,
		InvitationRetentionDays:   90,
		NotificationRetentionDays: 90,
	}
}

// Run は保持期間を超過した失効済み勧誘と既読通知を削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
// 片方の削除が失敗してももう片方は実行し、最初のエラーを返す。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := j.now()
	var firstErr error

	invitationCutoff := start.AddDate(0, 0, -j.InvitationRetentionDays)
	invitationCount, err := j.invitations.DeleteExpiredBefore(ctx, invitationCutoff)
	if err != nil {
		j.logger.Error("失効済み勧誘の削除に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.InvitationRetentionDays),
		)
		firstErr = fmt.Errorf("失効済み勧誘の削除に失敗: %w", err)
	} else {
		j.recordDeleted("invitations", invitationCount)
	}

	notificationCutoff := start.AddDate(0, 0, -j.NotificationRetentionDays)
	notificationCount, err := j.notifications.DeleteReadBefore(ctx, notificationCutoff)
	if err != nil {
		j.logger.Error("既読通知の削除に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.NotificationRetentionDays),
		)
		if firstErr == nil {
			firstErr = fmt.Errorf("既読通知の削除に失敗: %w", err)
		}
	} else {
		j.recordDeleted("notifications", notificationCount)
	}

	if firstErr != nil {
		return firstErr
	}

	duration := j.now().Sub(start)
	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("deleted_invitations", invitationCount),
		slog.Int64("deleted_notifications", notificationCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

func (j *CleanupJob) recordDeleted(target string, count int64) {
	if j.metrics != nil {
		j.metrics.RecordCleanupDeleted(target, count)
	}
}
