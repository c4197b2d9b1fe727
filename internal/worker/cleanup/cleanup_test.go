package cleanup

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// --- モック ---

type mockInvitationPurger struct {
	called bool
	cutoff time.Time
	count  int64
	err    error
}

func (m *mockInvitationPurger) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.called = true
	m.cutoff = cutoff
	return m.count, m.err
}

type mockNotificationPurger struct {
	called bool
	cutoff time.Time
	count  int64
	err    error
}

func (m *mockNotificationPurger) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.called = true
	m.cutoff = cutoff
	return m.count, m.err
}

type mockDeletionRecorder struct {
	deleted map[string]int64
}

func (m *mockDeletionRecorder) RecordCleanupDeleted(target string, count int64) {
	if m.deleted == nil {
		m.deleted = make(map[string]int64)
	}
	m.deleted[target] += count
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestNewCleanupJob_DefaultRetention(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockInvitationPurger{}, &mockNotificationPurger{}, nil, newTestLogger(&buf))

	if job.InvitationRetentionDays != 90 {
		t.Errorf("InvitationRetentionDays = %d, want 90", job.InvitationRetentionDays)
	}
	if job.NotificationRetentionDays != 90 {
		t.Errorf("NotificationRetentionDays = %d, want 90", job.NotificationRetentionDays)
	}
}

func TestCleanupJob_Run_PurgesBothTargets(t *testing.T) {
	var buf bytes.Buffer
	invitations := &mockInvitationPurger{count: 5}
	notifications := &mockNotificationPurger{count: 12}
	recorder := &mockDeletionRecorder{}
	job := NewCleanupJob(invitations, notifications, recorder, newTestLogger(&buf))

	now := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() がエラーを返した: %v", err)
	}

	if !invitations.called {
		t.Fatal("DeleteExpiredBefore が呼び出されなかった")
	}
	if !notifications.called {
		t.Fatal("DeleteReadBefore が呼び出されなかった")
	}

	wantCutoff := now.AddDate(0, 0, -90)
	if !invitations.cutoff.Equal(wantCutoff) {
		t.Errorf("invitation cutoff = %v, want %v", invitations.cutoff, wantCutoff)
	}
	if !notifications.cutoff.Equal(wantCutoff) {
		t.Errorf("notification cutoff = %v, want %v", notifications.cutoff, wantCutoff)
	}

	if recorder.deleted["invitations"] != 5 {
		t.Errorf("recorded invitations = %d, want 5", recorder.deleted["invitations"])
	}
	if recorder.deleted["notifications"] != 12 {
		t.Errorf("recorded notifications = %d, want 12", recorder.deleted["notifications"])
	}
}

func TestCleanupJob_Run_CustomRetention(t *testing.T) {
	var buf bytes.Buffer
	invitations := &mockInvitationPurger{}
	job := NewCleanupJob(invitations, &mockNotificationPurger{}, nil, newTestLogger(&buf))
	job.InvitationRetentionDays = 30

	now := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() がエラーを返した: %v", err)
	}

	wantCutoff := now.AddDate(0, 0, -30)
	if !invitations.cutoff.Equal(wantCutoff) {
		t.Errorf("invitation cutoff = %v, want %v", invitations.cutoff, wantCutoff)
	}
}

func TestCleanupJob_Run_InvitationErrorDoesNotSkipNotifications(t *testing.T) {
	var buf bytes.Buffer
	invitations := &mockInvitationPurger{err: errors.New("db down")}
	notifications := &mockNotificationPurger{count: 3}
	job := NewCleanupJob(invitations, notifications, nil, newTestLogger(&buf))

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("Run() はエラーを返すべき")
	}
	if !strings.Contains(err.Error(), "失効済み勧誘の削除に失敗") {
		t.Errorf("err = %v", err)
	}

	// エラーでももう片方の削除は実行される
	if !notifications.called {
		t.Error("DeleteReadBefore が呼び出されなかった")
	}
}

func TestCleanupJob_Run_LogsDeletedCounts(t *testing.T) {
	var buf bytes.Buffer
	job := NewCleanupJob(&mockInvitationPurger{count: 7}, &mockNotificationPurger{count: 2}, nil, newTestLogger(&buf))

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() がエラーを返した: %v", err)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, `"deleted_invitations":7`) {
		t.Errorf("ログに削除件数が含まれない: %s", logOutput)
	}
	if !strings.Contains(logOutput, `"deleted_notifications":2`) {
		t.Errorf("ログに削除件数が含まれない: %s", logOutput)
	}
}
