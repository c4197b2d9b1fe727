package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// --- モック定義 ---

// mockNotificationService はNotificationServiceInterfaceのモック実装。
type mockNotificationService struct {
	listFn        func(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]*model.Notification, error)
	markReadFn    func(ctx context.Context, userID, notificationID string) error
	markAllReadFn func(ctx context.Context, userID string) error
}

func (m *mockNotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]*model.Notification, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, unreadOnly, page, limit)
	}
	return nil, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, userID, notificationID)
	}
	return nil
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if m.markAllReadFn != nil {
		return m.markAllReadFn(ctx, userID)
	}
	return nil
}

var _ NotificationServiceInterface = (*mockNotificationService)(nil)

// --- GET /api/notifications テスト ---

func TestNotificationHandler_List_UnreadFilter(t *testing.T) {
	svc := &mockNotificationService{
		listFn: func(ctx context.Context, userID string, unreadOnly bool, page, limit int) ([]*model.Notification, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q", userID)
			}
			if !unreadOnly {
				t.Error("unreadOnly = false, want true")
			}
			if page != 2 || limit != 10 {
				t.Errorf("page = %d, limit = %d, want 2, 10", page, limit)
			}
			return []*model.Notification{
				{
					ID:        "notification-1",
					UserID:    userID,
					Type:      model.NotificationTypeInvitation,
					Title:     "新しい勧誘が届きました",
					IsRead:    false,
					CreatedAt: time.Now(),
				},
			}, nil
		},
	}
	h := NewNotificationHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications?unread=true&page=2&limit=10", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	data := decodeSuccessEnvelope(t, w)
	notifications, ok := data["notifications"].([]interface{})
	if !ok || len(notifications) != 1 {
		t.Fatalf("notifications = %v, want 1 entry", data["notifications"])
	}
}

func TestNotificationHandler_List_InvalidUnreadParam(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/notifications?unread=banana", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestNotificationHandler_List_EmptyResult(t *testing.T) {
	h := NewNotificationHandler(&mockNotificationService{})

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	data := decodeSuccessEnvelope(t, w)
	notifications, ok := data["notifications"].([]interface{})
	if !ok {
		t.Fatalf("notifications should be an empty array, got %v", data["notifications"])
	}
	if len(notifications) != 0 {
		t.Errorf("notifications = %v, want empty", notifications)
	}
}

// --- POST /api/notifications/{notificationID}/read テスト ---

func TestNotificationHandler_MarkRead(t *testing.T) {
	markedID := ""
	svc := &mockNotificationService{
		markReadFn: func(ctx context.Context, userID, notificationID string) error {
			markedID = notificationID
			return nil
		},
	}
	h := NewNotificationHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/notification-1/read", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	req = withChiURLParam(req, "notificationID", "notification-1")
	w := httptest.NewRecorder()

	h.MarkRead(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if markedID != "notification-1" {
		t.Errorf("markedID = %q, want notification-1", markedID)
	}
}

// --- POST /api/notifications/read-all テスト ---

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	called := false
	svc := &mockNotificationService{
		markAllReadFn: func(ctx context.Context, userID string) error {
			called = true
			if userID != "user-1" {
				t.Errorf("userID = %q", userID)
			}
			return nil
		},
	}
	h := NewNotificationHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/read-all", nil)
	req = withActor(req, escortActor("user-1", "escort-1"))
	w := httptest.NewRecorder()

	h.MarkAllRead(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !called {
		t.Error("MarkAllRead was not called")
	}
}
