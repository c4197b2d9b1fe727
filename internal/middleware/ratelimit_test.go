package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

func actorRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	actor := &model.AuthenticatedActor{UserID: userID, UserType: model.UserTypeEscort}
	return req.WithContext(ContextWithActor(req.Context(), actor))
}

func newTestRateLimiter(generalBurst, joinBurst int) *RateLimiter {
	// レートを極端に遅くし、テスト中の補充を無視できるようにする
	return NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001),
		GeneralBurst:    generalBurst,
		JoinRate:        rate.Limit(0.001),
		JoinBurst:       joinBurst,
		CleanupInterval: time.Hour,
	})
}

func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(3, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, actorRequest("user-1"))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}

	// バーストを超えた4回目は拒否される
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, actorRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
}

// TestGeneralMiddleware_PerUser はレート制限がユーザーごとに独立であることを検証する。
func TestGeneralMiddleware_PerUser(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, actorRequest("user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("user-1 first request: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, actorRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("user-1 second request: status = %d, want 429", rec.Code)
	}

	// 別ユーザーは制限されない
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, actorRequest("user-2"))
	if rec.Code != http.StatusOK {
		t.Errorf("user-2 request: status = %d, want 200", rec.Code)
	}

	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("limiter count = %d, want 2", rl.GeneralLimiterCount())
	}
}

// TestJoinMiddleware_IndependentFromGeneral は申請用リミッターが
// API全般リミッターと独立に動作することを検証する。
func TestJoinMiddleware_IndependentFromGeneral(t *testing.T) {
	rl := newTestRateLimiter(10, 1)
	defer rl.Stop()

	general := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	join := rl.JoinMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 申請リミッターを使い切る
	rec := httptest.NewRecorder()
	join.ServeHTTP(rec, actorRequest("user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first join request: status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	join.ServeHTTP(rec, actorRequest("user-1"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second join request: status = %d, want 429", rec.Code)
	}

	// API全般はまだ許可される
	rec = httptest.NewRecorder()
	general.ServeHTTP(rec, actorRequest("user-1"))
	if rec.Code != http.StatusOK {
		t.Errorf("general request: status = %d, want 200", rec.Code)
	}
}

func TestRateLimitMiddleware_NoActor(t *testing.T) {
	rl := newTestRateLimiter(1, 1)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/test", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()
	if config.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", config.GeneralBurst)
	}
	if config.JoinBurst != 10 {
		t.Errorf("JoinBurst = %d, want 10", config.JoinBurst)
	}
}
