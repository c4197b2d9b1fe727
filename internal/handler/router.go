package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/metrics"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/middleware"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Authenticator     middleware.Authenticator
	EscortFinder      middleware.EscortFinder
	AgencyFinder      middleware.AgencyFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス（nil可）
	Metrics  metrics.MetricsCollector
	Gatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ユーザー・プロフィール
	UserService UserServiceInterface

	// エージェンシー
	MembershipService   MembershipServiceInterface
	AgencySearchService AgencySearchServiceInterface
	VerificationService VerificationServiceInterface

	// 通知
	NotificationService NotificationServiceInterface

	// 管理者
	AdminService AdminServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → SecurityHeaders → Logging → Actor → RateLimit(General)
//
// 認証ルート（/auth/*）、/health、/metrics、料金表はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)
	membershipHandler := NewMembershipHandler(deps.MembershipService, deps.Metrics)
	agencyHandler := NewAgencyHandler(deps.AgencySearchService)
	verificationHandler := NewVerificationHandler(deps.VerificationService, deps.Metrics)
	notificationHandler := NewNotificationHandler(deps.NotificationService)
	adminHandler := NewAdminHandler(deps.AdminService)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// 検証料金表は公開情報
	r.Get("/api/agencies/verification-pricing", verificationHandler.ListPricing)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Actor → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewActorMiddleware(deps.Authenticator, deps.EscortFinder, deps.AgencyFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロフィール管理
		r.Route("/api/profiles", func(r chi.Router) {
			r.Get("/me", userHandler.GetProfile)
			r.Post("/escort", userHandler.CreateEscortProfile)
			r.Post("/agency", userHandler.CreateAgencyProfile)
		})

		// 通報
		r.Post("/api/reports", userHandler.CreateReport)

		// エージェンシー・メンバーシップ管理
		r.Route("/api/agencies", func(r chi.Router) {
			r.Get("/search", agencyHandler.Search)

			// POST /api/agencies/{agencyID}/join - 加入申請（申請専用レート制限を追加）
			r.With(deps.RateLimiter.JoinMiddleware()).Post("/{agencyID}/join", membershipHandler.RequestToJoin)

			r.Route("/escorts", func(r chi.Router) {
				r.Get("/", membershipHandler.ListEscorts)

				// POST /api/agencies/escorts/{escortID}/invite - 勧誘（申請専用レート制限を追加）
				r.With(deps.RateLimiter.JoinMiddleware()).Post("/{escortID}/invite", membershipHandler.Invite)

				r.Post("/{escortID}/verify", verificationHandler.Verify)
				r.Post("/{escortID}/verify/renew", verificationHandler.Verify)
			})

			r.Post("/invitations/{invitationID}/respond", membershipHandler.Respond)
			r.Post("/memberships/{membershipID}/manage", membershipHandler.Manage)
			r.Get("/verifications/expiring", verificationHandler.ListExpiring)

			// エスコート側の操作
			r.Route("/escort", func(r chi.Router) {
				r.Get("/invitations", membershipHandler.ListInvitations)
				r.Get("/membership-status", membershipHandler.Status)
				r.Post("/leave", membershipHandler.Leave)
			})
		})

		// 通知管理
		r.Route("/api/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Post("/{notificationID}/read", notificationHandler.MarkRead)
			r.Post("/read-all", notificationHandler.MarkAllRead)
		})

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Delete("/me", userHandler.Withdraw)
		})

		// 管理者専用
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.RequireUserType(model.UserTypeAdmin))

			r.Post("/users/{userID}/ban", adminHandler.BanUser)
			r.Post("/users/{userID}/unban", adminHandler.UnbanUser)
			r.Get("/reports", adminHandler.ListReports)
			r.Post("/reports/{reportID}/resolve", adminHandler.ResolveReport)
			r.Get("/metrics", adminHandler.GetPlatformStats)
		})
	})

	return r
}
