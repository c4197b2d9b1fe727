// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

const sessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// actorContextKey はリクエストコンテキストに実行主体を格納するためのキー。
var actorContextKey = contextKey("actor")

// Authenticator はセッションIDからユーザーを解決するインターフェース。
// auth.Serviceの部分集合として定義する。
type Authenticator interface {
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// EscortFinder はユーザーIDからエスコートプロフィールを検索する。
type EscortFinder interface {
	FindByUserID(ctx context.Context, userID string) (*model.Escort, error)
}

// AgencyFinder はユーザーIDからエージェンシープロフィールを検索する。
type AgencyFinder interface {
	FindByUserID(ctx context.Context, userID string) (*model.Agency, error)
}

// NewActorMiddleware はHTTP Only Cookieからセッションを読み取り、
// ユーザーと関連プロフィールをAuthenticatedActorとして解決するミドルウェアを返す。
// 未認証リクエストには401、BAN済みユーザーには403を返す。
func NewActorMiddleware(auth Authenticator, escortFinder EscortFinder, agencyFinder AgencyFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
					Code: "UNAUTHORIZED", Message: "認証が必要です。", Category: "auth",
				})
				return
			}

			user, err := auth.GetCurrentUser(r.Context(), cookie.Value)
			if err != nil {
				var apiErr *model.APIError
				if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUserBanned {
					WriteErrorResponse(w, http.StatusForbidden, apiErr)
					return
				}
				WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
					Code: "UNAUTHORIZED", Message: "認証が必要です。", Category: "auth",
				})
				return
			}

			actor := &model.AuthenticatedActor{
				UserID:   user.ID,
				UserType: user.UserType,
			}

			// 種別に応じたプロフィールを解決する。欠損はサービス層で検出する。
			switch user.UserType {
			case model.UserTypeEscort:
				escort, err := escortFinder.FindByUserID(r.Context(), user.ID)
				if err != nil {
					slog.Error("failed to load escort profile",
						slog.String("user_id", user.ID),
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
					return
				}
				actor.Escort = escort
			case model.UserTypeAgency:
				agency, err := agencyFinder.FindByUserID(r.Context(), user.ID)
				if err != nil {
					slog.Error("failed to load agency profile",
						slog.String("user_id", user.ID),
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
					return
				}
				actor.Agency = agency
			}

			ctx := context.WithValue(r.Context(), actorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext はリクエストコンテキストから実行主体を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func ActorFromContext(ctx context.Context) (*model.AuthenticatedActor, error) {
	actor, ok := ctx.Value(actorContextKey).(*model.AuthenticatedActor)
	if !ok || actor == nil {
		return nil, fmt.Errorf("actor not found in context")
	}
	return actor, nil
}

// ContextWithActor はコンテキストに実行主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithActor(ctx context.Context, actor *model.AuthenticatedActor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// RequireUserType は実行主体が指定種別であることを要求するミドルウェアを返す。
// 種別が一致しない場合は403を返す。
func RequireUserType(userType model.UserType) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ActorFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, &model.APIError{
					Code: "UNAUTHORIZED", Message: "認証が必要です。", Category: "auth",
				})
				return
			}
			if actor.UserType != userType {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenUserTypeError(userType))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
