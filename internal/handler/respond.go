// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/middleware"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// successResponse はAPI成功レスポンスの統一フォーマット。
type successResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// errorResponse はAPIエラーレスポンスの統一フォーマット。
type errorResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// writeSuccess は統一フォーマットで成功レスポンスを書き込む。
func writeSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

// writeAPIErrorResponse は統一フォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(errorResponse{
		Success:   false,
		Message:   apiErr.Message,
		Code:      apiErr.Code,
		Timestamp: time.Now().UTC(),
	})
}

// writeInvalidRequest はリクエストボディ解析失敗のレスポンスを書き込む。
func writeInvalidRequest(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidAction:
		return http.StatusBadRequest
	case model.ErrCodeMembershipPending,
		model.ErrCodeMembershipActive,
		model.ErrCodeInvitationExists,
		model.ErrCodeEscortAlreadyMember,
		model.ErrCodeProfileExists:
		return http.StatusConflict
	case model.ErrCodeAgencyNotFound,
		model.ErrCodeEscortNotFound,
		model.ErrCodeMembershipNotFound,
		model.ErrCodeNoActiveMembership,
		model.ErrCodeInvitationNotFound,
		model.ErrCodeUserNotFound,
		model.ErrCodeReportNotFound:
		return http.StatusNotFound
	case model.ErrCodeVerificationDenied,
		model.ErrCodeForbiddenUserType,
		model.ErrCodeUserBanned:
		return http.StatusForbidden
	case model.ErrCodeEscortDataMissing:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// actorFromRequest はリクエストから実行主体を取得する。
// 取得できない場合は401レスポンスを書き込み、okにfalseを返す。
func actorFromRequest(w http.ResponseWriter, r *http.Request) (*model.AuthenticatedActor, bool) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
			Code:     "UNAUTHORIZED",
			Message:  "認証が必要です。",
			Category: "auth",
		})
		return nil, false
	}
	return actor, true
}
