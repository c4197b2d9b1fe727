package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/admin"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// AdminServiceInterface は管理者ハンドラーが必要とするサービスインターフェース。
type AdminServiceInterface interface {
	BanUser(ctx context.Context, targetUserID, reason string) (*model.User, error)
	UnbanUser(ctx context.Context, targetUserID string) (*model.User, error)
	ListReports(ctx context.Context, status string, page, limit int) ([]*model.Report, admin.Pagination, error)
	ResolveReport(ctx context.Context, adminUserID, reportID, action, resolution string) (*model.Report, error)
	GetPlatformStats(ctx context.Context) (*admin.PlatformStats, error)
}

// AdminHandler は管理者操作のHTTPハンドラー。
// ルーター側でADMINユーザーのみに制限される前提。
type AdminHandler struct {
	service AdminServiceInterface
}

// NewAdminHandler はAdminHandlerを生成する。
func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

type banRequest struct {
	Reason string `json:"reason"`
}

type resolveReportRequest struct {
	Action     string `json:"action"`
	Resolution string `json:"resolution"`
}

type adminUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	UserType  string `json:"userType"`
	IsBanned  bool   `json:"isBanned"`
	BanReason string `json:"banReason,omitempty"`
}

type adminReportResponse struct {
	ID           string     `json:"id"`
	ReporterID   string     `json:"reporterId"`
	TargetUserID string     `json:"targetUserId"`
	Reason       string     `json:"reason"`
	Details      string     `json:"details"`
	Status       string     `json:"status"`
	Resolution   string     `json:"resolution,omitempty"`
	ResolvedBy   *string    `json:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// BanUser は対象ユーザーをBANする。
// POST /api/admin/users/{userID}/ban
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	var req banRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	userID := chi.URLParam(r, "userID")
	user, err := h.service.BanUser(r.Context(), userID, req.Reason)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"user": toAdminUserResponse(user),
	})
}

// UnbanUser はBANを解除する。
// POST /api/admin/users/{userID}/unban
func (h *AdminHandler) UnbanUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	user, err := h.service.UnbanUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"user": toAdminUserResponse(user),
	})
}

// ListReports は通報一覧を取得する。
// GET /api/admin/reports?status=open&page=1&limit=20
func (h *AdminHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	reports, pagination, err := h.service.ListReports(r.Context(), status, page, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]adminReportResponse, 0, len(reports))
	for _, report := range reports {
		resp = append(resp, toAdminReportResponse(report))
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"reports": resp,
		"pagination": paginationResponse{
			Page:       pagination.Page,
			Limit:      pagination.Limit,
			Total:      pagination.Total,
			TotalPages: pagination.TotalPages,
		},
	})
}

// ResolveReport は通報を処理する（resolve / dismiss）。
// POST /api/admin/reports/{reportID}/resolve
func (h *AdminHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req resolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	reportID := chi.URLParam(r, "reportID")
	report, err := h.service.ResolveReport(r.Context(), actor.UserID, reportID, req.Action, req.Resolution)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"report": toAdminReportResponse(report),
	})
}

// GetPlatformStats はプラットフォーム統計を取得する。
// GET /api/admin/metrics
func (h *AdminHandler) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetPlatformStats(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	usersByType := make(map[string]int, len(stats.UsersByType))
	for userType, count := range stats.UsersByType {
		usersByType[string(userType)] = count
	}
	membershipsByStatus := make(map[string]int, len(stats.MembershipsByStatus))
	for status, count := range stats.MembershipsByStatus {
		membershipsByStatus[string(status)] = count
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"usersByType":         usersByType,
		"totalEscorts":        stats.TotalEscorts,
		"verifiedEscorts":     stats.VerifiedEscorts,
		"totalAgencies":       stats.TotalAgencies,
		"membershipsByStatus": membershipsByStatus,
		"totalVerifications":  stats.TotalVerifications,
		"generatedAt":         stats.GeneratedAt,
	})
}

func toAdminUserResponse(u *model.User) adminUserResponse {
	return adminUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		UserType:  string(u.UserType),
		IsBanned:  u.IsBanned,
		BanReason: u.BanReason,
	}
}

func toAdminReportResponse(r *model.Report) adminReportResponse {
	return adminReportResponse{
		ID:           r.ID,
		ReporterID:   r.ReporterID,
		TargetUserID: r.TargetUserID,
		Reason:       r.Reason,
		Details:      r.Details,
		Status:       string(r.Status),
		Resolution:   r.Resolution,
		ResolvedBy:   r.ResolvedBy,
		ResolvedAt:   r.ResolvedAt,
		CreatedAt:    r.CreatedAt,
	}
}
