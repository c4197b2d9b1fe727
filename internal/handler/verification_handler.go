package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/agency"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/repository"
)

// VerificationServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type VerificationServiceInterface interface {
	// VerifyEscort は所属エスコートの認証（初回・更新）を実行する。
	VerifyEscort(ctx context.Context, actor *model.AuthenticatedActor, escortID, pricingID, notes string) (*agency.VerificationResult, error)
	// ListExpiringVerifications は失効が近い認証の一覧を返す。
	ListExpiringVerifications(ctx context.Context, actor *model.AuthenticatedActor, days, page, limit int) ([]repository.VerificationWithEscort, agency.Pagination, error)
	// GetVerificationPricing は料金プラン一覧を返す。
	GetVerificationPricing(ctx context.Context) []*model.VerificationPricing
}

// VerificationRecorder は認証実行メトリクスを記録する。
type VerificationRecorder interface {
	RecordVerification(isRenewal bool)
}

// VerificationHandler はエスコート認証のHTTPハンドラー。
type VerificationHandler struct {
	service VerificationServiceInterface
	metrics VerificationRecorder
}

// NewVerificationHandler はVerificationHandlerを生成する。
// metricsはnil可（テスト用）。
func NewVerificationHandler(service VerificationServiceInterface, metrics VerificationRecorder) *VerificationHandler {
	return &VerificationHandler{
		service: service,
		metrics: metrics,
	}
}

type verifyRequest struct {
	PricingID string `json:"pricingId"`
	Notes     string `json:"notes"`
}

type verificationResponse struct {
	ID        string    `json:"id"`
	AgencyID  string    `json:"agencyId"`
	EscortID  string    `json:"escortId"`
	Status    string    `json:"status"`
	StartsAt  time.Time `json:"startsAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRenewal bool      `json:"isRenewal"`
}

type pricingResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Cost         int      `json:"cost"`
	DurationDays int      `json:"durationDays"`
	Features     []string `json:"features,omitempty"`
}

type expiringEntryResponse struct {
	verificationResponse
	EscortUserID      string `json:"escortUserId"`
	EscortDisplayName string `json:"escortDisplayName"`
}

// Verify はエスコート認証を処理する。初回・更新の判定はサービス層が行う。
// POST /api/agencies/escorts/:escortID/verify
// POST /api/agencies/escorts/:escortID/verify/renew
func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	escortID := chi.URLParam(r, "escortID")

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	result, err := h.service.VerifyEscort(r.Context(), actor, escortID, req.PricingID, req.Notes)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordVerification(result.IsRenewal)
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"verification": verificationResponse{
			ID:        result.Verification.ID,
			AgencyID:  result.Verification.AgencyID,
			EscortID:  result.Verification.EscortID,
			Status:    string(result.Verification.Status),
			StartsAt:  result.Verification.StartsAt,
			ExpiresAt: result.Verification.ExpiresAt,
			IsRenewal: result.IsRenewal,
		},
		"pricing": toPricingResponse(result.Pricing),
	})
}

// ListExpiring は失効が近い認証の一覧を返す。
// GET /api/agencies/verifications/expiring?days=7&page=1&limit=20
func (h *VerificationHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	days, _ := strconv.Atoi(q.Get("days"))
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	verifications, pagination, err := h.service.ListExpiringVerifications(r.Context(), actor, days, page, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]expiringEntryResponse, 0, len(verifications))
	for _, v := range verifications {
		entries = append(entries, expiringEntryResponse{
			verificationResponse: verificationResponse{
				ID:        v.ID,
				AgencyID:  v.AgencyID,
				EscortID:  v.EscortID,
				Status:    string(v.Status),
				StartsAt:  v.StartsAt,
				ExpiresAt: v.ExpiresAt,
			},
			EscortUserID:      v.EscortUserID,
			EscortDisplayName: v.EscortDisplayName,
		})
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"verifications": entries,
		"pagination":    toPaginationResponse(pagination),
	})
}

// ListPricing は料金プラン一覧を返す。認証不要の公開エンドポイント。
// GET /api/agencies/verification-pricing
func (h *VerificationHandler) ListPricing(w http.ResponseWriter, r *http.Request) {
	pricing := h.service.GetVerificationPricing(r.Context())

	entries := make([]pricingResponse, 0, len(pricing))
	for _, p := range pricing {
		entries = append(entries, toPricingResponse(p))
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{"pricing": entries})
}

func toPricingResponse(p *model.VerificationPricing) pricingResponse {
	return pricingResponse{
		ID:           p.ID,
		Name:         p.Name,
		Cost:         p.Cost,
		DurationDays: p.DurationDays,
		Features:     p.Features,
	}
}
