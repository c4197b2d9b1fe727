package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/agency"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
)

// AgencySearchServiceInterface はエージェンシー検索ハンドラーが必要とするサービスインターフェース。
type AgencySearchServiceInterface interface {
	SearchAgencies(ctx context.Context, params agency.SearchParams) ([]*model.Agency, agency.Pagination, error)
}

// AgencyHandler はエージェンシー検索のHTTPハンドラー。
type AgencyHandler struct {
	service AgencySearchServiceInterface
}

// NewAgencyHandler はAgencyHandlerを生成する。
func NewAgencyHandler(service AgencySearchServiceInterface) *AgencyHandler {
	return &AgencyHandler{service: service}
}

type agencyResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Location        string    `json:"location,omitempty"`
	Website         string    `json:"website,omitempty"`
	Description     string    `json:"description,omitempty"`
	IsVerified      bool      `json:"isVerified"`
	TotalEscorts    int       `json:"totalEscorts"`
	ActiveEscorts   int       `json:"activeEscorts"`
	VerifiedEscorts int       `json:"verifiedEscorts"`
	CreatedAt       time.Time `json:"createdAt"`
}

type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Search はエージェンシー検索を処理する。
// GET /api/agencies/search?q=&location=&verified=&minEscorts=&sortBy=&page=&limit=
func (h *AgencyHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := agency.SearchParams{
		Query:    q.Get("q"),
		Location: q.Get("location"),
		SortBy:   q.Get("sortBy"),
	}

	if v := q.Get("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidActionError("verified="+v))
			return
		}
		params.Verified = &verified
	}

	if v := q.Get("minEscorts"); v != "" {
		minEscorts, err := strconv.Atoi(v)
		if err != nil || minEscorts < 0 {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidActionError("minEscorts="+v))
			return
		}
		params.MinEscorts = &minEscorts
	}

	params.Page, _ = strconv.Atoi(q.Get("page"))
	params.Limit, _ = strconv.Atoi(q.Get("limit"))

	agencies, pagination, err := h.service.SearchAgencies(r.Context(), params)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]agencyResponse, 0, len(agencies))
	for _, a := range agencies {
		entries = append(entries, toAgencyResponse(a))
	}

	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"agencies":   entries,
		"pagination": toPaginationResponse(pagination),
	})
}

func toAgencyResponse(a *model.Agency) agencyResponse {
	return agencyResponse{
		ID:              a.ID,
		Name:            a.Name,
		Location:        a.Location,
		Website:         a.Website,
		Description:     a.Description,
		IsVerified:      a.IsVerified,
		TotalEscorts:    a.TotalEscorts,
		ActiveEscorts:   a.ActiveEscorts,
		VerifiedEscorts: a.VerifiedEscorts,
		CreatedAt:       a.CreatedAt,
	}
}

func toPaginationResponse(p agency.Pagination) paginationResponse {
	return paginationResponse{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}
