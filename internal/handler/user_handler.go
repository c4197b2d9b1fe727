package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Samdevvv/TeLoFundi-sub001/internal/model"
	"github.com/Samdevvv/TeLoFundi-sub001/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*user.Profile, error)
	CreateEscortProfile(ctx context.Context, userID string, input user.EscortProfileInput) (*model.Escort, error)
	CreateAgencyProfile(ctx context.Context, userID string, input user.AgencyProfileInput) (*model.Agency, error)
	CreateReport(ctx context.Context, reporterID, targetUserID, reason, details string) (*model.Report, error)
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler はプロフィール・通報・退会関連のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	config  AuthHandlerConfig
}

// NewUserHandler はUserHandlerを生成する。
// configはセッションCookieの削除（退会時）に使う。
func NewUserHandler(service UserServiceInterface, config AuthHandlerConfig) *UserHandler {
	return &UserHandler{
		service: service,
		config:  config,
	}
}

type escortProfileRequest struct {
	DisplayName string `json:"displayName"`
	Location    string `json:"location"`
	Bio         string `json:"bio"`
}

type agencyProfileRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Description string `json:"description"`
}

type reportRequest struct {
	TargetUserID string `json:"targetUserId"`
	Reason       string `json:"reason"`
	Details      string `json:"details"`
}

type escortProfileResponse struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"userId"`
	DisplayName           string     `json:"displayName"`
	Location              string     `json:"location"`
	Bio                   string     `json:"bio"`
	IsVerified            bool       `json:"isVerified"`
	VerificationExpiresAt *time.Time `json:"verificationExpiresAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

type agencyProfileResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Website     string    `json:"website"`
	Description string    `json:"description"`
	IsVerified  bool      `json:"isVerified"`
	CreatedAt   time.Time `json:"createdAt"`
}

type reportResponse struct {
	ID           string    `json:"id"`
	TargetUserID string    `json:"targetUserId"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GetProfile は自分のプロフィールを取得する。
// GET /api/profiles/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), actor.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := map[string]interface{}{
		"user": map[string]interface{}{
			"id":       profile.User.ID,
			"email":    profile.User.Email,
			"name":     profile.User.Name,
			"userType": string(profile.User.UserType),
		},
	}
	if profile.Escort != nil {
		resp["escort"] = toEscortProfileResponse(profile.Escort)
	}
	if profile.Agency != nil {
		resp["agency"] = toAgencyProfileResponse(profile.Agency)
	}

	writeSuccess(w, http.StatusOK, resp)
}

// CreateEscortProfile はエスコートプロフィールを作成する。
// POST /api/profiles/escort
func (h *UserHandler) CreateEscortProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req escortProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	escort, err := h.service.CreateEscortProfile(r.Context(), actor.UserID, user.EscortProfileInput{
		DisplayName: req.DisplayName,
		Location:    req.Location,
		Bio:         req.Bio,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"escort": toEscortProfileResponse(escort),
	})
}

// CreateAgencyProfile はエージェンシープロフィールを作成する。
// POST /api/profiles/agency
func (h *UserHandler) CreateAgencyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req agencyProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	agency, err := h.service.CreateAgencyProfile(r.Context(), actor.UserID, user.AgencyProfileInput{
		Name:        req.Name,
		Location:    req.Location,
		Website:     req.Website,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"agency": toAgencyProfileResponse(agency),
	})
}

// CreateReport は他ユーザーへの通報を作成する。
// POST /api/reports
func (h *UserHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	report, err := h.service.CreateReport(r.Context(), actor.UserID, req.TargetUserID, req.Reason, req.Details)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]interface{}{
		"report": reportResponse{
			ID:           report.ID,
			TargetUserID: report.TargetUserID,
			Reason:       report.Reason,
			Status:       string(report.Status),
			CreatedAt:    report.CreatedAt,
		},
	})
}

// Withdraw は退会処理を行い、セッションCookieをクリアする。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), actor.UserID); err != nil {
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeSuccess(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

func toEscortProfileResponse(e *model.Escort) escortProfileResponse {
	return escortProfileResponse{
		ID:                    e.ID,
		UserID:                e.UserID,
		DisplayName:           e.DisplayName,
		Location:              e.Location,
		Bio:                   e.Bio,
		IsVerified:            e.IsVerified,
		VerificationExpiresAt: e.VerificationExpiresAt,
		CreatedAt:             e.CreatedAt,
	}
}

func toAgencyProfileResponse(a *model.Agency) agencyProfileResponse {
	return agencyProfileResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Name:        a.Name,
		Location:    a.Location,
		Website:     a.Website,
		Description: a.Description,
		IsVerified:  a.IsVerified,
		CreatedAt:   a.CreatedAt,
	}
}
