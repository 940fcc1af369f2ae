package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rarepair-api/internal/application/match"
	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/pkg/validate"
	"github.com/rarepair-api/internal/transport/http/middleware"
)

// MatchHandler handles the match lifecycle endpoints.
type MatchHandler struct {
	svc   match.Service
	query match.QueryService
}

func NewMatchHandler(svc match.Service, query match.QueryService) *MatchHandler {
	return &MatchHandler{svc: svc, query: query}
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.svc.CreatePending(r.Context(), &req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *MatchHandler) Score(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Score(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	// Donors and recipients only see their own matches.
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if (claims.Role == domain.RoleDonor || claims.Role == domain.RoleRecipient) &&
		claims.UserID != m.DonorID && claims.UserID != m.RecipientID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MatchHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateMatchStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "match deleted"})
}

// List searches by donor_id and/or recipient_id query params; both empty
// returns everything, newest first.
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	donorID := r.URL.Query().Get("donor_id")
	recipientID := r.URL.Query().Get("recipient_id")

	matches, err := h.query.FindByParticipant(r.Context(), donorID, recipientID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
