package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rarepair-api/internal/application/hospital"
	"github.com/rarepair-api/internal/domain"
	"github.com/rarepair-api/internal/pkg/validate"
)

// HospitalHandler handles hospital registry endpoints.
type HospitalHandler struct {
	svc hospital.Service
}

func NewHospitalHandler(svc hospital.Service) *HospitalHandler { return &HospitalHandler{svc: svc} }

func (h *HospitalHandler) List(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hospitals)
}

func (h *HospitalHandler) Get(w http.ResponseWriter, r *http.Request) {
	hosp, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hosp)
}

func (h *HospitalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.HospitalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Create(r.Context(), &in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HospitalHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.HospitalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *HospitalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "hospital deleted"})
}
