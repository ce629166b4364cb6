package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	apiContext "propdesk/internal/api/context"
	"propdesk/internal/engine/mailer"
	"propdesk/internal/pkg/errors"
	"propdesk/internal/platform/models"
)

type TemplateHandler struct {
	repo *mailer.TemplateRepository
}

func NewTemplateHandler(repo *mailer.TemplateRepository) *TemplateHandler {
	return &TemplateHandler{repo: repo}
}

type templateRequest struct {
	TemplateKey string `json:"template_key"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	IsActive    *bool  `json:"is_active"`
}

func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.TemplateKey == "" || req.Subject == "" || req.Body == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "template_key, subject and body are required", nil)
		return
	}

	now := time.Now().Unix()
	tpl := &models.EmailTemplate{
		ID:          "tpl_" + uuid.New().String(),
		TemplateKey: req.TemplateKey,
		Subject:     req.Subject,
		Body:        req.Body,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := h.repo.Create(tpl); err != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Template key already exists", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tpl)
}

func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repo.List()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch templates", nil)
		return
	}
	if templates == nil {
		templates = []*models.EmailTemplate{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(templates)
}

func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	tpl, err := h.repo.GetByID(params.ByName("template_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch template", nil)
		return
	}
	if tpl == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Template not found", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tpl)
}

func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	tpl, err := h.repo.GetByID(params.ByName("template_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch template", nil)
		return
	}
	if tpl == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Template not found", nil)
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.Subject != "" {
		tpl.Subject = req.Subject
	}
	if req.Body != "" {
		tpl.Body = req.Body
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := h.repo.Update(tpl); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update template", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tpl)
}

// Deactivate gates a template out of dispatch without losing its history.
func (h *TemplateHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	id := params.ByName("template_id")

	tpl, err := h.repo.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to fetch template", nil)
		return
	}
	if tpl == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Template not found", nil)
		return
	}

	if err := h.repo.SetActive(id, false); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to deactivate template", nil)
		return
	}

	w.WriteHeader(http.StatusOK)
}
