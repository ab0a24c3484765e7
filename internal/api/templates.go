package api

import (
	"net/http"

	"github.com/starford/promptloom/internal/models"
)

// ListTemplates handles GET /api/templates.
//
//	@Summary		List templates
//	@Tags			templates
//	@Produce		json
//	@Success		200	{array}	models.Template
//	@Security		BearerAuth
//	@Router			/templates [get]
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListTemplates(r.Context()))
}

// GetTemplate handles GET /api/templates/{id}.
//
//	@Summary		Get a template
//	@Tags			templates
//	@Produce		json
//	@Param			id	path		int	true	"Template ID"
//	@Success		200	{object}	models.Template
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates/{id} [get]
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "template")
	if !ok {
		return
	}
	t, err := h.svc.GetTemplate(r.Context(), id)
	if err != nil {
		writeError(w, "get template", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTemplate handles POST /api/templates.
//
//	@Summary		Create a template
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.TemplateInput	true	"Template to create"
//	@Success		201		{object}	models.Template
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/templates [post]
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var in models.TemplateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.svc.CreateTemplate(r.Context(), in)
	if err != nil {
		writeError(w, "create template", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}
