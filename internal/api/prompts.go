package api

import (
	"net/http"
	"strconv"

	"github.com/starford/promptloom/internal/models"
	"github.com/starford/promptloom/internal/promptservice"
)

// ListPrompts handles GET /api/prompts.
//
//	@Summary		List prompts, optionally filtered
//	@Tags			prompts
//	@Produce		json
//	@Param			categoryId	query	int		false	"Filter by category"
//	@Param			tag			query	string	false	"Filter by tag"
//	@Success		200			{array}	models.Prompt
//	@Security		BearerAuth
//	@Router			/prompts [get]
func (h *Handler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := promptservice.PromptFilter{Tag: q.Get("tag")}
	// An unparsable category filter is ignored and the full list returned.
	if id, err := strconv.ParseInt(q.Get("categoryId"), 10, 64); err == nil {
		f.CategoryID = &id
	}
	writeJSON(w, http.StatusOK, h.svc.ListPrompts(r.Context(), f))
}

// GetPrompt handles GET /api/prompts/{id}.
//
//	@Summary		Get a prompt
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		int	true	"Prompt ID"
//	@Success		200	{object}	models.Prompt
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prompts/{id} [get]
func (h *Handler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "prompt")
	if !ok {
		return
	}
	p, err := h.svc.GetPrompt(r.Context(), id)
	if err != nil {
		writeError(w, "get prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePrompt handles POST /api/prompts.
//
//	@Summary		Create a prompt
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.PromptInput	true	"Prompt to create"
//	@Success		201		{object}	models.Prompt
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prompts [post]
func (h *Handler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var in models.PromptInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.CreatePrompt(r.Context(), in)
	if err != nil {
		writeError(w, "create prompt", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdatePrompt handles PATCH /api/prompts/{id}. Absent fields keep their
// stored values.
//
//	@Summary		Partially update a prompt
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Prompt ID"
//	@Param			body	body		models.PromptPatch	true	"Fields to change"
//	@Success		200		{object}	models.Prompt
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prompts/{id} [patch]
func (h *Handler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "prompt")
	if !ok {
		return
	}
	var patch models.PromptPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	p, err := h.svc.UpdatePrompt(r.Context(), id, patch)
	if err != nil {
		writeError(w, "update prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePrompt handles DELETE /api/prompts/{id}.
//
//	@Summary		Delete a prompt
//	@Tags			prompts
//	@Param			id	path	int	true	"Prompt ID"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/prompts/{id} [delete]
func (h *Handler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "prompt")
	if !ok {
		return
	}
	if err := h.svc.DeletePrompt(r.Context(), id); err != nil {
		writeError(w, "delete prompt", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
