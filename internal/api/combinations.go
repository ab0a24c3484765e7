package api

import (
	"net/http"

	"github.com/starford/promptloom/internal/models"
)

// ListCombinations handles GET /api/combinations.
//
//	@Summary		List saved combinations
//	@Tags			combinations
//	@Produce		json
//	@Success		200	{array}	models.Combination
//	@Security		BearerAuth
//	@Router			/combinations [get]
func (h *Handler) ListCombinations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListCombinations(r.Context()))
}

// GetCombination handles GET /api/combinations/{id}.
//
//	@Summary		Get a combination
//	@Tags			combinations
//	@Produce		json
//	@Param			id	path		int	true	"Combination ID"
//	@Success		200	{object}	models.Combination
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/combinations/{id} [get]
func (h *Handler) GetCombination(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "combination")
	if !ok {
		return
	}
	c, err := h.svc.GetCombination(r.Context(), id)
	if err != nil {
		writeError(w, "get combination", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCombination handles POST /api/combinations.
//
//	@Summary		Save a combination
//	@Tags			combinations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CombinationInput	true	"Combination to save"
//	@Success		201		{object}	models.Combination
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/combinations [post]
func (h *Handler) CreateCombination(w http.ResponseWriter, r *http.Request) {
	var in models.CombinationInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.CreateCombination(r.Context(), in)
	if err != nil {
		writeError(w, "create combination", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCombination handles PATCH /api/combinations/{id}.
//
//	@Summary		Partially update a combination
//	@Tags			combinations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Combination ID"
//	@Param			body	body		models.CombinationPatch	true	"Fields to change"
//	@Success		200		{object}	models.Combination
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/combinations/{id} [patch]
func (h *Handler) UpdateCombination(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "combination")
	if !ok {
		return
	}
	var patch models.CombinationPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	c, err := h.svc.UpdateCombination(r.Context(), id, patch)
	if err != nil {
		writeError(w, "update combination", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCombination handles DELETE /api/combinations/{id}.
//
//	@Summary		Delete a combination
//	@Tags			combinations
//	@Param			id	path	int	true	"Combination ID"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/combinations/{id} [delete]
func (h *Handler) DeleteCombination(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "combination")
	if !ok {
		return
	}
	if err := h.svc.DeleteCombination(r.Context(), id); err != nil {
		writeError(w, "delete combination", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CombinationText handles GET /api/combinations/{id}/text.
//
//	@Summary		Render a combination as combined text
//	@Tags			combinations
//	@Produce		plain
//	@Param			id	path		int	true	"Combination ID"
//	@Success		200	{string}	string
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/combinations/{id}/text [get]
func (h *Handler) CombinationText(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "combination")
	if !ok {
		return
	}
	text, err := h.svc.CombinationText(r.Context(), id)
	if err != nil {
		writeError(w, "combination text", err)
		return
	}
	writeText(w, text)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
