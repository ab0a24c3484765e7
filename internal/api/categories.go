package api

import (
	"net/http"

	"github.com/starford/promptloom/internal/models"
)

// ListCategories handles GET /api/categories.
//
//	@Summary		List categories
//	@Tags			categories
//	@Produce		json
//	@Success		200	{array}	models.Category
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListCategories(r.Context()))
}

// CategorySummary handles GET /api/categories/summary.
//
//	@Summary		List categories with kind, label and prompt count
//	@Tags			categories
//	@Produce		json
//	@Success		200	{array}	models.CategorySummary
//	@Security		BearerAuth
//	@Router			/categories/summary [get]
func (h *Handler) CategorySummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CategorySummary(r.Context()))
}

// GetCategory handles GET /api/categories/{id}.
//
//	@Summary		Get a category
//	@Tags			categories
//	@Produce		json
//	@Param			id	path		int	true	"Category ID"
//	@Success		200	{object}	models.Category
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{id} [get]
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "category")
	if !ok {
		return
	}
	c, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, "get category", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCategory handles POST /api/categories.
//
//	@Summary		Create a category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CategoryInput	true	"Category to create"
//	@Success		201		{object}	models.Category
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), in)
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// DeleteCategory handles DELETE /api/categories/{id}.
// Prompts in the category keep their categoryId.
//
//	@Summary		Delete a category
//	@Tags			categories
//	@Param			id	path	int	true	"Category ID"
//	@Success		204
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{id} [delete]
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "category")
	if !ok {
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
