package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/drafts"
)

// DraftHandler serves the server-held composition routes.
type DraftHandler struct {
	reg *drafts.Registry
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(reg *drafts.Registry) *DraftHandler {
	return &DraftHandler{reg: reg}
}

func draftID(r *http.Request) string {
	return chi.URLParam(r, "draftID")
}

// Create handles POST /api/drafts.
//
//	@Summary		Open an empty draft composition
//	@Tags			drafts
//	@Produce		json
//	@Success		201	{object}	drafts.View
//	@Failure		429	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts [post]
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	v, err := h.reg.Create()
	if err != nil {
		writeError(w, "create draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Get handles GET /api/drafts/{draftID}.
//
//	@Summary		Get a draft with its combined text
//	@Tags			drafts
//	@Produce		json
//	@Param			draftID	path		string	true	"Draft ID"
//	@Success		200		{object}	drafts.View
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID} [get]
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.reg.Get(draftID(r))
	if err != nil {
		writeError(w, "get draft", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Delete handles DELETE /api/drafts/{draftID}.
//
//	@Summary		Discard a draft
//	@Tags			drafts
//	@Param			draftID	path	string	true	"Draft ID"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID} [delete]
func (h *DraftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Delete(draftID(r)); err != nil {
		writeError(w, "delete draft", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /api/drafts/{draftID}/items.
//
//	@Summary		Append a prompt to a draft
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			draftID	path		string			true	"Draft ID"
//	@Param			body	body		AddItemRequest	true	"Prompt id or scratch item"
//	@Success		200		{object}	drafts.View
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/items [post]
func (h *DraftHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var (
		v   drafts.View
		err error
	)
	if req.PromptID != nil {
		v, err = h.reg.AddPrompt(r.Context(), draftID(r), *req.PromptID)
	} else {
		v, err = h.reg.AddCandidate(draftID(r), req.candidate())
	}
	if err != nil {
		writeError(w, "add draft item", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// RemoveItem handles DELETE /api/drafts/{draftID}/items/{promptID}.
// Removing a prompt that is not in the draft is not an error.
//
//	@Summary		Remove the first occurrence of a prompt from a draft
//	@Tags			drafts
//	@Produce		json
//	@Param			draftID		path		string	true	"Draft ID"
//	@Param			promptID	path		int		true	"Prompt ID"
//	@Success		200			{object}	RemoveResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/items/{promptID} [delete]
func (h *DraftHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	// Synthetic items carry negative ids, so only the syntax is checked here.
	promptID, err := strconv.ParseInt(chi.URLParam(r, "promptID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(apperr.InvalidID("prompt").Error()))
		return
	}
	v, removed, err := h.reg.Remove(draftID(r), promptID)
	if err != nil {
		writeError(w, "remove draft item", err)
		return
	}
	writeJSON(w, http.StatusOK, RemoveResponse{Removed: removed, Draft: v})
}

// Clear handles DELETE /api/drafts/{draftID}/items.
//
//	@Summary		Remove every item from a draft
//	@Tags			drafts
//	@Produce		json
//	@Param			draftID	path		string	true	"Draft ID"
//	@Success		200		{object}	drafts.View
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/items [delete]
func (h *DraftHandler) Clear(w http.ResponseWriter, r *http.Request) {
	v, err := h.reg.Clear(draftID(r))
	if err != nil {
		writeError(w, "clear draft", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Move handles POST /api/drafts/{draftID}/move. Out-of-range positions
// leave the draft unchanged and report moved=false.
//
//	@Summary		Move an item within a draft
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			draftID	path		string		true	"Draft ID"
//	@Param			body	body		MoveRequest	true	"Source and target positions"
//	@Success		200		{object}	MoveResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/move [post]
func (h *DraftHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, moved, err := h.reg.Move(draftID(r), req.From, req.To)
	if err != nil {
		writeError(w, "move draft item", err)
		return
	}
	writeJSON(w, http.StatusOK, MoveResponse{Moved: moved, Draft: v})
}

// Hover handles POST /api/drafts/{draftID}/hover.
//
//	@Summary		Apply one drag hover tick
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			draftID	path		string			true	"Draft ID"
//	@Param			body	body		HoverRequest	true	"Dragged item and hover target"
//	@Success		200		{object}	drafts.HoverResult
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/hover [post]
func (h *DraftHandler) Hover(w http.ResponseWriter, r *http.Request) {
	var req HoverRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.reg.Hover(draftID(r), req.Drag, req.Target)
	if err != nil {
		writeError(w, "hover draft item", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Save handles POST /api/drafts/{draftID}/save.
//
//	@Summary		Save a draft as a named combination
//	@Tags			drafts
//	@Accept			json
//	@Produce		json
//	@Param			draftID	path		string		true	"Draft ID"
//	@Param			body	body		SaveRequest	true	"Combination name"
//	@Success		201		{object}	models.Combination
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/save [post]
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.reg.Save(r.Context(), draftID(r), req.Name)
	if err != nil {
		writeError(w, "save draft", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Load handles POST /api/drafts/{draftID}/load/{combinationID}.
//
//	@Summary		Replace a draft with a saved combination
//	@Tags			drafts
//	@Produce		json
//	@Param			draftID			path		string	true	"Draft ID"
//	@Param			combinationID	path		int		true	"Combination ID"
//	@Success		200				{object}	drafts.View
//	@Failure		400				{object}	errResponse
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/load/{combinationID} [post]
func (h *DraftHandler) Load(w http.ResponseWriter, r *http.Request) {
	combinationID, ok := pathID(w, r, "combinationID", "combination")
	if !ok {
		return
	}
	v, err := h.reg.Load(r.Context(), draftID(r), combinationID)
	if err != nil {
		writeError(w, "load draft", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Export handles GET /api/drafts/{draftID}/export.
//
//	@Summary		Download the combined text of a draft
//	@Tags			drafts
//	@Produce		plain
//	@Param			draftID	path		string	true	"Draft ID"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/export [get]
func (h *DraftHandler) Export(w http.ResponseWriter, r *http.Request) {
	text, err := h.reg.Export(draftID(r))
	if err != nil {
		writeError(w, "export draft", err)
		return
	}
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": drafts.ExportFilename}))
	writeText(w, text)
}

// Share handles GET /api/drafts/{draftID}/share.
//
//	@Summary		Build a hand-off URL carrying the combined text
//	@Tags			drafts
//	@Produce		json
//	@Param			draftID	path		string	true	"Draft ID"
//	@Success		200		{object}	ShareResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/drafts/{draftID}/share [get]
func (h *DraftHandler) Share(w http.ResponseWriter, r *http.Request) {
	link, err := h.reg.Share(draftID(r))
	if err != nil {
		writeError(w, "share draft", err)
		return
	}
	writeJSON(w, http.StatusOK, ShareResponse{URL: link})
}
