package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/promptloom/internal/drafts"
	"github.com/starford/promptloom/internal/promptservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// reg may be nil, in which case the draft routes are not mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *promptservice.Service, reg *drafts.Registry, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/summary", h.CategorySummary)
		r.Get("/{id}", h.GetCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})

	r.Route("/prompts", func(r chi.Router) {
		r.Get("/", h.ListPrompts)
		r.Post("/", h.CreatePrompt)
		r.Get("/{id}", h.GetPrompt)
		r.Patch("/{id}", h.UpdatePrompt)
		r.Delete("/{id}", h.DeletePrompt)
	})

	r.Get("/search", h.Search)

	r.Route("/combinations", func(r chi.Router) {
		r.Get("/", h.ListCombinations)
		r.Post("/", h.CreateCombination)
		r.Get("/{id}", h.GetCombination)
		r.Patch("/{id}", h.UpdateCombination)
		r.Delete("/{id}", h.DeleteCombination)
		r.Get("/{id}/text", h.CombinationText)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", h.ListTemplates)
		r.Post("/", h.CreateTemplate)
		r.Get("/{id}", h.GetTemplate)
	})

	if reg != nil {
		dh := NewDraftHandler(reg)
		r.Route("/drafts", func(r chi.Router) {
			r.Post("/", dh.Create)
			r.Route("/{draftID}", func(r chi.Router) {
				r.Get("/", dh.Get)
				r.Delete("/", dh.Delete)
				r.Post("/items", dh.AddItem)
				r.Delete("/items", dh.Clear)
				r.Delete("/items/{promptID}", dh.RemoveItem)
				r.Post("/move", dh.Move)
				r.Post("/hover", dh.Hover)
				r.Post("/save", dh.Save)
				r.Post("/load/{combinationID}", dh.Load)
				r.Get("/export", dh.Export)
				r.Get("/share", dh.Share)
			})
		})
	}

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
