package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notepad/internal/notestore"
)

// NewRouter creates a chi router with all API routes mounted.
// history may be nil when the journal is disabled.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(store *notestore.Store, history History, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store, history)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.AddNote)
	r.Delete("/notes/random", h.DeleteRandomNotes)

	r.Get("/history", h.History)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
