package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/notepad/internal/apperr"
	"github.com/starford/notepad/internal/checksum"
	"github.com/starford/notepad/internal/models"
	"github.com/starford/notepad/internal/notestore"
)

// History reads journaled mutations.
type History interface {
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// Handler holds API route handlers.
type Handler struct {
	store   *notestore.Store
	history History
}

// NewHandler creates a new Handler.
func NewHandler(store *notestore.Store, history History) *Handler {
	return &Handler{store: store, history: history}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List all notes in file order
//	@Tags			notes
//	@Produce		json
//	@Param			If-None-Match	header		string	false	"ETag from a previous listing"
//	@Success		200				{object}	NoteListResponse
//	@Success		304				"Not modified"
//	@Failure		500				{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	l, err := h.store.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody(notestore.FailureText(notestore.ActionList, err)))
		return
	}

	etag := `"` + checksum.Notes(l.Notes) + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	notes := l.Notes
	if notes == nil {
		notes = []string{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{
		Notes: notes,
		Count: len(notes),
		Text:  l.String(),
	})
}

// AddNote handles POST /api/notes.
//
//	@Summary		Append a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddNoteRequest	true	"Note to add"
//	@Success		201		{object}	AddNoteResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	note, err := h.store.Add(r.Context(), req.Content)
	if err != nil {
		writeJSON(w, statusFor(err), errorBody(notestore.FailureText(notestore.ActionAdd, err)))
		return
	}
	writeJSON(w, http.StatusCreated, AddNoteResponse{
		Note:    note,
		Message: notestore.AddedText(note),
	})
}

// DeleteRandomNotes handles DELETE /api/notes/random.
//
//	@Summary		Delete notes picked at random
//	@Tags			notes
//	@Produce		json
//	@Param			count	query		int	false	"Number of notes to delete (default 1)"
//	@Success		200		{object}	DeleteResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/notes/random [delete]
func (h *Handler) DeleteRandomNotes(w http.ResponseWriter, r *http.Request) {
	count := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		// Atoi clamps out-of-range values; a huge count clears the store.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			writeJSON(w, http.StatusBadRequest, errorBody(notestore.FailureText(notestore.ActionDelete, notestore.ErrCountNotInteger)))
			return
		}
		count = n
	}

	d, err := h.store.DeleteRandom(r.Context(), count)
	if err != nil {
		writeJSON(w, statusFor(err), errorBody(notestore.FailureText(notestore.ActionDelete, err)))
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{
		Deleted: d.Deleted,
		All:     d.All,
		Message: d.String(),
	})
}

// History handles GET /api/history.
//
//	@Summary		Recently added and deleted notes
//	@Tags			history
//	@Produce		json
//	@Param			limit	query		int	false	"Max entries (default 20)"
//	@Success		200		{object}	HistoryResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/history [get]
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSON(w, http.StatusNotFound, errorBody("journal "+apperr.ErrDisabled.Error()))
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("Error: limit must be an integer."))
			return
		}
		limit = n
	}
	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("get history failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

// statusFor maps store error kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrStoreMissing), errors.Is(err, apperr.ErrStoreEmpty):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
