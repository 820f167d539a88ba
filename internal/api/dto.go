package api

import "github.com/starford/notepad/internal/models"

// AddNoteRequest is the request body for adding a note.
type AddNoteRequest struct {
	Content string `json:"content" example:"buy milk"`
}

// AddNoteResponse is returned after a note was appended.
type AddNoteResponse struct {
	Note    string `json:"note" example:"buy milk"`
	Message string `json:"message" example:"Added note: buy milk"`
}

// NoteListResponse holds every note in file order.
type NoteListResponse struct {
	Notes []string `json:"notes"`
	Count int      `json:"count" example:"2"`
	// Text is the numbered listing, or "No notes found".
	Text string `json:"text" example:"1. buy milk\n2. call mom"`
}

// DeleteResponse reports the notes removed by a random delete.
type DeleteResponse struct {
	Deleted []string `json:"deleted"`
	All     bool     `json:"all"`
	Message string   `json:"message" example:"Deleted 1 random note: buy milk"`
}

// HistoryResponse wraps journal entries, newest first.
type HistoryResponse struct {
	Entries []models.HistoryEntry `json:"entries"`
}
