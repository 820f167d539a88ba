// Package models defines the domain types for notepad.
package models

import "time"

// Note is one line of the notes file. Notes carry no id or timestamp; their
// position in the file is the only ordering.
type Note = string

// Op names a store mutation as recorded in the journal and broadcast to
// event subscribers.
type Op string

// Mutation kinds.
const (
	OpAdded   Op = "added"
	OpDeleted Op = "deleted"
)

// HistoryEntry is one journaled mutation of a single note.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Op        Op        `json:"op"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
