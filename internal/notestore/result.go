package notestore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starford/notepad/internal/apperr"
)

// ErrCountNotInteger rejects a delete count that is not a whole number.
var ErrCountNotInteger = fmt.Errorf("%w: count must be an integer", apperr.ErrInvalidArgument)

// EmptyListing is the text shown when the store holds no notes.
const EmptyListing = "No notes found"

// Listing is the result of List.
type Listing struct {
	Notes []string
}

// Empty reports whether the store held no notes.
func (l Listing) Empty() bool {
	return len(l.Notes) == 0
}

// String numbers the notes from 1 in file order, one per line.
func (l Listing) String() string {
	if l.Empty() {
		return EmptyListing
	}
	lines := make([]string, len(l.Notes))
	for i, n := range l.Notes {
		lines[i] = fmt.Sprintf("%d. %s", i+1, n)
	}
	return strings.Join(lines, "\n")
}

// Deletion is the result of DeleteRandom.
type Deletion struct {
	// Deleted holds the removed notes: file order when All, selection order otherwise.
	Deleted []string
	// All is set when the whole store was cleared.
	All bool
}

// String renders the confirmation shown to callers.
func (d Deletion) String() string {
	switch {
	case d.All:
		return fmt.Sprintf("Deleted all %d notes:\n%s", len(d.Deleted), bullets(d.Deleted))
	case len(d.Deleted) == 1:
		return "Deleted 1 random note: " + d.Deleted[0]
	default:
		return fmt.Sprintf("Deleted %d random notes:\n%s", len(d.Deleted), bullets(d.Deleted))
	}
}

func bullets(notes []string) string {
	lines := make([]string, len(notes))
	for i, n := range notes {
		lines[i] = "- " + n
	}
	return strings.Join(lines, "\n")
}

// AddedText is the confirmation for a successful Add.
func AddedText(note string) string {
	return "Added note: " + note
}

// Action identifies a store operation in failure messages.
type Action int

// Store actions.
const (
	ActionList Action = iota
	ActionAdd
	ActionDelete
)

// FailureText converts an operation error into the one-line message shown
// to remote callers.
func FailureText(action Action, err error) string {
	switch action {
	case ActionList:
		return "Error retrieving notes: " + err.Error()
	case ActionAdd:
		return "Error adding note: " + err.Error()
	}
	switch {
	case errors.Is(err, apperr.ErrStoreMissing):
		return "Error: No notes file found. Nothing to delete."
	case errors.Is(err, apperr.ErrStoreEmpty):
		return "Error: Notes file is empty. Nothing to delete."
	case errors.Is(err, ErrCountNotInteger):
		return "Error: Count must be an integer."
	case errors.Is(err, apperr.ErrInvalidArgument):
		return "Error: Count must be at least 1."
	default:
		return "Error deleting notes: " + err.Error()
	}
}
