// Package testutil provides shared test helpers for setting up note stores.
package testutil

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/starford/notepad/internal/journal"
	"github.com/starford/notepad/internal/notestore"
	"github.com/starford/notepad/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestFile creates a notes file provider in a temporary directory.
func TestFile(t *testing.T) *storage.File {
	t.Helper()
	file, err := storage.NewOSFile(filepath.Join(t.TempDir(), "notes.txt"))
	if err != nil {
		t.Fatal(err)
	}
	return file
}

// TestStore creates a store over a temporary notes file with a fixed random
// seed and the cross-process lock enabled.
func TestStore(t *testing.T, opts ...notestore.Option) (*notestore.Store, *storage.File) {
	t.Helper()
	file := TestFile(t)
	base := []notestore.Option{
		notestore.WithLogger(Logger()),
		notestore.WithRand(rand.New(rand.NewPCG(7, 11))),
		notestore.WithLocker(storage.NewFileLock(storage.LockPath(file.Path()))),
	}
	return notestore.New(file, append(base, opts...)...), file
}

// TestJournal creates a temporary journal database that is closed on cleanup.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	db, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
