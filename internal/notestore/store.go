// Package notestore implements the notes file: append, list and random
// delete over a line-oriented text store.
//
// Every operation re-reads the file and runs under a scoped exclusive lock,
// an in-process mutex plus an optional cross-process storage.Locker, released
// on every exit path.
package notestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/starford/notepad/internal/apperr"
	"github.com/starford/notepad/internal/models"
	"github.com/starford/notepad/internal/storage"
)

// Recorder persists store mutations. The journal package implements it.
type Recorder interface {
	Record(ctx context.Context, op models.Op, notes []string) error
}

// Notifier is called after each successful mutation.
type Notifier func(op models.Op, notes []string)

// Store owns the notes file.
type Store struct {
	mu      sync.Mutex
	file    storage.Provider
	locker  storage.Locker
	rnd     *rand.Rand
	logger  *slog.Logger
	journal Recorder
	notify  Notifier
}

// Option configures a Store.
type Option func(*Store)

// WithLocker adds a cross-process lock around every operation.
func WithLocker(l storage.Locker) Option {
	return func(s *Store) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithRand sets the random source used to pick notes for deletion.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) {
		if r != nil {
			s.rnd = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithJournal records every mutation in r. Journal failures are logged and
// never fail the operation.
func WithJournal(r Recorder) Option {
	return func(s *Store) {
		s.journal = r
	}
}

// WithNotifier registers fn to be called after each mutation.
func WithNotifier(fn Notifier) Option {
	return func(s *Store) {
		s.notify = fn
	}
}

// New creates a Store backed by file.
func New(file storage.Provider, opts ...Option) *Store {
	s := &Store{
		file:   file,
		locker: storage.NopLocker{},
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the notes file.
func (s *Store) Path() string {
	return s.file.Path()
}

// List returns every note in file order. A missing or blank file yields an
// empty Listing, not an error.
func (s *Store) List(_ context.Context) (Listing, error) {
	unlock, err := s.acquire()
	if err != nil {
		return Listing{}, err
	}
	defer unlock()

	notes, _, err := s.readNotes()
	if err != nil {
		s.logger.Error("get notes failed", slog.String("error", err.Error()))
		return Listing{}, err
	}
	s.logger.Info("notes retrieved", slog.Int("count", len(notes)))
	return Listing{Notes: notes}, nil
}

// Add appends content as a new note. content must be non-blank and a single line.
func (s *Store) Add(ctx context.Context, content string) (models.Note, error) {
	if err := ValidateContent(content); err != nil {
		return "", err
	}

	unlock, err := s.acquire()
	if err != nil {
		return "", err
	}
	defer unlock()

	if err := s.file.Append([]byte(content + "\n")); err != nil {
		s.logger.Error("add note failed", slog.String("error", err.Error()))
		return "", err
	}
	s.logger.Info("note added", slog.String("note", content))
	s.mutated(ctx, models.OpAdded, []string{content})
	return content, nil
}

// DeleteRandom removes count notes picked uniformly at random by position.
// When count covers every note the file is truncated and the notes are
// reported in file order; otherwise they are reported in selection order.
func (s *Store) DeleteRandom(ctx context.Context, count int) (Deletion, error) {
	unlock, err := s.acquire()
	if err != nil {
		return Deletion{}, err
	}
	defer unlock()

	notes, exists, err := s.readNotes()
	switch {
	case err != nil:
		s.logger.Error("delete notes failed", slog.String("error", err.Error()))
		return Deletion{}, err
	case !exists:
		return Deletion{}, apperr.ErrStoreMissing
	case len(notes) == 0:
		return Deletion{}, apperr.ErrStoreEmpty
	case count < 1:
		return Deletion{}, fmt.Errorf("%w: count must be at least 1, got %d", apperr.ErrInvalidArgument, count)
	}

	var d Deletion
	if count >= len(notes) {
		if err := s.file.Write(nil); err != nil {
			s.logger.Error("delete notes failed", slog.String("error", err.Error()))
			return Deletion{}, err
		}
		d = Deletion{Deleted: notes, All: true}
	} else {
		picked := s.rnd.Perm(len(notes))[:count]
		removed := make(map[int]struct{}, count)
		deleted := make([]string, 0, count)
		for _, pos := range picked {
			removed[pos] = struct{}{}
			deleted = append(deleted, notes[pos])
		}
		remaining := make([]string, 0, len(notes)-count)
		for i, n := range notes {
			if _, ok := removed[i]; !ok {
				remaining = append(remaining, n)
			}
		}
		if err := s.file.Write(EncodeNotes(remaining)); err != nil {
			s.logger.Error("delete notes failed", slog.String("error", err.Error()))
			return Deletion{}, err
		}
		d = Deletion{Deleted: deleted}
	}

	s.logger.Info("notes deleted", slog.Int("count", len(d.Deleted)), slog.Bool("all", d.All))
	s.mutated(ctx, models.OpDeleted, d.Deleted)
	return d, nil
}

// acquire takes the in-process mutex and then the cross-process lock. The
// returned func releases both.
func (s *Store) acquire() (func(), error) {
	s.mu.Lock()
	if err := s.locker.Lock(); err != nil {
		s.mu.Unlock()
		s.logger.Error("acquire store lock failed", slog.String("error", err.Error()))
		return nil, err
	}
	return func() {
		if err := s.locker.Unlock(); err != nil {
			s.logger.Warn("release store lock failed", slog.String("error", err.Error()))
		}
		s.mu.Unlock()
	}, nil
}

// readNotes returns the non-blank lines of the file and whether it exists.
func (s *Store) readNotes() ([]string, bool, error) {
	exists, err := s.file.Exists()
	if err != nil || !exists {
		return nil, false, err
	}
	data, err := s.file.Read()
	if err != nil {
		// Removed between the stat and the read.
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return ParseNotes(data), true, nil
}

func (s *Store) mutated(ctx context.Context, op models.Op, notes []string) {
	if s.journal != nil {
		if err := s.journal.Record(ctx, op, notes); err != nil {
			s.logger.Warn("journal record failed", slog.String("op", string(op)), slog.String("error", err.Error()))
		}
	}
	if s.notify != nil {
		s.notify(op, notes)
	}
}

// ValidateContent rejects blank content and content spanning several lines.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content must not be empty", apperr.ErrInvalidArgument)
	}
	if strings.ContainsAny(content, "\r\n") {
		return fmt.Errorf("%w: content must be a single line", apperr.ErrInvalidArgument)
	}
	return nil
}

// ParseNotes splits file content into notes, dropping blank lines.
// A trailing carriage return is stripped so CRLF files read cleanly.
func ParseNotes(data []byte) []string {
	var notes []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		notes = append(notes, line)
	}
	return notes
}

// EncodeNotes renders notes as newline-terminated lines.
func EncodeNotes(notes []string) []byte {
	var b strings.Builder
	for _, n := range notes {
		b.WriteString(n)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
