package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// fileMode is the permission of a newly created notes file.
const fileMode = 0o644

// File implements Provider on top of an afero filesystem.
type File struct {
	fs   afero.Fs
	path string
}

// NewFile creates a Provider for the notes file at path. The parent
// directory is created if missing; the file itself is created lazily by the
// first Append or Write.
func NewFile(fsys afero.Fs, path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: path is required")
	}
	clean := filepath.Clean(path)
	if err := fsys.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir: %w", err)
	}
	if info, err := fsys.Stat(clean); err == nil && info.IsDir() {
		return nil, fmt.Errorf("storage: notes path is a directory: %s", clean)
	}
	return &File{fs: fsys, path: clean}, nil
}

// NewOSFile is NewFile on the host filesystem.
func NewOSFile(path string) (*File, error) {
	return NewFile(afero.NewOsFs(), path)
}

// Path returns the cleaned location of the notes file.
func (f *File) Path() string {
	return f.path
}

// Exists reports whether the notes file is present.
func (f *File) Exists() (bool, error) {
	ok, err := afero.Exists(f.fs, f.path)
	if err != nil {
		return false, fmt.Errorf("storage: stat %s: %w", f.path, err)
	}
	return ok, nil
}

// Read returns the raw bytes of the notes file.
func (f *File) Read() ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	return data, nil
}

// Append opens the notes file in append mode and writes data.
func (f *File) Append(data []byte) error {
	fh, err := f.fs.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", f.path, err)
	}
	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		return fmt.Errorf("storage: append %s: %w", f.path, err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("storage: close %s: %w", f.path, err)
	}
	return nil
}

// Write atomically replaces the file: tmp file → fsync → rename.
func (f *File) Write(data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := afero.TempFile(f.fs, dir, ".notepad-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = f.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	// TempFile creates 0600; keep the mode the notes file already has.
	mode := os.FileMode(fileMode)
	if info, err := f.fs.Stat(f.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := f.fs.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := f.fs.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
