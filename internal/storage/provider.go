// Package storage provides access to the line-oriented notes file.
package storage

// Provider is the interface for notes file operations.
type Provider interface {
	// Path returns the location of the notes file.
	Path() string
	// Exists reports whether the notes file is present.
	Exists() (bool, error)
	// Read returns the raw bytes of the notes file. A missing file yields an
	// error matching os.ErrNotExist.
	Read() ([]byte, error)
	// Append adds data to the end of the notes file, creating it if absent.
	Append(data []byte) error
	// Write atomically replaces the notes file with data.
	Write(data []byte) error
}

// Locker serializes access to the notes file across processes.
type Locker interface {
	Lock() error
	Unlock() error
}
