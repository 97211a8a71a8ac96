package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Storage is a single fixed-address record store.
type Storage interface {
	// ReadRecord returns RecordSize bytes. Erased storage returns 0xFF bytes.
	ReadRecord() ([]byte, error)

	// WriteRecord replaces the whole record.
	WriteRecord(b []byte) error

	// Erase returns the record to the erased state.
	Erase() error
}

func erased() []byte {
	return bytes.Repeat([]byte{0xFF}, RecordSize)
}

// FileStorage keeps the record in a single file. A missing file reads as
// erased storage.
type FileStorage struct {
	path string
}

// NewFileStorage creates a FileStorage at path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// ReadRecord reads the record file.
func (f *FileStorage) ReadRecord() ([]byte, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return erased(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(b) < RecordSize {
		return erased(), nil
	}
	return b[:RecordSize], nil
}

// WriteRecord writes to a temp file and renames it over the record so a
// crash leaves either the old or the new record.
func (f *FileStorage) WriteRecord(b []byte) error {
	if len(b) != RecordSize {
		return fmt.Errorf("record size %d, want %d", len(b), RecordSize)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Erase overwrites the record with 0xFF bytes.
func (f *FileStorage) Erase() error {
	return f.WriteRecord(erased())
}

// MemStorage is an in-memory Storage for tests. It counts writes.
type MemStorage struct {
	Data       []byte
	Writes     int
	ReadError  error
	WriteError error
}

// NewMemStorage returns erased in-memory storage.
func NewMemStorage() *MemStorage {
	return &MemStorage{Data: erased()}
}

// ReadRecord returns a copy of the stored bytes.
func (m *MemStorage) ReadRecord() ([]byte, error) {
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	return append([]byte(nil), m.Data...), nil
}

// WriteRecord stores a copy of b.
func (m *MemStorage) WriteRecord(b []byte) error {
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Data = append([]byte(nil), b...)
	m.Writes++
	return nil
}

// Erase resets the data to the erased state.
func (m *MemStorage) Erase() error {
	return m.WriteRecord(erased())
}
