// Package settings persists the calibrated moisture threshold in a small,
// version-tagged, fixed-size record and migrates stale records on load.
package settings

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/sweeney/soil-monitor/internal/events"
)

const (
	// UnsetVersion marks a record that was never written. Erased storage
	// reads back as 0xFF bytes, which decodes to -1.
	UnsetVersion int32 = -1

	// CurrentVersion is stamped on every record written by this build.
	CurrentVersion int32 = 2

	// DefaultThreshold is the threshold used when no record exists. It lies
	// outside the 0-100 scale; configuration can override it.
	DefaultThreshold int32 = 1500

	// RecordSize is the size of the persisted record in bytes.
	RecordSize = 8
)

// Settings is the persisted record.
type Settings struct {
	Version           int32
	MoistureThreshold int32
}

// Encode returns the fixed-size little-endian layout {version, threshold}.
func (s Settings) Encode() []byte {
	b := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(s.Version))
	binary.LittleEndian.PutUint32(b[4:8], uint32(s.MoistureThreshold))
	return b
}

// Decode parses a record. Short input is treated as erased.
func Decode(b []byte) Settings {
	if len(b) < RecordSize {
		return Settings{Version: UnsetVersion, MoistureThreshold: UnsetVersion}
	}
	return Settings{
		Version:           int32(binary.LittleEndian.Uint32(b[0:4])),
		MoistureThreshold: int32(binary.LittleEndian.Uint32(b[4:8])),
	}
}

// Store loads, migrates and saves Settings on a Storage collaborator.
type Store struct {
	storage          Storage
	sink             events.Sink
	defaultThreshold int32
}

// NewStore creates a Store. defaultThreshold is applied when the record is
// unset; informational events go to sink, which may be nil.
func NewStore(storage Storage, sink events.Sink, defaultThreshold int32) *Store {
	return &Store{
		storage:          storage,
		sink:             sink,
		defaultThreshold: defaultThreshold,
	}
}

// Defaults returns the settings applied when nothing has been persisted.
func (s *Store) Defaults() Settings {
	return Settings{Version: CurrentVersion, MoistureThreshold: s.defaultThreshold}
}

// Load reads the persisted record. An unset record is replaced by defaults
// and a stale version is stamped current; both are persisted immediately.
// Load never fails: a storage read error is treated as an unset record.
func (s *Store) Load() Settings {
	b, err := s.storage.ReadRecord()
	if err != nil {
		log.Printf("settings: read failed, treating as unset: %v", err)
		b = nil
	}
	rec := Decode(b)

	switch {
	case rec.Version == UnsetVersion:
		rec = s.Defaults()
		s.persist(rec)
		s.emit("no settings found, using defaults")
	case rec.Version != CurrentVersion:
		old := rec.Version
		// Field migrations for future versions go here; the threshold
		// carries forward unchanged.
		rec.Version = CurrentVersion
		s.persist(rec)
		s.emit(fmt.Sprintf("migrated settings from version %d to %d", old, CurrentVersion))
	}

	if rec.MoistureThreshold < 0 || rec.MoistureThreshold > 100 {
		log.Printf("settings: threshold %d is outside the 0-100 moisture scale", rec.MoistureThreshold)
	}
	return rec
}

// Save writes the full record in a single storage write.
func (s *Store) Save(rec Settings) error {
	if err := s.storage.WriteRecord(rec.Encode()); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Clear erases the record so the next Load applies defaults.
func (s *Store) Clear() error {
	if err := s.storage.Erase(); err != nil {
		return fmt.Errorf("erase settings: %w", err)
	}
	return nil
}

// persist saves rec and logs a failure.
func (s *Store) persist(rec Settings) {
	if err := s.Save(rec); err != nil {
		log.Printf("settings: %v", err)
	}
}

func (s *Store) emit(msg string) {
	log.Printf("settings: %s", msg)
	if s.sink != nil {
		s.sink.Emit(events.NameSettings, msg)
	}
}
