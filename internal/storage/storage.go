package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/eugenenazirov/seating-planner/internal/seating"
)

const defaultSeatsPerTable = 8

var (
	// ErrInvalidSettings indicates the provided settings violate validation rules.
	ErrInvalidSettings = errors.New("seats per table must be a positive integer")
	// ErrNotFound indicates the requested arrangement is not the one currently held.
	ErrNotFound = errors.New("arrangement not found")
)

// Settings are the defaults applied when a request does not specify them.
type Settings struct {
	SeatsPerTable int
	Diversify     bool
}

// Record is a generated arrangement together with the parameters that produced it.
type Record struct {
	ID            string
	CreatedAt     time.Time
	SeatsPerTable int
	Diversify     bool
	Seed          *uint64
	Arrangement   seating.Arrangement
}

// Storage provides access to seating settings and the latest arrangement.
type Storage interface {
	GetSettings() (Settings, error)
	SetSettings(settings Settings) error
	SaveArrangement(record Record) error
	GetArrangement(id string) (Record, error)
}

// MemoryStorage keeps state in-memory and guards access with a RWMutex. Only
// the most recent arrangement is retained.
type MemoryStorage struct {
	mu       sync.RWMutex
	settings Settings
	latest   *Record
}

// NewMemoryStorage initialises storage with the default settings.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		settings: DefaultSettings(),
	}
}

// DefaultSettings returns the built-in seating settings.
func DefaultSettings() Settings {
	return Settings{SeatsPerTable: defaultSeatsPerTable}
}

// GetSettings returns the current settings.
func (s *MemoryStorage) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings, nil
}

// SetSettings validates and stores the provided settings.
func (s *MemoryStorage) SetSettings(settings Settings) error {
	if settings.SeatsPerTable <= 0 {
		return ErrInvalidSettings
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	return nil
}

// SaveArrangement replaces the held arrangement with record.
func (s *MemoryStorage) SaveArrangement(record Record) error {
	record.Arrangement = cloneArrangement(record.Arrangement)

	s.mu.Lock()
	s.latest = &record
	s.mu.Unlock()

	return nil
}

// GetArrangement returns a copy of the held arrangement if its ID matches.
func (s *MemoryStorage) GetArrangement(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil || s.latest.ID != id {
		return Record{}, ErrNotFound
	}
	record := *s.latest
	record.Arrangement = cloneArrangement(s.latest.Arrangement)
	return record, nil
}

func cloneArrangement(src seating.Arrangement) seating.Arrangement {
	if src.Tables == nil {
		return seating.Arrangement{}
	}

	tables := make([]seating.Table, len(src.Tables))
	for i, t := range src.Tables {
		tables[i] = t
		tables[i].People = append([]seating.Person(nil), t.People...)
	}
	return seating.Arrangement{Tables: tables}
}
