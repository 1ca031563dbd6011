// Package history keeps the bounded most-recent-first log of saved
// videos, backed by an injected persistent store.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/internal/sync_"
)

// MaxEntries bounds the log length; appending beyond it evicts the
// oldest entry.
const MaxEntries = 10

// An Entry is the persisted snapshot of one saved video.
type Entry struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Platform        clipsave.Platform `json:"platform"`
	SourceURL       string            `json:"url"`
	SizeMB          *float64          `json:"size_mb,omitempty"`
	DurationSeconds *int              `json:"duration_seconds,omitempty"`
	SavedAt         time.Time         `json:"saved_at"`
}

// NewEntry snapshots a descriptor at completion time.
func NewEntry(d clipsave.VideoDescriptor) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Title:     d.Title,
		Platform:  d.Platform,
		SourceURL: d.SourceURL,
		SavedAt:   time.Now(),
	}
	if size, ok := d.SizeMB.Parts(); ok {
		e.SizeMB = &size
	}
	if duration, ok := d.Duration.Parts(); ok {
		e.DurationSeconds = &duration
	}
	return e
}

// A Store persists the history log and the theme preference. Append must
// enforce the MaxEntries bound atomically; List returns entries
// most-recent-first.
type Store interface {
	Append(e Entry) error
	List() ([]Entry, error)
	Clear() error
	Theme() (string, error)
	SetTheme(theme string) error
	Close() error
}

// insertCapped inserts at the head and evicts from the tail past
// MaxEntries. Callers must make the surrounding read-modify-write atomic.
func insertCapped(entries []Entry, e Entry) []Entry {
	entries = append([]Entry{e}, entries...)
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

// MemoryStore is a non-persistent Store for tests and demo mode.
type MemoryStore struct {
	state *sync_.Mutexed[memoryState]
}

type memoryState struct {
	entries []Entry
	theme   string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: sync_.NewMutexed(memoryState{})}
}

func (s *MemoryStore) Append(e Entry) error {
	return s.state.Locked(func(state *memoryState) error {
		state.entries = insertCapped(state.entries, e)
		return nil
	})
}

func (s *MemoryStore) List() ([]Entry, error) {
	var entries []Entry
	_ = s.state.RLocked(func(state memoryState) error {
		entries = make([]Entry, len(state.entries))
		copy(entries, state.entries)
		return nil
	})
	return entries, nil
}

func (s *MemoryStore) Clear() error {
	return s.state.Locked(func(state *memoryState) error {
		state.entries = nil
		return nil
	})
}

func (s *MemoryStore) Theme() (string, error) {
	var theme string
	_ = s.state.RLocked(func(state memoryState) error {
		theme = state.theme
		return nil
	})
	return theme, nil
}

func (s *MemoryStore) SetTheme(theme string) error {
	return s.state.Locked(func(state *memoryState) error {
		state.theme = theme
		return nil
	})
}

func (s *MemoryStore) Close() error {
	return nil
}
