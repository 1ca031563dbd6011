package history

import (
	"fmt"
	"path/filepath"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	require_ "github.com/stretchr/testify/require"

	"github.com/clipsave/clipsave"
	"github.com/clipsave/clipsave/generic"
)

func testEntry(i int) Entry {
	return NewEntry(clipsave.VideoDescriptor{
		SourceURL:   fmt.Sprintf("https://www.tiktok.com/@someuser/video/%d", i),
		Platform:    clipsave.PlatformTikTok,
		Title:       fmt.Sprintf("video %d", i),
		Duration:    generic.Some(30 + i),
		SizeMB:      generic.Some(float64(i)),
		DownloadURL: fmt.Sprintf("https://cdn.example.com/%d.mp4", i),
	})
}

func TestNewEntry(t *testing.T) {
	assert := assert_.New(t)

	d := clipsave.VideoDescriptor{
		SourceURL: "https://youtu.be/dQw4w9WgXcQ",
		Platform:  clipsave.PlatformYouTube,
		Title:     "a video",
		Duration:  generic.Some(212),
	}
	e := NewEntry(d)
	assert.NotEmpty(e.ID)
	assert.Equal("a video", e.Title)
	assert.Equal(clipsave.PlatformYouTube, e.Platform)
	assert.Equal("https://youtu.be/dQw4w9WgXcQ", e.SourceURL)
	require_.NotNil(t, e.DurationSeconds)
	assert.Equal(212, *e.DurationSeconds)
	assert.Nil(e.SizeMB)
	assert.False(e.SavedAt.IsZero())

	// IDs are unique per entry.
	assert.NotEqual(e.ID, NewEntry(d).ID)
}

// storeTest exercises the Store contract shared by every backend.
func storeTest(t *testing.T, store Store) {
	assert := assert_.New(t)

	entries, err := store.List()
	assert.NoError(err)
	assert.Empty(entries)

	first := testEntry(0)
	assert.NoError(store.Append(first))
	entries, err = store.List()
	assert.NoError(err)
	require_.Len(t, entries, 1)
	assert.Equal(first.ID, entries[0].ID)
	assert.Equal("video 0", entries[0].Title)

	// Newest first.
	second := testEntry(1)
	assert.NoError(store.Append(second))
	entries, err = store.List()
	assert.NoError(err)
	require_.Len(t, entries, 2)
	assert.Equal(second.ID, entries[0].ID)
	assert.Equal(first.ID, entries[1].ID)

	// The 11th append evicts the oldest entry.
	for i := 2; i <= MaxEntries; i++ {
		assert.NoError(store.Append(testEntry(i)))
	}
	entries, err = store.List()
	assert.NoError(err)
	require_.Len(t, entries, MaxEntries)
	assert.Equal("video 10", entries[0].Title)
	assert.Equal("video 1", entries[MaxEntries-1].Title)
	for _, e := range entries {
		assert.NotEqual(first.ID, e.ID)
	}

	assert.NoError(store.Clear())
	entries, err = store.List()
	assert.NoError(err)
	assert.Empty(entries)

	theme, err := store.Theme()
	assert.NoError(err)
	assert.Equal("", theme)
	assert.NoError(store.SetTheme("dark"))
	theme, err = store.Theme()
	assert.NoError(err)
	assert.Equal("dark", theme)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	storeTest(t, store)
}

func TestBoltStore(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "history.db"))
	require_.NoError(t, err)
	defer store.Close()
	storeTest(t, store)
}

func TestGormStore(t *testing.T) {
	store, err := NewGormStore(filepath.Join(t.TempDir(), "history.db"), nil)
	require_.NoError(t, err)
	defer store.Close()
	storeTest(t, store)
}

func TestBoltStorePersistence(t *testing.T) {
	assert := assert_.New(t)

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewBoltStore(path)
	require_.NoError(t, err)
	e := testEntry(0)
	assert.NoError(store.Append(e))
	assert.NoError(store.SetTheme("light"))
	assert.NoError(store.Close())

	store, err = NewBoltStore(path)
	require_.NoError(t, err)
	defer store.Close()
	entries, err := store.List()
	assert.NoError(err)
	require_.Len(t, entries, 1)
	assert.Equal(e.ID, entries[0].ID)
	theme, err := store.Theme()
	assert.NoError(err)
	assert.Equal("light", theme)
}

func TestInsertCapped(t *testing.T) {
	assert := assert_.New(t)

	var entries []Entry
	for i := 0; i < MaxEntries+5; i++ {
		entries = insertCapped(entries, testEntry(i))
		if i < MaxEntries {
			assert.Len(entries, i+1)
		} else {
			assert.Len(entries, MaxEntries)
		}
		assert.Equal(fmt.Sprintf("video %d", i), entries[0].Title)
	}
}
