package history

import (
	"encoding/json"

	"go.etcd.io/bbolt"
)

var buckets = struct {
	Metadata []byte
	State    []byte
}{
	Metadata: []byte("__metadata__"),
	State:    []byte("clipsave"),
}

var keys = struct {
	Version []byte
	History []byte
	Theme   []byte
}{
	Version: []byte("version"),
	History: []byte("history"),
	Theme:   []byte("theme"),
}

const currentVersion = 1

// BoltStore persists the history log as a single JSON array under one
// key, and the theme preference under another, in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		metadata, err := tx.CreateBucketIfNotExists(buckets.Metadata)
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(buckets.State); err != nil {
			return err
		}

		var version int
		if versionBytes := metadata.Get(keys.Version); versionBytes != nil {
			if err := json.Unmarshal(versionBytes, &version); err != nil {
				return err
			}
		}

		// No migrations yet; just record the current version.
		versionBytes, err := json.Marshal(currentVersion)
		if err != nil {
			return err
		}
		return metadata.Put(keys.Version, versionBytes)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db}, nil
}

// Append inserts at the head and evicts past capacity inside a single
// write transaction, so no interleaved append can overshoot the bound.
func (s *BoltStore) Append(e Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(buckets.State)
		entries, err := decodeEntries(bucket.Get(keys.History))
		if err != nil {
			return err
		}
		entries = insertCapped(entries, e)
		data, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		return bucket.Put(keys.History, data)
	})
}

func (s *BoltStore) List() (entries []Entry, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		entries, err = decodeEntries(tx.Bucket(buckets.State).Get(keys.History))
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *BoltStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(buckets.State).Delete(keys.History)
	})
}

func (s *BoltStore) Theme() (theme string, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(buckets.State).Get(keys.Theme); data != nil {
			theme = string(data)
		}
		return nil
	})
	return theme, err
}

func (s *BoltStore) SetTheme(theme string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(buckets.State).Put(keys.Theme, []byte(theme))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func decodeEntries(data []byte) ([]Entry, error) {
	if data == nil {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
