package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	prefsBucket     = []byte("preferences")
	deletionsBucket = []byte("deletions")

	prefsKey = []byte("ui")
)

// MemoryPath opens a throwaway database that is removed on Close.
const MemoryPath = ":memory:"

var ErrNotFound = errors.New("not found")

type Store struct {
	db      *bolt.DB
	tmpPath string
}

func NewStore(dbPath string) (*Store, error) {
	return Open(dbPath, 1*time.Second)
}

// Open opens or creates the database at dbPath, waiting up to timeout for
// the file lock.
func Open(dbPath string, timeout time.Duration) (*Store, error) {
	var tmpPath string
	if dbPath == MemoryPath {
		f, err := os.CreateTemp("", "postdeck-*.db")
		if err != nil {
			return nil, fmt.Errorf("creating temporary database: %w", err)
		}
		tmpPath = f.Name()
		f.Close()
		dbPath = tmpPath
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{prefsBucket, deletionsBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, tmpPath: tmpPath}, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.tmpPath != "" {
		os.Remove(s.tmpPath)
	}
	return err
}

// LoadPreferences returns ErrNotFound until preferences were saved once.
func (s *Store) LoadPreferences() (*Preferences, error) {
	var prefs Preferences
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(prefsBucket).Get(prefsKey)
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &prefs)
	})
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (s *Store) SavePreferences(prefs *Preferences) error {
	prefs.UpdatedAt = time.Now()
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(prefs)
		if err != nil {
			return err
		}
		return tx.Bucket(prefsBucket).Put(prefsKey, data)
	})
}

// RecordDeletion appends d to the journal and fills in Seq and, when unset,
// DeletedAt.
func (s *Store) RecordDeletion(d *Deletion) error {
	if d.DeletedAt.IsZero() {
		d.DeletedAt = time.Now()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(deletionsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		d.Seq = seq

		data, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
}

// Deletions returns journal entries newest first. ownerID 0 means every
// owner; limit 0 means no limit.
func (s *Store) Deletions(ownerID, limit int) ([]*Deletion, error) {
	var out []*Deletion
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(deletionsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var d Deletion
			if err := json.Unmarshal(v, &d); err != nil {
				continue
			}
			if ownerID != 0 && d.OwnerID != ownerID {
				continue
			}
			out = append(out, &d)
			if limit > 0 && len(out) >= limit {
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ClearDeletions empties the journal and returns how many entries it held.
func (s *Store) ClearDeletions() (int, error) {
	var n int
	err := s.db.Update(func(tx *bolt.Tx) error {
		n = tx.Bucket(deletionsBucket).Stats().KeyN
		if err := tx.DeleteBucket(deletionsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(deletionsBucket)
		return err
	})
	return n, err
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}
