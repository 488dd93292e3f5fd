package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	bucketTranslations = []byte("translations")
	bucketMeta         = []byte("meta")
)

// BoltMemory is a translation memory backed by a bbolt file.
type BoltMemory struct {
	db *bbolt.DB
}

// NewBoltMemory opens (or creates) the memory at path.
func NewBoltMemory(path string) (*BoltMemory, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketTranslations, bucketMeta, bucketLanguages} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltMemory{db: db}, nil
}

type entry struct {
	Text    string `json:"text"`
	Created int64  `json:"created"`
}

func memoryKey(provider, src, tgt, unit string) []byte {
	h := sha256.New()
	for _, part := range []string{provider, src, tgt, unit} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return []byte(hex.EncodeToString(h.Sum(nil)))
}

// Lookup returns stored translations keyed by the index of the unit.
func (s *BoltMemory) Lookup(provider, src, tgt string, units []string) (map[int]string, error) {
	found := make(map[int]string)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTranslations)
		for i, u := range units {
			data := b.Get(memoryKey(provider, src, tgt, u))
			if data == nil {
				continue
			}
			var e entry
			if err := json.Unmarshal(data, &e); err != nil {
				return err
			}
			found[i] = e.Text
		}
		return nil
	})
	return found, err
}

// Store records translations in a single transaction.
func (s *BoltMemory) Store(provider, src, tgt string, units, translations []string) error {
	if len(units) != len(translations) {
		return fmt.Errorf("store: %d units but %d translations", len(units), len(translations))
	}
	now := time.Now().Unix()
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTranslations)
		for i, u := range units {
			data, err := json.Marshal(entry{Text: translations[i], Created: now})
			if err != nil {
				return err
			}
			if err := b.Put(memoryKey(provider, src, tgt, u), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of stored translations.
func (s *BoltMemory) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketTranslations).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (s *BoltMemory) Close() error {
	return s.db.Close()
}
