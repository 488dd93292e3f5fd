package store

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"aomame/internal/domain"
)

var bucketLanguages = []byte("languages")

type languageList struct {
	Fetched   time.Time         `json:"fetched"`
	Languages []domain.Language `json:"languages"`
}

// LoadLanguages returns the list saved under key and when it was fetched.
// A missing list yields nil and no error.
func (s *BoltMemory) LoadLanguages(key string) ([]domain.Language, time.Time, error) {
	var list languageList
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketLanguages).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &list)
	})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load languages of %s: %w", key, err)
	}
	if !found {
		return nil, time.Time{}, nil
	}
	if list.Languages == nil {
		list.Languages = []domain.Language{}
	}
	return list.Languages, list.Fetched, nil
}

// SaveLanguages replaces the list saved under key.
func (s *BoltMemory) SaveLanguages(key string, langs []domain.Language, fetched time.Time) error {
	data, err := json.Marshal(languageList{Fetched: fetched, Languages: langs})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLanguages).Put([]byte(key), data)
	})
}
