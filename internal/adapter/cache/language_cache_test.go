package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aomame/internal/domain"
)

type fakeLister struct {
	calls int
	langs []domain.Language
	err   error
}

func (f *fakeLister) Languages(context.Context) ([]domain.Language, error) {
	f.calls++
	return f.langs, f.err
}

func TestLanguageCacheIsLazy(t *testing.T) {
	lister := &fakeLister{langs: []domain.Language{{Code: "fr"}, {Code: "de"}}}
	c := NewLanguageCache(lister, time.Hour)
	assert.Zero(t, lister.calls)

	ok, err := c.Supports(context.Background(), "fr")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Supports(context.Background(), "xx")
	require.NoError(t, err)
	assert.False(t, ok)

	langs, err := c.Languages(context.Background())
	require.NoError(t, err)
	assert.Len(t, langs, 2)
	assert.Equal(t, 1, lister.calls)
}

func TestLanguageCacheExpires(t *testing.T) {
	lister := &fakeLister{langs: []domain.Language{{Code: "fr"}}}
	c := NewLanguageCache(lister, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Languages(context.Background())
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = c.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	now = now.Add(time.Minute)
	_, err = c.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestLanguageCacheKeepsListOnFailedRefresh(t *testing.T) {
	lister := &fakeLister{langs: []domain.Language{{Code: "fr"}}}
	c := NewLanguageCache(lister, time.Hour)
	_, err := c.Languages(context.Background())
	require.NoError(t, err)

	lister.err = errors.New("down")
	_, err = c.Refresh(context.Background())
	require.Error(t, err)

	ok, err := c.Supports(context.Background(), "fr")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLanguageCacheServesExpiredListWhenRefetchFails(t *testing.T) {
	lister := &fakeLister{langs: []domain.Language{{Code: "fr"}}}
	c := NewLanguageCache(lister, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	_, err := c.Languages(context.Background())
	require.NoError(t, err)

	now = now.Add(time.Hour)
	lister.err = errors.New("down")
	langs, err := c.Languages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.Language{{Code: "fr"}}, langs)
	assert.Equal(t, 2, lister.calls)

	_, err = c.Refresh(context.Background())
	assert.EqualError(t, err, "down")
}

type fakeLanguageStore struct {
	saved   map[string][]domain.Language
	fetched map[string]time.Time
	loadErr error
	loads   int
}

func newFakeLanguageStore() *fakeLanguageStore {
	return &fakeLanguageStore{saved: map[string][]domain.Language{}, fetched: map[string]time.Time{}}
}

func (s *fakeLanguageStore) LoadLanguages(key string) ([]domain.Language, time.Time, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, time.Time{}, s.loadErr
	}
	return s.saved[key], s.fetched[key], nil
}

func (s *fakeLanguageStore) SaveLanguages(key string, langs []domain.Language, fetched time.Time) error {
	s.saved[key] = langs
	s.fetched[key] = fetched
	return nil
}

func TestLanguageCachePersistsAcrossInstances(t *testing.T) {
	store := newFakeLanguageStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := &fakeLister{langs: []domain.Language{{Code: "fr"}, {Code: "de"}}}
	c1 := NewLanguageCache(first, time.Hour).WithStore("google", store, nil)
	c1.now = func() time.Time { return now }
	_, err := c1.Languages(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.saved["google"], 2)

	second := &fakeLister{langs: []domain.Language{{Code: "es"}}}
	c2 := NewLanguageCache(second, time.Hour).WithStore("google", store, nil)
	c2.now = func() time.Time { return now.Add(30 * time.Minute) }
	ok, err := c2.Supports(context.Background(), "de")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, second.calls)

	c3 := NewLanguageCache(second, time.Hour).WithStore("google", store, nil)
	c3.now = func() time.Time { return now.Add(2 * time.Hour) }
	langs, err := c3.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Language{{Code: "es"}}, langs)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, []domain.Language{{Code: "es"}}, store.saved["google"])
}

func TestLanguageCacheStoreLoadFailureFetches(t *testing.T) {
	store := newFakeLanguageStore()
	store.loadErr = errors.New("corrupt")
	lister := &fakeLister{langs: []domain.Language{{Code: "fr"}}}
	c := NewLanguageCache(lister, time.Hour).WithStore("google", store, nil)

	_, err := c.Languages(context.Background())
	require.NoError(t, err)
	_, err = c.Languages(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, lister.calls)
	assert.Equal(t, 1, store.loads)
}

func TestLanguageCacheFetchError(t *testing.T) {
	lister := &fakeLister{err: &domain.ResponseError{Provider: "fake", Status: 401}}
	c := NewLanguageCache(lister, time.Hour)

	_, err := c.Supports(context.Background(), "fr")

	assert.Equal(t, domain.KindResponse, domain.KindOf(err))
}
