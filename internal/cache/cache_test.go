package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	s.Set("k", 42, GlobalTag(KindCountries))
	value, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, value)
}

func TestRevalidateMakesEntriesStale(t *testing.T) {
	s := NewStore()
	productTag := IDTag("100", KindProducts)
	countryTag := GlobalTag(KindCountries)

	s.Set("banner", "v1", productTag, countryTag)
	s.Set("unrelated", "keep", UserTag("u1", KindSubscription))

	s.Revalidate(countryTag)

	_, ok := s.Get("banner")
	assert.False(t, ok, "entry sharing a revalidated tag must go stale")

	value, ok := s.Get("unrelated")
	require.True(t, ok)
	assert.Equal(t, "keep", value)
}

func TestRevalidateAnyTagCoversEntry(t *testing.T) {
	s := NewStore()
	tags := []Tag{IDTag("7", KindProducts), GlobalTag(KindCountryGroups)}

	for _, tag := range tags {
		s.Set("k", "v", tags...)
		s.Revalidate(tag)
		if _, ok := s.Get("k"); ok {
			t.Fatalf("entry survived revalidation of %s", tag)
		}
	}
}

func TestRevalidateEvictsIndexedKeys(t *testing.T) {
	s := NewStore()
	tag := UserTag("u1", KindProducts)
	for i := 0; i < 10; i++ {
		s.Set(Key("products", fmt.Sprint(i)), i, tag)
	}
	require.Equal(t, 10, s.Len())

	s.Revalidate(tag)
	assert.Equal(t, 0, s.Len())
}

func TestReadMemoizes(t *testing.T) {
	s := NewStore()
	tag := UserTag("u1", KindProducts)
	calls := 0
	loader := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	ctx := context.Background()
	value, err := Read(ctx, s, "count", []Tag{tag}, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, value)

	value, err = Read(ctx, s, "count", []Tag{tag}, loader)
	require.NoError(t, err)
	assert.Equal(t, 1, value, "second read must hit the cache")

	s.Revalidate(tag)
	value, err = Read(ctx, s, "count", []Tag{tag}, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, value, "read after revalidation must reload")
}

func TestReadErrorNotCached(t *testing.T) {
	s := NewStore()
	failed := errors.New("load failed")
	calls := 0
	loader := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", failed
		}
		return "ok", nil
	}

	ctx := context.Background()
	_, err := Read(ctx, s, "k", nil, loader)
	require.ErrorIs(t, err, failed)

	value, err := Read(ctx, s, "k", nil, loader)
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, 2, calls)
}

func TestConcurrentReadersAndInvalidators(t *testing.T) {
	s := NewStore()
	tag := GlobalTag(KindCountries)

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			key := Key("w", fmt.Sprint(worker))
			for i := 0; i < 500; i++ {
				s.Set(key, i, tag)
				s.Get(key)
				if i%50 == 0 {
					s.Revalidate(tag)
				}
			}
		}(worker)
	}
	wg.Wait()
}

func TestTagGrammar(t *testing.T) {
	assert.Equal(t, Tag("global:countries"), GlobalTag(KindCountries))
	assert.Equal(t, Tag("user:u42-products"), UserTag("u42", KindProducts))
	assert.Equal(t, Tag("id:9000-products"), IDTag("9000", KindProducts))
}
