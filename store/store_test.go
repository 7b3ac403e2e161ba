package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "feeds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_PutGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := Document{Name: "news", Format: "atom", ContentType: "application/atom+xml", Body: "<feed/>", Items: 3}
	require.NoError(t, s.Put(ctx, doc))

	got, err := s.Get(ctx, "news", "atom")
	require.NoError(t, err)
	assert.Equal(t, "<feed/>", got.Body)
	assert.Equal(t, 3, got.Items)
	assert.Equal(t, ETag("<feed/>"), got.ETag)
	assert.WithinDuration(t, time.Now(), got.UpdatedAt, time.Minute)

	_, err = s.Get(ctx, "news", "rss2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_PutReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, Document{Name: "news", Format: "rss2", ContentType: "application/rss+xml", Body: "v1"}))
	require.NoError(t, s.Put(ctx, Document{Name: "news", Format: "rss2", ContentType: "application/rss+xml", Body: "v2"}))

	got, err := s.Get(ctx, "news", "rss2")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Body)
	assert.NotEqual(t, ETag("v1"), got.ETag)

	docs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestStore_CurrentETag(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CurrentETag(ctx, "news", "atom")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, Document{Name: "news", Format: "atom", ContentType: "application/atom+xml", Body: "v1"}))
	etag, err := s.CurrentETag(ctx, "news", "atom")
	require.NoError(t, err)
	assert.Equal(t, ETag("v1"), etag)

	require.NoError(t, s.Put(ctx, Document{Name: "news", Format: "atom", ContentType: "application/atom+xml", Body: "v2"}))
	etag, err = s.CurrentETag(ctx, "news", "atom")
	require.NoError(t, err)
	assert.Equal(t, ETag("v2"), etag)
}

func TestStore_LatestAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Put(ctx, Document{Name: "news", Format: "atom", ContentType: "a", Body: "old", UpdatedAt: base}))
	require.NoError(t, s.Put(ctx, Document{Name: "news", Format: "rss2", ContentType: "r", Body: "new", UpdatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Put(ctx, Document{Name: "blog", Format: "rss1", ContentType: "x", Body: "b", UpdatedAt: base}))

	latest, err := s.Latest(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, "rss2", latest.Format)
	assert.True(t, latest.UpdatedAt.Equal(base.Add(time.Hour)))

	_, err = s.Latest(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	docs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "blog", docs[0].Name)
	assert.Equal(t, "atom", docs[1].Format)
	assert.Empty(t, docs[1].Body, "List omits bodies")

	n, err := s.Delete(ctx, "news")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStore_ConcurrentWriters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Put(ctx, Document{Name: "news", Format: "atom", ContentType: "a", Body: string(rune('a' + i))}))
		}(i)
	}
	wg.Wait()

	_, err := s.Get(ctx, "news", "atom")
	assert.NoError(t, err)
	assert.NoError(t, s.Ping(ctx))
}

func TestStore_PutRequiresKey(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Put(context.Background(), Document{Format: "atom"}))
}
