package publish

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/feedformatter/config"
	"github.com/theoremus-urban-solutions/feedformatter/metrics"
	"github.com/theoremus-urban-solutions/feedformatter/store"
)

const newsDoc = `
feed:
  title: News
  link: http://e/
  description: Latest news
  author: editor@example.com
items:
  - title: First
    link: http://e/1
    description: one
    author: Luke Maurits
`

type fixture struct {
	dir       string
	cfg       *config.AppConfig
	store     *store.Store
	metrics   *metrics.Collector
	publisher *Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "news.yml")
	require.NoError(t, os.WriteFile(src, []byte(newsDoc), 0644))

	cfg, err := config.Parse([]byte(`
output:
  format: rss2
  timezone: UTC
feeds:
  - name: news
    source: ` + src + `
    output: ` + filepath.Join(dir, "news.xml") + `
  - name: broken
    source: ` + filepath.Join(dir, "missing.yml") + `
`))
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(dir, "feeds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	m := metrics.New(prometheus.NewRegistry())
	p, err := New(cfg, st, m, zerolog.Nop())
	require.NoError(t, err)
	return &fixture{dir: dir, cfg: cfg, store: st, metrics: m, publisher: p}
}

func TestPublish_StoresAndWrites(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	res, err := fx.publisher.PublishByName(ctx, "news", "")
	require.NoError(t, err)
	assert.Equal(t, "rss2", res.Document.Format)
	assert.Equal(t, 1, res.Document.Items)
	assert.Equal(t, 1, res.Warnings["dropped_value"], "author without email is dropped from RSS 2.0")

	doc, err := fx.store.Get(ctx, "news", "rss2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.Body, `<?xml version="1.0" encoding="UTF-8" ?>`))
	assert.Equal(t, "application/rss+xml", doc.ContentType)

	written, err := os.ReadFile(filepath.Join(fx.dir, "news.xml"))
	require.NoError(t, err)
	assert.Equal(t, doc.Body, string(written))

	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.RendersTotal.WithLabelValues("news", "rss2", "ok")))
}

func TestPublish_FormatOverride(t *testing.T) {
	fx := newFixture(t)
	res, err := fx.publisher.PublishByName(context.Background(), "news", "atom")
	require.NoError(t, err)
	assert.Contains(t, res.Document.Body, `<feed xmlns="http://www.w3.org/2005/Atom">`)

	_, err = fx.publisher.PublishByName(context.Background(), "news", "json")
	assert.Error(t, err)
}

func TestPublish_Errors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.publisher.PublishByName(ctx, "nope", "")
	assert.ErrorIs(t, err, ErrUnknownFeed)

	_, err = fx.publisher.PublishByName(ctx, "broken", "")
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.RendersTotal.WithLabelValues("broken", "rss2", "error")))

	results, err := fx.publisher.PublishAll(ctx)
	assert.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "news", results[0].Feed)
}

func TestPublish_ValidationFailureKeepsPreviousOutput(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_, err := fx.publisher.PublishByName(ctx, "news", "")
	require.NoError(t, err)

	f, _ := fx.cfg.Feed("news")
	require.NoError(t, os.WriteFile(f.Source, []byte("feed:\n  title: only a title\n"), 0644))
	_, err = fx.publisher.PublishByName(ctx, "news", "")
	require.Error(t, err)

	doc, err := fx.store.Get(ctx, "news", "rss2")
	require.NoError(t, err)
	assert.Contains(t, doc.Body, "<title>News</title>")
}

func TestWatch_RerendersOnWrite(t *testing.T) {
	fx := newFixture(t)
	f, _ := fx.cfg.Feed("news")
	output := f.Output

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fx.publisher.Watch(ctx, f) }()

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(output)
		return err == nil && strings.Contains(string(data), "<title>News</title>")
	}, 5*time.Second, 20*time.Millisecond)

	updated := strings.Replace(newsDoc, "title: News", "title: Breaking", 1)
	require.Eventually(t, func() bool {
		// rewrite until the watcher has registered and picked up a change
		_ = os.WriteFile(f.Source, []byte(updated), 0644)
		data, err := os.ReadFile(output)
		return err == nil && strings.Contains(string(data), "<title>Breaking</title>")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestWatch_RejectsURL(t *testing.T) {
	fx := newFixture(t)
	err := fx.publisher.Watch(context.Background(), config.Feed{Name: "remote", Source: "https://example.com/feed.yml"})
	assert.ErrorIs(t, err, ErrNotWatchable)
}
