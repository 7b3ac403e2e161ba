// Package publish runs the load, render and store cycle for configured feeds.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/theoremus-urban-solutions/feedformatter/config"
	"github.com/theoremus-urban-solutions/feedformatter/feed"
	"github.com/theoremus-urban-solutions/feedformatter/metrics"
	"github.com/theoremus-urban-solutions/feedformatter/source"
	"github.com/theoremus-urban-solutions/feedformatter/store"
)

// ErrUnknownFeed is returned for a feed name that is not configured.
var ErrUnknownFeed = errors.New("unknown feed")

// Result describes one successful publish.
type Result struct {
	Feed     string
	Format   feed.Format
	Document store.Document
	Warnings map[string]int
	Duration time.Duration
}

// Publisher renders configured feeds. Store and metrics are optional.
type Publisher struct {
	cfg     *config.AppConfig
	store   *store.Store
	metrics *metrics.Collector
	logger  zerolog.Logger
	loc     *time.Location

	locks sync.Map // feed name -> *sync.Mutex
}

// New creates a publisher for cfg.
func New(cfg *config.AppConfig, st *store.Store, m *metrics.Collector, logger zerolog.Logger) (*Publisher, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return &Publisher{cfg: cfg, store: st, metrics: m, logger: logger, loc: loc}, nil
}

// Config returns the configuration the publisher was built with.
func (p *Publisher) Config() *config.AppConfig {
	return p.cfg
}

func (p *Publisher) lock(name string) func() {
	v, _ := p.locks.LoadOrStore(name, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// PublishByName publishes the configured feed called name. An empty format
// uses the feed's configured format.
func (p *Publisher) PublishByName(ctx context.Context, name, format string) (Result, error) {
	f, ok := p.cfg.Feed(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFeed, name)
	}
	return p.Publish(ctx, f, format)
}

// PublishAll publishes every configured feed, continuing past failures.
func (p *Publisher) PublishAll(ctx context.Context) ([]Result, error) {
	var (
		results []Result
		errs    []error
	)
	for _, f := range p.cfg.Feeds {
		res, err := p.Publish(ctx, f, "")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Publish loads f's source, renders it and stores and writes the result.
// Concurrent publishes of the same feed are serialized.
func (p *Publisher) Publish(ctx context.Context, f config.Feed, format string) (Result, error) {
	if format == "" {
		format = p.cfg.FormatOf(f)
	}
	ff, err := feed.ParseFormat(format)
	if err != nil {
		return Result{}, fmt.Errorf("feed %s: %w", f.Name, err)
	}

	unlock := p.lock(f.Name)
	defer unlock()

	start := time.Now()
	res, err := p.publish(ctx, f, ff)
	res.Duration = time.Since(start)
	p.metrics.ObserveRender(f.Name, ff.String(), res.Document.Items, res.Duration, err)
	if err != nil {
		p.logger.Error().Err(err).Str("feed", f.Name).Str("format", ff.String()).Msg("publish failed")
		return Result{}, fmt.Errorf("feed %s: %w", f.Name, err)
	}

	p.logger.Info().
		Str("feed", f.Name).
		Str("format", ff.String()).
		Int("items", res.Document.Items).
		Int("bytes", len(res.Document.Body)).
		Dur("duration", res.Duration).
		Msg("feed published")
	return res, nil
}

func (p *Publisher) publish(ctx context.Context, f config.Feed, ff feed.Format) (Result, error) {
	if f.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout())
		defer cancel()
	}

	fd, err := source.Load(ctx, source.NewFetcher(f.Timeout()), f.Source, source.LoadOptions{AssignIDs: f.AssignIDs})
	if err != nil {
		return Result{}, err
	}

	warnings := feed.NewWarningAggregator()
	body, err := fd.Format(ff, feed.Options{
		Validate: p.cfg.ValidateOutput(),
		Pretty:   p.cfg.PrettyOf(f),
		Location: p.loc,
		Warnings: warnings,
	})
	if err != nil {
		return Result{}, err
	}
	warnings.LogAll(p.logger, f.Name)
	counts := warnings.Counts()
	p.metrics.RecordWarnings(f.Name, counts)

	doc := store.Document{
		Name:        f.Name,
		Format:      ff.String(),
		ContentType: ff.ContentType(),
		Body:        body,
		ETag:        store.ETag(body),
		Items:       len(fd.Items),
		UpdatedAt:   time.Now(),
	}
	if p.store != nil {
		if err := p.store.Put(ctx, doc); err != nil {
			return Result{}, err
		}
	}
	if f.Output != "" {
		if err := writeAtomic(f.Output, body); err != nil {
			return Result{}, err
		}
	}
	return Result{Feed: f.Name, Format: ff, Document: doc, Warnings: counts}, nil
}

// writeAtomic replaces path so readers never observe a partial document.
func writeAtomic(path, body string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
