package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/theoremus-urban-solutions/feedformatter/config"
	"github.com/theoremus-urban-solutions/feedformatter/source"
)

// ErrNotWatchable is returned when a feed's source is not a local file.
var ErrNotWatchable = errors.New("only local sources can be watched")

// Watch publishes f once, then again every time its source file is written,
// until ctx is done. Failed renders are logged and leave the previous
// output in place.
func (p *Publisher) Watch(ctx context.Context, f config.Feed) error {
	if source.IsURL(f.Source) || f.Source == "" {
		return fmt.Errorf("%w: %q", ErrNotWatchable, f.Source)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory (more reliable for editors that do atomic saves)
	if err := watcher.Add(filepath.Dir(f.Source)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	_, err = p.Publish(ctx, f, "")
	p.metrics.ObserveWatch(err)

	p.logger.Info().Str("feed", f.Name).Str("path", f.Source).Msg("watching source for changes")
	return p.watchLoop(ctx, watcher, f)
}

func (p *Publisher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, f config.Feed) error {
	filename := filepath.Base(f.Source)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Only react to our source file
			if filepath.Base(event.Name) != filename {
				continue
			}

			// React to write or create (atomic save = create)
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				p.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("source file changed")

				_, err := p.Publish(ctx, f, "")
				p.metrics.ObserveWatch(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}
