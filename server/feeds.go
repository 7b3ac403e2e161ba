package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/theoremus-urban-solutions/feedformatter/feed"
	"github.com/theoremus-urban-solutions/feedformatter/publish"
	"github.com/theoremus-urban-solutions/feedformatter/store"
)

type listEntry struct {
	Name        string    `json:"name"`
	Format      string    `json:"format"`
	ContentType string    `json:"content_type"`
	Items       int       `json:"items"`
	ETag        string    `json:"etag"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type refreshResponse struct {
	Name       string         `json:"name"`
	Format     string         `json:"format"`
	Items      int            `json:"items"`
	Bytes      int            `json:"bytes"`
	DurationMS int64          `json:"duration_ms"`
	Warnings   map[string]int `json:"warnings,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]listEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, listEntry{
			Name:        d.Name,
			Format:      d.Format,
			ContentType: d.ContentType,
			Items:       d.Items,
			ETag:        d.ETag,
			UpdatedAt:   d.UpdatedAt.UTC(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// requestedFormat resolves ?format=, then the feed's configured format. An
// empty result means "whatever was published last".
func (s *Server) requestedFormat(r *http.Request, name string) (string, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := feed.ParseFormat(q)
		if err != nil {
			return "", err
		}
		return f.String(), nil
	}
	if f, ok := s.cfg.Feed(name); ok {
		return s.cfg.FormatOf(f), nil
	}
	return "", nil
}

func (s *Server) lookup(ctx context.Context, name, format string) (store.Document, error) {
	if format == "" {
		return s.store.Latest(ctx, name)
	}
	// Other processes (update, watch) write the same store, so a cached
	// document is only served while its ETag is still current.
	if doc, ok := s.cache.get(name, format); ok {
		etag, err := s.store.CurrentETag(ctx, name, format)
		if err == nil && etag == doc.ETag {
			return doc, nil
		}
		s.cache.drop(name, format)
	}
	doc, err := s.store.Get(ctx, name, format)
	if errors.Is(err, store.ErrNotFound) && s.publisher != nil {
		if _, configured := s.cfg.Feed(name); configured {
			res, perr := s.publisher.PublishByName(ctx, name, format)
			if perr != nil {
				return store.Document{}, perr
			}
			doc, err = res.Document, nil
		}
	}
	if err != nil {
		return store.Document{}, err
	}
	s.cache.put(doc)
	return doc, nil
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	format, err := s.requestedFormat(r, name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	doc, err := s.lookup(r.Context(), name, format)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	w.Header().Set("ETag", doc.ETag)
	w.Header().Set("Last-Modified", doc.UpdatedAt.UTC().Format(http.TimeFormat))
	if match := r.Header.Get("If-None-Match"); match != "" && match == doc.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte(doc.Body))
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("publishing is not enabled"))
		return
	}
	name := chi.URLParam(r, "name")
	format := ""
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := feed.ParseFormat(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		format = f.String()
	}

	res, err := s.publisher.PublishByName(r.Context(), name, format)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.cache.put(res.Document)
	writeJSON(w, http.StatusOK, refreshResponse{
		Name:       res.Feed,
		Format:     res.Format.String(),
		Items:      res.Document.Items,
		Bytes:      len(res.Document.Body),
		DurationMS: res.Duration.Milliseconds(),
		Warnings:   res.Warnings,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, publish.ErrUnknownFeed):
		return http.StatusNotFound
	case errors.Is(err, feed.ErrInvalidFeed), errors.Is(err, feed.ErrMalformedDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}
