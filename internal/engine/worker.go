package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
	"github.com/aryannaik/bookmark-search/internal/index"
	"github.com/aryannaik/bookmark-search/internal/store"
)

// message is a unit of work for the worker goroutine.
type message interface {
	handle(e *Engine)
}

type addMsg struct {
	ctx   context.Context
	req   AddRequest
	reply chan error
}

func (m addMsg) handle(e *Engine) {
	err := e.add(m.ctx, m.req)
	e.metrics.RequestsTotal.WithLabelValues(ActionAdd, status(err)).Inc()
	m.reply <- err
}

type deleteMsg struct {
	ctx   context.Context
	req   DeleteRequest
	reply chan error
}

func (m deleteMsg) handle(e *Engine) {
	err := e.delete(m.ctx, m.req)
	e.metrics.RequestsTotal.WithLabelValues(ActionDelete, status(err)).Inc()
	m.reply <- err
}

type searchMsg struct {
	req   SearchRequest
	reply chan SearchResponse
}

func (m searchMsg) handle(e *Engine) {
	m.reply <- e.search(m.req)
}

type compactResult struct {
	n   int
	err error
}

type compactMsg struct {
	reply chan compactResult
}

func (m compactMsg) handle(e *Engine) {
	n, err := e.compact()
	m.reply <- compactResult{n: n, err: err}
}

type statsMsg struct {
	reply chan Stats
}

func (m statsMsg) handle(e *Engine) {
	m.reply <- e.stats()
}

type loadStartMsg struct {
	started chan struct{}
}

func (m loadStartMsg) handle(e *Engine) {
	e.touched = make(map[string]struct{})
	e.loadStart = time.Now()
	e.log.Info("bulk load started")
	close(m.started)
}

type loadRecordMsg struct {
	rec bookmark.Record
}

func (m loadRecordMsg) handle(e *Engine) {
	e.loadRecord(m.rec)
}

type loadDoneMsg struct {
	count int
	err   error
}

func (m loadDoneMsg) handle(e *Engine) {
	elapsed := time.Since(e.loadStart)
	e.touched = nil
	e.metrics.LoadDuration.Set(elapsed.Seconds())
	if m.err != nil {
		e.log.Error("bulk load stopped", "count", m.count, "duration", elapsed, "err", m.err)
	} else {
		e.log.Info("bulk load finished", "count", m.count, "cached", e.cache.Len(), "duration", elapsed)
	}
	e.finishLoad(m.err)
}

func document(rec bookmark.Record) index.Document {
	return index.Document{
		Title: rec.Title,
		Body:  rec.Text,
		URL:   rec.URL,
	}
}

// touch marks id as written by a live request so a running bulk load does
// not overwrite it with older store contents.
func (e *Engine) touch(id string) {
	if e.touched != nil {
		e.touched[id] = struct{}{}
	}
}

func (e *Engine) loadRecord(rec bookmark.Record) {
	if rec.URL == "" {
		e.log.Warn("skipping stored record without url")
		return
	}
	id := bookmark.ID(rec.URL)
	if _, ok := e.touched[id]; ok {
		return
	}
	if err := e.index.Add(id, document(rec)); err != nil {
		e.log.Error("index stored bookmark", "url", rec.URL, "err", err)
		return
	}
	if _, ok := e.unindexed[id]; ok {
		delete(e.unindexed, id)
		e.metrics.Unindexed.Set(float64(len(e.unindexed)))
	}
	e.setCached(id, rec)
	e.metrics.LoadedRecords.Inc()
}

func (e *Engine) setCached(id string, rec bookmark.Record) {
	if prev, ok := e.cache.Get(id); ok && prev.URL != rec.URL {
		e.log.Warn("bookmark id collision, replacing cached entry", "id", id, "url", rec.URL, "previous", prev.URL)
	}
	e.cache.Set(id, rec.View())
	e.metrics.CachedBookmarks.Set(float64(e.cache.Len()))
}

func (e *Engine) add(ctx context.Context, req AddRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	rec := req.record()
	if err := e.store.Put(ctx, rec); err != nil {
		e.log.Error("store bookmark", "url", rec.URL, "err", err)
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	id := bookmark.ID(rec.URL)
	e.touch(id)
	if err := e.index.Add(id, document(rec)); err != nil {
		// the record is durable; it stays listable and substring-searchable
		e.log.Error("index bookmark", "url", rec.URL, "err", err)
		e.metrics.IndexFailures.Inc()
		e.unindexed[id] = rec
	} else {
		delete(e.unindexed, id)
		delete(e.tombstones, id)
		e.metrics.Tombstones.Set(float64(len(e.tombstones)))
	}
	e.metrics.Unindexed.Set(float64(len(e.unindexed)))
	e.setCached(id, rec)
	e.log.Debug("bookmark added", "url", rec.URL, "id", id)
	return nil
}

func (e *Engine) delete(ctx context.Context, req DeleteRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if err := e.store.DeleteByURL(ctx, req.URL); err != nil {
		e.log.Error("delete stored bookmark", "url", req.URL, "err", err)
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	id := bookmark.ID(req.URL)
	e.touch(id)
	if v, ok := e.cache.Get(id); ok && v.URL == req.URL {
		e.cache.Delete(id)
		e.tombstones[id] = struct{}{}
		delete(e.unindexed, id)
		e.metrics.CachedBookmarks.Set(float64(e.cache.Len()))
		e.metrics.Tombstones.Set(float64(len(e.tombstones)))
		e.metrics.Unindexed.Set(float64(len(e.unindexed)))
	}
	e.log.Debug("bookmark deleted", "url", req.URL, "id", id)

	if e.compactThreshold > 0 && len(e.tombstones) >= e.compactThreshold {
		if _, err := e.compact(); err != nil {
			e.log.Error("compact index", "err", err)
		}
	}
	return nil
}

func (e *Engine) search(req SearchRequest) SearchResponse {
	start := time.Now()
	res, err := e.searcher.Search(req.Text, len(e.tombstones))
	e.metrics.SearchDuration.WithLabelValues(string(res.Strategy)).Observe(time.Since(start).Seconds())
	e.metrics.RequestsTotal.WithLabelValues(ActionSearch, status(err)).Inc()
	if err != nil {
		e.log.Error("search bookmarks", "text", req.Text, "err", err)
	}
	if res.Dropped > 0 {
		e.metrics.StaleHitsDropped.Add(float64(res.Dropped))
	}
	return SearchResponse{
		Result:   res.Views,
		Scope:    Scope,
		Callback: req.CallbackID,
	}
}

// reindex retries index writes that failed after the record was stored.
func (e *Engine) reindex() {
	n := 0
	for id, rec := range e.unindexed {
		if err := e.index.Add(id, document(rec)); err != nil {
			e.log.Warn("reindex bookmark", "url", rec.URL, "err", err)
			continue
		}
		delete(e.unindexed, id)
		n++
	}
	e.metrics.Unindexed.Set(float64(len(e.unindexed)))
	if n > 0 {
		e.log.Info("bookmarks reindexed", "count", n, "pending", len(e.unindexed))
	}
}

// compact purges tombstoned postings. Failed index writes are retried after
// the purge.
func (e *Engine) compact() (int, error) {
	defer e.reindex()
	if len(e.tombstones) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(e.tombstones))
	for id := range e.tombstones {
		ids = append(ids, id)
	}
	if err := e.index.Delete(ids...); err != nil {
		return 0, err
	}
	clear(e.tombstones)
	e.metrics.Tombstones.Set(0)
	e.log.Info("index compacted", "purged", len(ids))
	return len(ids), nil
}

func (e *Engine) stats() Stats {
	indexed, err := e.index.Count()
	if err != nil {
		e.log.Warn("count index documents", "err", err)
	}
	loaded := false
	select {
	case <-e.loaded:
		loaded = !errors.Is(e.loadErr, ErrClosed)
	default:
	}
	st := Stats{
		Cached:     e.cache.Len(),
		Indexed:    indexed,
		Tombstones: len(e.tombstones),
		Unindexed:  len(e.unindexed),
		Loading:    e.touched != nil,
		Loaded:     loaded,
	}
	if r, ok := e.store.(store.Reporter); ok {
		rep := r.Report()
		st.Store = &rep
	}
	return st
}
