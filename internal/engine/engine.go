// Package engine keeps the bookmark index and lookup cache in step with the
// record store and answers searches against them.
//
// All state is owned by a single worker goroutine. Public methods send a
// message to the worker and wait for its reply, so requests are processed
// one at a time, in arrival order, to completion. The startup bulk load
// posts one message per record into the same queue; requests issued while it
// runs see whatever has been loaded so far.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
	"github.com/aryannaik/bookmark-search/internal/cache"
	"github.com/aryannaik/bookmark-search/internal/index"
	"github.com/aryannaik/bookmark-search/internal/logging"
	"github.com/aryannaik/bookmark-search/internal/metrics"
	"github.com/aryannaik/bookmark-search/internal/search"
	"github.com/aryannaik/bookmark-search/internal/store"
)

const defaultInboxSize = 64

type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Registry
	// SearchLimit caps ranked results. Defaults to search.DefaultLimit.
	SearchLimit int
	// SearchMode combines ranked query terms. Defaults to index.ModeAnd.
	SearchMode index.Mode
	// CompactThreshold purges deleted postings from the index once this many
	// accumulate. Zero disables automatic compaction.
	CompactThreshold int
	InboxSize        int
}

// indexer is the part of *index.Index the worker drives.
type indexer interface {
	search.Index
	Add(id string, doc index.Document) error
	Delete(ids ...string) error
	Count() (uint64, error)
	Close() error
}

type Engine struct {
	store    store.Store
	index    indexer
	cache    *cache.Cache
	searcher *search.Searcher
	log      *slog.Logger
	metrics  *metrics.Registry

	compactThreshold int

	// worker-owned state
	tombstones map[string]struct{}
	// ids mutated during a bulk load; nil when not loading
	touched    map[string]struct{}
	// cached but missing from the index; retried on compaction
	unindexed  map[string]bookmark.Record
	loadStart  time.Time

	inbox     chan message
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	loaders   sync.WaitGroup

	lifeMu      sync.Mutex
	closed      bool
	loadStarted bool

	loadedOnce sync.Once
	loaded     chan struct{}
	loadErr    error
}

// New creates an engine over st and starts its worker. The store is not
// read until BulkLoad is called, and is not closed by Close.
func New(st store.Store, opts Options) (*Engine, error) {
	if st == nil {
		return nil, errors.New("engine: nil store")
	}
	ix, err := index.New()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return newWithIndex(st, ix, opts), nil
}

func newWithIndex(st store.Store, ix indexer, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = defaultInboxSize
	}

	c := cache.New()

	e := &Engine{
		store:            st,
		index:            ix,
		cache:            c,
		searcher:         search.NewSearcher(c, ix, opts.SearchLimit).WithMode(opts.SearchMode),
		log:              opts.Logger,
		metrics:          opts.Metrics,
		compactThreshold: opts.CompactThreshold,
		tombstones:       make(map[string]struct{}),
		unindexed:        make(map[string]bookmark.Record),
		inbox:            make(chan message, opts.InboxSize),
		quit:             make(chan struct{}),
		stopped:          make(chan struct{}),
		loaded:           make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	defer close(e.stopped)
	for {
		select {
		case <-e.quit:
			return
		case m := <-e.inbox:
			m.handle(e)
		}
	}
}

// Close stops the worker and releases the index. Requests still queued
// fail with ErrClosed.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.lifeMu.Lock()
		e.closed = true
		close(e.quit)
		e.lifeMu.Unlock()

		<-e.stopped
		e.loaders.Wait()
		e.finishLoad(ErrClosed)
		err = e.index.Close()
	})
	return err
}

// BulkLoad starts indexing every stored record in the background and
// returns immediately. ctx bounds the store iteration. Use Loaded to wait
// for completion.
func (e *Engine) BulkLoad(ctx context.Context) error {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.loadStarted {
		return ErrLoadStarted
	}
	e.loadStarted = true

	e.loaders.Add(1)
	go e.load(ctx)
	return nil
}

// Loaded is closed when the bulk load finishes or the engine is closed.
func (e *Engine) Loaded() <-chan struct{} {
	return e.loaded
}

// LoadErr reports why the bulk load stopped early. Only valid after Loaded
// is closed.
func (e *Engine) LoadErr() error {
	return e.loadErr
}

func (e *Engine) load(ctx context.Context) {
	defer e.loaders.Done()

	// Wait until the worker has started tracking live mutations. Every
	// request handled before that point has already reached the store, so
	// the snapshot opened below reflects it.
	started := make(chan struct{})
	if !e.post(loadStartMsg{started: started}) {
		return
	}
	select {
	case <-started:
	case <-e.quit:
		return
	}

	n := 0
	var loadErr error
	for rec, err := range e.store.All(ctx) {
		if err != nil {
			loadErr = err
			break
		}
		if !e.post(loadRecordMsg{rec: rec}) {
			return
		}
		n++
	}
	e.post(loadDoneMsg{count: n, err: loadErr})
}

func (e *Engine) finishLoad(err error) {
	e.loadedOnce.Do(func() {
		e.loadErr = err
		close(e.loaded)
	})
}

// AddBookmark saves the bookmark and indexes it.
func (e *Engine) AddBookmark(ctx context.Context, req AddRequest) error {
	reply := make(chan error, 1)
	if err := e.send(ctx, addMsg{ctx: ctx, req: req, reply: reply}); err != nil {
		return err
	}
	res, err := await(ctx, e, reply)
	if err != nil {
		return err
	}
	return res
}

// DeleteBookmark removes the bookmark from the store and the cache. Its
// postings stay in the index until compaction.
func (e *Engine) DeleteBookmark(ctx context.Context, req DeleteRequest) error {
	reply := make(chan error, 1)
	if err := e.send(ctx, deleteMsg{ctx: ctx, req: req, reply: reply}); err != nil {
		return err
	}
	res, err := await(ctx, e, reply)
	if err != nil {
		return err
	}
	return res
}

// SearchBookmarks answers req. Search failures yield an empty result rather
// than an error; the error is reserved for a closed engine or a done ctx.
func (e *Engine) SearchBookmarks(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	reply := make(chan SearchResponse, 1)
	if err := e.send(ctx, searchMsg{req: req, reply: reply}); err != nil {
		return SearchResponse{}, err
	}
	return await(ctx, e, reply)
}

// Compact removes postings of deleted bookmarks from the index and returns
// how many were purged. Bookmarks whose earlier index write failed are
// indexed again first.
func (e *Engine) Compact(ctx context.Context) (int, error) {
	reply := make(chan compactResult, 1)
	if err := e.send(ctx, compactMsg{reply: reply}); err != nil {
		return 0, err
	}
	res, err := await(ctx, e, reply)
	if err != nil {
		return 0, err
	}
	return res.n, res.err
}

// Stats returns a snapshot of the engine's in-memory state.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	if err := e.send(ctx, statsMsg{reply: reply}); err != nil {
		return Stats{}, err
	}
	return await(ctx, e, reply)
}

// send enqueues m for the worker.
func (e *Engine) send(ctx context.Context, m message) error {
	select {
	case <-e.quit:
		return ErrClosed
	default:
	}
	select {
	case e.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.quit:
		return ErrClosed
	}
}

// post enqueues an internal message, giving up only when the engine closes.
func (e *Engine) post(m message) bool {
	select {
	case e.inbox <- m:
		return true
	case <-e.quit:
		return false
	}
}

// await waits for the worker's reply. A request that was already enqueued
// still runs to completion if ctx ends first.
func await[T any](ctx context.Context, e *Engine, reply chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-e.stopped:
		select {
		case v := <-reply:
			return v, nil
		default:
			return zero, ErrClosed
		}
	}
}
