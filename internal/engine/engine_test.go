package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
	"github.com/aryannaik/bookmark-search/internal/index"
	"github.com/aryannaik/bookmark-search/internal/metrics"
	"github.com/aryannaik/bookmark-search/internal/store"
)

// fakeStore records writes in memory. All yields snapshot (not the live
// records) and, when gate is set, blocks after gateAfter records.
type fakeStore struct {
	mu        sync.Mutex
	recs      map[string]bookmark.Record
	snapshot  []bookmark.Record
	gate      chan struct{}
	gateAfter int
	putErr    error
	delErr    error
	allErr    error
}

func newFakeStore(snapshot ...bookmark.Record) *fakeStore {
	return &fakeStore{recs: make(map[string]bookmark.Record), snapshot: snapshot}
}

func (f *fakeStore) All(ctx context.Context) iter.Seq2[bookmark.Record, error] {
	return func(yield func(bookmark.Record, error) bool) {
		for i, rec := range f.snapshot {
			if f.gate != nil && i == f.gateAfter {
				select {
				case <-f.gate:
				case <-ctx.Done():
					yield(bookmark.Record{}, ctx.Err())
					return
				}
			}
			if !yield(rec, nil) {
				return
			}
		}
		if f.allErr != nil {
			yield(bookmark.Record{}, f.allErr)
		}
	}
}

func (f *fakeStore) Put(_ context.Context, rec bookmark.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.recs[rec.URL] = rec
	return nil
}

func (f *fakeStore) DeleteByURL(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.recs, url)
	return nil
}

func (f *fakeStore) Close() error { return nil }

func newEngine(t *testing.T, st store.Store, opts Options) *Engine {
	t.Helper()
	e, err := New(st, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func memPebble(t *testing.T) *store.Pebble {
	t.Helper()
	st, err := store.OpenMemPebble()
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func waitLoaded(t *testing.T, e *Engine) {
	t.Helper()
	select {
	case <-e.Loaded():
	case <-time.After(5 * time.Second):
		t.Fatal("bulk load did not finish")
	}
}

func searchViews(t *testing.T, e *Engine, text string) []bookmark.View {
	t.Helper()
	resp, err := e.SearchBookmarks(context.Background(), SearchRequest{Text: text})
	require.NoError(t, err)
	return resp.Result
}

func cachedCount(e *Engine) int {
	resp, err := e.SearchBookmarks(context.Background(), SearchRequest{})
	if err != nil {
		return -1
	}
	return len(resp.Result)
}

func resultURLs(views []bookmark.View) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.URL)
	}
	return out
}

func TestAddThenRankedSearch(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta", Text: "content"}))

	resp, err := e.SearchBookmarks(ctx, SearchRequest{Text: "alpha beta", CallbackID: "cb-1"})
	require.NoError(t, err)
	assert.Equal(t, "bookmarks", resp.Scope)
	assert.Equal(t, "cb-1", resp.Callback)
	require.Len(t, resp.Result, 1)
	assert.Equal(t, "https://a.com", resp.Result[0].URL)
	assert.Equal(t, "Alpha Beta", resp.Result[0].Title)
	assert.Greater(t, resp.Result[0].Score, 0.0)
}

func TestDeleteRemovesFromListingAndSubstring(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))
	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://b.com", Title: "Bravo"}))
	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}))

	assert.Equal(t, []string{"https://b.com"}, resultURLs(searchViews(t, e, "")))
	assert.Empty(t, searchViews(t, e, "alpha"))
}

func TestDeletedBookmarkNotInRankedResults(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))
	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}))

	assert.Empty(t, searchViews(t, e, "alpha beta"))

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Cached)
	assert.Equal(t, uint64(1), stats.Indexed, "postings stay until compaction")
	assert.Equal(t, 1, stats.Tombstones)
}

func TestRankedCapAndOrder(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	// longer titles get lower field norms, so every score differs
	for i := 0; i < 8; i++ {
		require.NoError(t, e.AddBookmark(ctx, AddRequest{
			URL:   fmt.Sprintf("https://site%d.example", i),
			Title: "alpha beta" + strings.Repeat(" filler", i),
		}))
	}

	results := searchViews(t, e, "alpha beta")
	require.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	assert.Equal(t, "https://site0.example", results[0].URL)
}

func TestSingleWordMatchesTitleAndURLOnly(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha", Text: "zebra"}))
	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://zebra.org", Title: "Stripes"}))

	single := searchViews(t, e, "ZEBRA")
	assert.Equal(t, []string{"https://zebra.org"}, resultURLs(single))
	assert.Equal(t, 1.0, single[0].Score)

	multi := searchViews(t, e, "alpha zebra")
	assert.Equal(t, []string{"https://a.com"}, resultURLs(multi))
}

func TestEmptyQueryReturnsAll(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	assert.NotNil(t, searchViews(t, e, ""))

	for _, u := range []string{"https://a.com", "https://b.com", "https://c.com"} {
		require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: u, Title: "t"}))
	}

	resp, err := e.SearchBookmarks(ctx, SearchRequest{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"https://a.com", "https://b.com", "https://c.com"}, resultURLs(resp.Result))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"score"`)
}

func TestUpsertReplacesBookmark(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Old Words"}))
	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Fresh Heading"}))

	all := searchViews(t, e, "")
	require.Len(t, all, 1)
	assert.Equal(t, "Fresh Heading", all[0].Title)
	assert.Empty(t, searchViews(t, e, "old words"))
	assert.Len(t, searchViews(t, e, "fresh heading"), 1)
}

func TestReaddAfterDelete(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))
	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}))
	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))

	assert.Len(t, searchViews(t, e, "alpha beta"), 1)
	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Tombstones)
}

func TestDeleteMissingURL(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	require.NoError(t, e.DeleteBookmark(context.Background(), DeleteRequest{URL: "https://never.example"}))

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Tombstones)
}

func TestMalformedRequests(t *testing.T) {
	st := newFakeStore()
	e := newEngine(t, st, Options{})
	ctx := context.Background()

	err := e.AddBookmark(ctx, AddRequest{Title: "no url"})
	require.ErrorIs(t, err, ErrMalformedRequest)
	assert.Contains(t, err.Error(), "url is required")

	err = e.DeleteBookmark(ctx, DeleteRequest{})
	require.ErrorIs(t, err, ErrMalformedRequest)

	assert.Empty(t, st.recs)
	assert.Empty(t, searchViews(t, e, ""))
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	st := newFakeStore()
	reg := metrics.NewRegistry()
	e := newEngine(t, st, Options{Metrics: reg})
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))

	st.putErr = errors.New("disk full")
	err := e.AddBookmark(ctx, AddRequest{URL: "https://b.com", Title: "Alpha Beta Gamma"})
	require.ErrorIs(t, err, ErrStoreFailure)
	assert.Contains(t, err.Error(), "disk full")

	st.delErr = errors.New("read only")
	err = e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"})
	require.ErrorIs(t, err, ErrStoreFailure)

	assert.Equal(t, []string{"https://a.com"}, resultURLs(searchViews(t, e, "")))
	assert.Equal(t, []string{"https://a.com"}, resultURLs(searchViews(t, e, "alpha beta")))

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues(ActionAdd, "store_failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues(ActionDelete, "store_failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RequestsTotal.WithLabelValues(ActionAdd, "ok")))
}

func TestBulkLoad(t *testing.T) {
	st := memPebble(t)
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, bookmark.Record{URL: "https://a.com", Title: "Alpha Beta", Text: "first body"}))
	require.NoError(t, st.Put(ctx, bookmark.Record{URL: "https://b.com", Title: "Bravo", Text: "alpha beta in body"}))

	reg := metrics.NewRegistry()
	e := newEngine(t, st, Options{Metrics: reg})
	require.NoError(t, e.BulkLoad(ctx))
	waitLoaded(t, e)
	require.NoError(t, e.LoadErr())

	assert.Len(t, searchViews(t, e, ""), 2)
	ranked := searchViews(t, e, "alpha beta")
	assert.Equal(t, []string{"https://a.com", "https://b.com"}, resultURLs(ranked))

	// loaded bookmarks are keyed like live ones, so a delete reaches them
	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}))
	assert.Equal(t, []string{"https://b.com"}, resultURLs(searchViews(t, e, "alpha beta")))

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Loaded)
	assert.False(t, stats.Loading)
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.LoadedRecords))
}

func TestBulkLoadOnlyOnce(t *testing.T) {
	e := newEngine(t, newFakeStore(), Options{})
	require.NoError(t, e.BulkLoad(context.Background()))
	assert.ErrorIs(t, e.BulkLoad(context.Background()), ErrLoadStarted)
	waitLoaded(t, e)
}

func TestQueriesDuringBulkLoadSeePartialData(t *testing.T) {
	st := newFakeStore(
		bookmark.Record{URL: "https://a.com", Title: "Alpha"},
		bookmark.Record{URL: "https://b.com", Title: "Bravo"},
	)
	st.gate = make(chan struct{})
	st.gateAfter = 1

	e := newEngine(t, st, Options{})
	ctx := context.Background()
	require.NoError(t, e.BulkLoad(ctx))

	require.Eventually(t, func() bool {
		return cachedCount(e) == 1
	}, 5*time.Second, 5*time.Millisecond)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Loading)
	assert.False(t, stats.Loaded)

	close(st.gate)
	waitLoaded(t, e)
	assert.Len(t, searchViews(t, e, ""), 2)
}

func TestBulkLoadSkipsLiveMutations(t *testing.T) {
	st := newFakeStore(
		bookmark.Record{URL: "https://first.com", Title: "First"},
		bookmark.Record{URL: "https://a.com", Title: "Stale Title"},
		bookmark.Record{URL: "https://b.com", Title: "Bravo"},
	)
	st.gate = make(chan struct{})
	st.gateAfter = 1

	e := newEngine(t, st, Options{})
	ctx := context.Background()
	require.NoError(t, e.BulkLoad(ctx))

	require.Eventually(t, func() bool {
		return cachedCount(e) == 1
	}, 5*time.Second, 5*time.Millisecond)

	// both land before the loader yields these records
	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Fresh Title"}))
	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://b.com"}))

	close(st.gate)
	waitLoaded(t, e)

	all := searchViews(t, e, "")
	assert.ElementsMatch(t, []string{"https://first.com", "https://a.com"}, resultURLs(all))
	for _, v := range all {
		if v.URL == "https://a.com" {
			assert.Equal(t, "Fresh Title", v.Title)
		}
	}
}

func TestBulkLoadError(t *testing.T) {
	st := newFakeStore(bookmark.Record{URL: "https://a.com", Title: "Alpha"})
	st.allErr = errors.New("corrupt segment")

	e := newEngine(t, st, Options{})
	require.NoError(t, e.BulkLoad(context.Background()))
	waitLoaded(t, e)

	require.Error(t, e.LoadErr())
	assert.Contains(t, e.LoadErr().Error(), "corrupt segment")
	// records read before the failure are still served
	assert.Len(t, searchViews(t, e, ""), 1)
}

func TestCompactThreshold(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{CompactThreshold: 2})
	ctx := context.Background()

	for _, u := range []string{"https://a.com", "https://b.com", "https://c.com"} {
		require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: u, Title: "alpha beta"}))
	}
	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}))

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Tombstones)
	assert.Equal(t, uint64(3), stats.Indexed)

	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://b.com"}))
	stats, err = e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Tombstones)
	assert.Equal(t, uint64(1), stats.Indexed)

	assert.Equal(t, []string{"https://c.com"}, resultURLs(searchViews(t, e, "alpha beta")))
}

func TestCompactOnDemand(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{})
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "alpha beta"}))
	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}))

	n, err := e.Compact(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = e.Compact(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.Indexed)
}

func TestSearchLimitOption(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{SearchLimit: 2})
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: fmt.Sprintf("https://%d.com", i), Title: "alpha beta"}))
	}
	assert.Len(t, searchViews(t, e, "alpha beta"), 2)
}

func TestConcurrentSearchesKeepCorrelation(t *testing.T) {
	e := newEngine(t, memPebble(t), Options{InboxSize: 1})
	ctx := context.Background()
	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("cb-%d", i)
			resp, err := e.SearchBookmarks(ctx, SearchRequest{Text: "alpha beta", CallbackID: id})
			if err != nil {
				errs <- err
				return
			}
			if resp.Callback != id || len(resp.Result) != 1 {
				errs <- fmt.Errorf("request %s got callback %s with %d results", id, resp.Callback, len(resp.Result))
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestClosedEngine(t *testing.T) {
	e, err := New(newFakeStore(), Options{})
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	ctx := context.Background()
	assert.ErrorIs(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com"}), ErrClosed)
	assert.ErrorIs(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}), ErrClosed)
	_, err = e.SearchBookmarks(ctx, SearchRequest{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, e.BulkLoad(ctx), ErrClosed)

	select {
	case <-e.Loaded():
	default:
		t.Fatal("Loaded should be closed after Close")
	}
	assert.ErrorIs(t, e.LoadErr(), ErrClosed)
}

func TestCloseDuringBulkLoad(t *testing.T) {
	st := newFakeStore(
		bookmark.Record{URL: "https://a.com"},
		bookmark.Record{URL: "https://b.com"},
	)
	st.gate = make(chan struct{})
	st.gateAfter = 1

	e, err := New(st, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.BulkLoad(ctx))
	cancel()
	require.NoError(t, e.Close())
	waitLoaded(t, e)
}

func TestNewRejectsNilStore(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

// slowDelete holds DeleteByURL until release is closed.
type slowDelete struct {
	store.Store
	entered chan struct{}
	release chan struct{}
}

func (s *slowDelete) DeleteByURL(ctx context.Context, url string) error {
	close(s.entered)
	<-s.release
	return s.Store.DeleteByURL(ctx, url)
}

func TestDeleteInFlightAtLoadStartStaysDeleted(t *testing.T) {
	ctx := context.Background()
	pb := memPebble(t)
	require.NoError(t, pb.Put(ctx, bookmark.Record{URL: "https://a.com", Title: "Alpha Beta"}))

	st := &slowDelete{Store: pb, entered: make(chan struct{}), release: make(chan struct{})}
	e := newEngine(t, st, Options{})

	deleted := make(chan error, 1)
	go func() { deleted <- e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}) }()
	<-st.entered

	require.NoError(t, e.BulkLoad(ctx))
	// give the loader a chance to open the store before the delete lands
	time.Sleep(50 * time.Millisecond)
	close(st.release)
	require.NoError(t, <-deleted)
	waitLoaded(t, e)

	assert.Empty(t, collectStore(t, pb))
	assert.Empty(t, searchViews(t, e, ""))
	assert.Empty(t, searchViews(t, e, "alpha beta"))
}

func collectStore(t *testing.T, st store.Store) []bookmark.Record {
	t.Helper()
	var out []bookmark.Record
	for rec, err := range st.All(context.Background()) {
		require.NoError(t, err)
		out = append(out, rec)
	}
	return out
}

// flakyIndex fails every Add while fail is set.
type flakyIndex struct {
	*index.Index
	fail atomic.Bool
}

func (f *flakyIndex) Add(id string, doc index.Document) error {
	if f.fail.Load() {
		return errors.New("index unavailable")
	}
	return f.Index.Add(id, doc)
}

func TestFailedIndexWriteRetriedOnCompact(t *testing.T) {
	ctx := context.Background()
	ix, err := index.New()
	require.NoError(t, err)
	fi := &flakyIndex{Index: ix}
	fi.fail.Store(true)

	m := metrics.NewRegistry()
	e := newWithIndex(memPebble(t), fi, Options{Metrics: m})
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexFailures))

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Cached)
	assert.Equal(t, uint64(0), stats.Indexed)
	assert.Equal(t, 1, stats.Unindexed)
	assert.Len(t, searchViews(t, e, "alpha"), 1)
	assert.Empty(t, searchViews(t, e, "alpha beta"))

	// still failing: stays pending
	_, err = e.Compact(ctx)
	require.NoError(t, err)
	stats, err = e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unindexed)

	fi.fail.Store(false)
	_, err = e.Compact(ctx)
	require.NoError(t, err)

	stats, err = e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Indexed)
	assert.Equal(t, 0, stats.Unindexed)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Unindexed))
	assert.Equal(t, []string{"https://a.com"}, resultURLs(searchViews(t, e, "alpha beta")))
}

func TestDeleteDropsPendingReindex(t *testing.T) {
	ctx := context.Background()
	ix, err := index.New()
	require.NoError(t, err)
	fi := &flakyIndex{Index: ix}
	fi.fail.Store(true)

	e := newWithIndex(memPebble(t), fi, Options{})
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))
	require.NoError(t, e.DeleteBookmark(ctx, DeleteRequest{URL: "https://a.com"}))
	fi.fail.Store(false)
	_, err = e.Compact(ctx)
	require.NoError(t, err)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Unindexed)
	assert.Equal(t, uint64(0), stats.Indexed)
	assert.Empty(t, searchViews(t, e, "alpha beta"))
}

func TestSearchModeOr(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, memPebble(t), Options{SearchMode: index.ModeOr})

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "Alpha Beta"}))

	assert.Equal(t, []string{"https://a.com"}, resultURLs(searchViews(t, e, "alpha zebra")))
}

func TestStatsIncludeStoreReport(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, memPebble(t), Options{})

	require.NoError(t, e.AddBookmark(ctx, AddRequest{URL: "https://a.com", Title: "A"}))

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	require.NotNil(t, stats.Store)
	assert.Equal(t, 1, stats.Store.Records)
	assert.False(t, stats.Store.UpdatedAt.IsZero())

	stats, err = newEngine(t, newFakeStore(), Options{}).Stats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats.Store)
}
