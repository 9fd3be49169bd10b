package store

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
)

// Records live under keyPrefix; upperBound is the first key past them.
var (
	keyPrefix  = []byte("b/")
	upperBound = []byte("b0")
)

// Pebble stores records as JSON values keyed by URL.
type Pebble struct {
	db *pebble.DB
	// unix nanos of the last write through this handle
	lastWrite atomic.Int64
}

// OpenPebble opens or creates a pebble database under dataDir.
func OpenPebble(dataDir string) (*Pebble, error) {
	return openPebble(filepath.Join(dataDir, "bookmarks.pebble"), &pebble.Options{})
}

// OpenMemPebble opens a pebble database backed by an in-memory filesystem.
func OpenMemPebble() (*Pebble, error) {
	return openPebble("", &pebble.Options{FS: vfs.NewMem()})
}

func openPebble(path string, opts *pebble.Options) (*Pebble, error) {
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", path, err)
	}
	return &Pebble{db: db}, nil
}

func recordKey(url string) []byte {
	key := make([]byte, 0, len(keyPrefix)+len(url))
	key = append(key, keyPrefix...)
	return append(key, url...)
}

func (p *Pebble) All(ctx context.Context) iter.Seq2[bookmark.Record, error] {
	return func(yield func(bookmark.Record, error) bool) {
		it, err := p.db.NewIter(&pebble.IterOptions{
			LowerBound: keyPrefix,
			UpperBound: upperBound,
		})
		if err != nil {
			yield(bookmark.Record{}, fmt.Errorf("open iterator: %w", err))
			return
		}
		defer it.Close()

		for valid := it.First(); valid; valid = it.Next() {
			if err := ctx.Err(); err != nil {
				yield(bookmark.Record{}, err)
				return
			}
			var rec bookmark.Record
			if err := json.Unmarshal(it.Value(), &rec); err != nil {
				yield(bookmark.Record{}, fmt.Errorf("decode record %q: %w", it.Key(), err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := it.Error(); err != nil {
			yield(bookmark.Record{}, fmt.Errorf("iterate records: %w", err))
		}
	}
}

func (p *Pebble) Put(ctx context.Context, rec bookmark.Record) error {
	if rec.URL == "" {
		return ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := p.db.Set(recordKey(rec.URL), data, pebble.Sync); err != nil {
		return fmt.Errorf("write record %s: %w", rec.URL, err)
	}
	p.lastWrite.Store(time.Now().UnixNano())
	return nil
}

func (p *Pebble) DeleteByURL(ctx context.Context, url string) error {
	if url == "" {
		return ErrEmptyURL
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.db.Delete(recordKey(url), pebble.Sync); err != nil {
		return fmt.Errorf("delete record %s: %w", url, err)
	}
	p.lastWrite.Store(time.Now().UnixNano())
	return nil
}

// Report counts the stored records with a key-only scan.
func (p *Pebble) Report() Report {
	var rep Report
	if ns := p.lastWrite.Load(); ns != 0 {
		rep.UpdatedAt = time.Unix(0, ns)
	}
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: keyPrefix,
		UpperBound: upperBound,
	})
	if err != nil {
		return rep
	}
	defer it.Close()
	for valid := it.First(); valid; valid = it.Next() {
		rep.Records++
	}
	return rep
}

func (p *Pebble) Close() error {
	return p.db.Close()
}
