// Package store persists bookmark records keyed by URL.
package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
)

// ErrEmptyURL is returned when a record or delete request has no URL.
var ErrEmptyURL = errors.New("store: empty url")

// Store is durable bookmark storage.
type Store interface {
	// All yields every record. Iteration stops at the first error.
	All(ctx context.Context) iter.Seq2[bookmark.Record, error]
	// Put inserts rec, replacing any record with the same URL.
	Put(ctx context.Context, rec bookmark.Record) error
	// DeleteByURL removes the record stored under url. Deleting a missing
	// URL is not an error.
	DeleteByURL(ctx context.Context, url string) error
	Close() error
}

// Report summarizes a store's contents. UpdatedAt is the zero time when the
// last write is unknown.
type Report struct {
	Records   int       `json:"records"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reporter is implemented by stores that can describe their contents.
type Reporter interface {
	Report() Report
}

// Backend names accepted by Open.
const (
	BackendPebble = "pebble"
	BackendJSON   = "json"
)

// Open opens the named backend rooted at dataDir.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case BackendPebble, "":
		return OpenPebble(dataDir)
	case BackendJSON:
		return OpenJSONFile(dataDir)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}
