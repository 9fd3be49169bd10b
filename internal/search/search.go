// Package search answers bookmark queries from the lookup cache and the
// full-text index.
//
// Ranked results are capped at the searcher's limit. The index may still
// hold postings for deleted bookmarks, so the searcher asks it for one extra
// hit per such bookmark and drops hits missing from the cache before
// applying the cap. A full page is therefore made of live bookmarks only.
package search

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
	"github.com/aryannaik/bookmark-search/internal/cache"
	"github.com/aryannaik/bookmark-search/internal/index"
)

// DefaultLimit caps ranked results.
const DefaultLimit = 5

// Strategy names the query path chosen for a search.
type Strategy string

const (
	StrategyAll       Strategy = "all"
	StrategySubstring Strategy = "substring"
	StrategyRanked    Strategy = "ranked"
)

// Classify picks the strategy for text: empty lists everything, a single
// word scans titles and URLs, anything with whitespace goes to the index.
func Classify(text string) Strategy {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return StrategyAll
	case strings.IndexFunc(text, unicode.IsSpace) == -1:
		return StrategySubstring
	default:
		return StrategyRanked
	}
}

// Index is the ranked search capability used for multi-word queries.
type Index interface {
	Search(text string, opts index.Options) ([]index.Hit, error)
}

// Result is the outcome of one search.
type Result struct {
	Views    []bookmark.View
	Strategy Strategy
	// Dropped counts ranked hits whose bookmark is no longer cached.
	Dropped int
}

type Searcher struct {
	cache   *cache.Cache
	index   Index
	limit   int
	mode    index.Mode
	weights []index.Weight
}

func NewSearcher(c *cache.Cache, ix Index, limit int) *Searcher {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Searcher{
		cache:   c,
		index:   ix,
		limit:   limit,
		weights: index.DefaultWeights,
	}
}

// WithMode sets how ranked query terms are combined. The default is
// index.ModeAnd.
func (s *Searcher) WithMode(m index.Mode) *Searcher {
	s.mode = m
	return s
}

// Search runs text against the cache and index. stale is the number of
// deleted bookmarks that may still have postings; the index is asked for
// that many extra hits so reconciliation can still fill the limit.
//
// The returned Views slice is never nil.
func (s *Searcher) Search(text string, stale int) (Result, error) {
	strategy := Classify(text)
	res := Result{Strategy: strategy, Views: []bookmark.View{}}

	switch strategy {
	case StrategyAll:
		res.Views = s.cache.Values()
	case StrategySubstring:
		res.Views = s.substring(strings.TrimSpace(text))
	case StrategyRanked:
		views, dropped, err := s.ranked(text, stale)
		if err != nil {
			return res, err
		}
		res.Views, res.Dropped = views, dropped
	}
	return res, nil
}

func (s *Searcher) substring(text string) []bookmark.View {
	needle := strings.ToLower(text)
	out := []bookmark.View{}
	s.cache.Range(func(_ string, v bookmark.View) bool {
		if strings.Contains(strings.ToLower(v.Title+v.URL), needle) {
			v.Score = 1
			out = append(out, v)
		}
		return true
	})
	return out
}

func (s *Searcher) ranked(text string, stale int) ([]bookmark.View, int, error) {
	if stale < 0 {
		stale = 0
	}
	hits, err := s.index.Search(text, index.Options{
		Weights: s.weights,
		Mode:    s.mode,
		Limit:   s.limit + stale,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("ranked search: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	out := make([]bookmark.View, 0, s.limit)
	dropped := 0
	for _, h := range hits {
		if len(out) == s.limit {
			break
		}
		v, ok := s.cache.Get(h.Ref)
		if !ok {
			dropped++
			continue
		}
		v.Score = h.Score
		out = append(out, v)
	}
	return out, dropped, nil
}
