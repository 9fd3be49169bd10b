// Package index wraps an in-memory bleve index holding bookmark postings.
// Documents are not stored; callers resolve hit refs themselves.
package index

import (
	"errors"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Indexed field names.
const (
	FieldTitle = "title"
	FieldBody  = "body"
	FieldURL   = "url"
)

// Fields lists every field registered in the mapping.
var Fields = []string{FieldTitle, FieldBody, FieldURL}

// ErrUnknownField is returned when a search weights a field the mapping
// does not define.
var ErrUnknownField = errors.New("unknown index field")

// Document is the indexed form of a bookmark.
type Document struct {
	Title string
	Body  string
	URL   string
}

// Index is a full text index over bookmark documents.
type Index struct {
	idx     bleve.Index
	mapping *mapping.IndexMappingImpl
}

// New creates an empty in-memory index.
func New() (*Index, error) {
	m, err := newMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(m)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{idx: idx, mapping: m}, nil
}

func newMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()
	err := m.AddCustomAnalyzer(AnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name, HashFilterName},
	})
	if err != nil {
		return nil, fmt.Errorf("register analyzer: %w", err)
	}
	m.DefaultAnalyzer = AnalyzerName
	m.StoreDynamic = false
	m.IndexDynamic = false
	m.DocValuesDynamic = false

	doc := bleve.NewDocumentStaticMapping()
	for _, name := range Fields {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = AnalyzerName
		f.Store = false
		f.IncludeInAll = false
		f.IncludeTermVectors = false
		f.DocValues = false
		doc.AddFieldMappingsAt(name, f)
	}
	m.DefaultMapping = doc
	return m, nil
}

// Add indexes doc under id, replacing any document already stored there.
func (ix *Index) Add(id string, doc Document) error {
	err := ix.idx.Index(id, map[string]interface{}{
		FieldTitle: doc.Title,
		FieldBody:  doc.Body,
		FieldURL:   doc.URL,
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", id, err)
	}
	return nil
}

// Delete removes the given ids in one batch. Unknown ids are ignored.
func (ix *Index) Delete(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	b := ix.idx.NewBatch()
	for _, id := range ids {
		b.Delete(id)
	}
	if err := ix.idx.Batch(b); err != nil {
		return fmt.Errorf("delete %d documents: %w", len(ids), err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (ix *Index) Count() (uint64, error) {
	return ix.idx.DocCount()
}

// Close releases the index.
func (ix *Index) Close() error {
	return ix.idx.Close()
}

// Terms runs text through the index analyzer and returns the distinct terms
// in order of first appearance.
func (ix *Index) Terms(text string) []string {
	a := ix.mapping.AnalyzerNamed(AnalyzerName)
	if a == nil {
		return nil
	}
	seen := make(map[string]bool)
	var terms []string
	for _, tok := range a.Analyze([]byte(text)) {
		term := string(tok.Term)
		if seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms
}

// Search returns hits for text ordered by descending score.
func (ix *Index) Search(text string, opts Options) ([]Hit, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	terms := ix.Terms(text)
	if len(terms) == 0 {
		return nil, nil
	}

	size := opts.Limit
	if size <= 0 {
		n, err := ix.idx.DocCount()
		if err != nil {
			return nil, fmt.Errorf("count documents: %w", err)
		}
		if n == 0 {
			return nil, nil
		}
		size = int(n)
	}

	req := bleve.NewSearchRequestOptions(buildQuery(terms, opts), size, 0, false)
	res, err := ix.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{Ref: h.ID, Score: h.Score})
	}
	return hits, nil
}

// buildQuery turns each term into a disjunction of boosted per-field term
// queries, then joins the terms according to opts.Mode.
func buildQuery(terms []string, opts Options) query.Query {
	clauses := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		perField := make([]query.Query, 0, len(opts.Weights))
		for _, w := range opts.Weights {
			tq := bleve.NewTermQuery(term)
			tq.SetField(w.Field)
			tq.SetBoost(w.Boost)
			perField = append(perField, tq)
		}
		clauses = append(clauses, bleve.NewDisjunctionQuery(perField...))
	}
	if opts.Mode == ModeOr {
		return bleve.NewDisjunctionQuery(clauses...)
	}
	return bleve.NewConjunctionQuery(clauses...)
}
