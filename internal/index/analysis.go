package index

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/aryannaik/bookmark-search/internal/hasher"
)

const (
	// HashFilterName is the registry name of the token filter that replaces
	// each term with its truncated hash.
	HashFilterName = "hashed_token"

	// AnalyzerName is the analyzer used for every bookmark field and for
	// query text.
	AnalyzerName = "bookmark"
)

func init() {
	registry.RegisterTokenFilter(HashFilterName, func(map[string]interface{}, *registry.Cache) (analysis.TokenFilter, error) {
		return hashFilter{}, nil
	})
}

// hashFilter rewrites terms in place; positions and offsets are untouched.
type hashFilter struct{}

func (hashFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	for _, tok := range input {
		tok.Term = []byte(hasher.Token(string(tok.Term)))
	}
	return input
}
