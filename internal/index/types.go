package index

import (
	"fmt"
	"strings"
)

// Mode controls how query terms are combined.
type Mode int

const (
	// ModeAnd requires every term to match at least one weighted field.
	ModeAnd Mode = iota
	// ModeOr requires any term to match.
	ModeOr
)

// ParseMode accepts "and" or "or" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "and":
		return ModeAnd, nil
	case "or":
		return ModeOr, nil
	default:
		return 0, fmt.Errorf("unknown search mode %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeAnd:
		return "AND"
	case ModeOr:
		return "OR"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Weight boosts matches in a single field.
type Weight struct {
	Field string
	Boost float64
}

// DefaultWeights favours titles, then URLs, then page bodies.
var DefaultWeights = []Weight{
	{Field: FieldTitle, Boost: 5},
	{Field: FieldURL, Boost: 3},
	{Field: FieldBody, Boost: 1},
}

// Options configures a search. A Limit of zero or less returns every match.
type Options struct {
	Weights []Weight
	Mode    Mode
	Limit   int
}

func (o *Options) validate() error {
	if len(o.Weights) == 0 {
		o.Weights = DefaultWeights
	}
	for _, w := range o.Weights {
		if !isField(w.Field) {
			return fmt.Errorf("%w: %q", ErrUnknownField, w.Field)
		}
	}
	return nil
}

func isField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// Hit is a matched document reference and its relevance score.
type Hit struct {
	Ref   string
	Score float64
}
