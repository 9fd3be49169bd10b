package bookmark

import (
	"encoding/json"

	"github.com/aryannaik/bookmark-search/internal/hasher"
)

// Record is a persisted bookmark, including the page body.
type Record struct {
	URL       string          `json:"url"`
	Title     string          `json:"title,omitempty"`
	Text      string          `json:"text,omitempty"`
	ExtraData json.RawMessage `json:"extraData,omitempty"`
}

// View is the in-memory form of a bookmark. It never carries the page body.
// Score is only set on search results.
type View struct {
	URL       string          `json:"url"`
	Title     string          `json:"title"`
	ExtraData json.RawMessage `json:"extraData,omitempty"`
	Score     float64         `json:"score,omitempty"`
}

// View strips the body text from the record.
func (r Record) View() View {
	return View{
		URL:       r.URL,
		Title:     r.Title,
		ExtraData: r.ExtraData,
	}
}

// ID returns the identifier shared by a bookmark's record, index document
// and cache entry.
func ID(url string) string {
	return hasher.Hex(url)
}
