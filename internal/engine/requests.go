package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aryannaik/bookmark-search/internal/bookmark"
	"github.com/aryannaik/bookmark-search/internal/store"
)

// Scope is echoed in every search response.
const Scope = "bookmarks"

// AddRequest saves a bookmark, replacing any bookmark with the same URL.
type AddRequest struct {
	URL       string          `json:"url" validate:"required"`
	Title     string          `json:"title,omitempty"`
	Text      string          `json:"text,omitempty"`
	ExtraData json.RawMessage `json:"extraData,omitempty"`
}

func (r AddRequest) record() bookmark.Record {
	return bookmark.Record{
		URL:       r.URL,
		Title:     r.Title,
		Text:      r.Text,
		ExtraData: r.ExtraData,
	}
}

// DeleteRequest removes the bookmark saved under URL.
type DeleteRequest struct {
	URL string `json:"url" validate:"required"`
}

// SearchRequest queries bookmarks. CallbackID is returned unchanged in the
// response.
type SearchRequest struct {
	Text       string `json:"text,omitempty"`
	CallbackID string `json:"callbackId,omitempty"`
}

// SearchResponse answers exactly one SearchRequest.
type SearchResponse struct {
	Result   []bookmark.View `json:"result"`
	Scope    string          `json:"scope"`
	Callback string          `json:"callback"`
}

// Stats describes the engine's in-memory state.
type Stats struct {
	Cached     int    `json:"cached"`
	Indexed    uint64 `json:"indexed"`
	Tombstones int    `json:"tombstones"`
	Unindexed  int    `json:"unindexed"`
	Loading    bool   `json:"loading"`
	Loaded     bool   `json:"loaded"`

	// Store is set when the backend can describe its contents.
	Store *store.Report `json:"store,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest reports a missing field as ErrMalformedRequest.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			msgs = append(msgs, fe.Field()+" is required")
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrMalformedRequest, strings.Join(msgs, ", "))
}
