package engine

import (
	"context"
	"fmt"
)

// Message actions.
const (
	ActionAdd    = "addBookmark"
	ActionDelete = "deleteBookmark"
	ActionSearch = "searchBookmarks"
)

// Message is the action envelope posted by the bookmarks UI.
type Message struct {
	Action     string      `json:"action"`
	Data       *AddRequest `json:"data,omitempty"`
	Text       string      `json:"text,omitempty"`
	CallbackID string      `json:"callbackId,omitempty"`
}

// Dispatch routes msg to the matching operation. Only searches produce a
// response; mutations return a nil response on success.
func (e *Engine) Dispatch(ctx context.Context, msg Message) (*SearchResponse, error) {
	switch msg.Action {
	case ActionAdd:
		if msg.Data == nil {
			return nil, fmt.Errorf("%w: data is required", ErrMalformedRequest)
		}
		return nil, e.AddBookmark(ctx, *msg.Data)
	case ActionDelete:
		if msg.Data == nil {
			return nil, fmt.Errorf("%w: data is required", ErrMalformedRequest)
		}
		return nil, e.DeleteBookmark(ctx, DeleteRequest{URL: msg.Data.URL})
	case ActionSearch:
		resp, err := e.SearchBookmarks(ctx, SearchRequest{Text: msg.Text, CallbackID: msg.CallbackID})
		if err != nil {
			return nil, err
		}
		return &resp, nil
	case "":
		return nil, fmt.Errorf("%w: action is required", ErrMalformedRequest)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrMalformedRequest, msg.Action)
	}
}
