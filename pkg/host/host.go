// Package host defines the collaborators a research panel is embedded in: the
// page being read and the user-notification sink.
package host

import (
	"context"
	"errors"
)

// ErrNoArticle is returned by ExtractArticle when the page has no readable
// article content.
var ErrNoArticle = errors.New("no article content")

// PageInfo is the metadata of the active page.
type PageInfo struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	FavIconURL string `json:"favIconUrl,omitempty"`
}

// Article is the readable content extracted from the active page.
type Article struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Widget is an overlay inserted into the page.
type Widget struct {
	HTML     string `json:"html"`
	Position string `json:"position"`
}

// Notification is a user-visible message.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SelectionHandler receives the current text selection each time it changes.
type SelectionHandler func(text string)

// Page is the page/context collaborator.
type Page interface {
	// PageInfo returns the active page's metadata.
	PageInfo(ctx context.Context) (PageInfo, error)

	// PageText returns the raw text of the active page.
	PageText(ctx context.Context) (string, error)

	// Selection returns the current text selection, or "" when nothing is
	// selected.
	Selection(ctx context.Context) (string, error)

	// ExtractArticle returns the page's readable article, or ErrNoArticle.
	ExtractArticle(ctx context.Context) (Article, error)

	// InjectCSS adds a stylesheet to the page and returns its id.
	InjectCSS(ctx context.Context, css string) (string, error)

	// RemoveCSS removes a stylesheet previously added by InjectCSS.
	RemoveCSS(ctx context.Context, styleID string) error

	// InsertWidget adds an overlay to the page and returns its id.
	InsertWidget(ctx context.Context, w Widget) (string, error)

	// OnSelectionChange registers handler for selection changes. The returned
	// func unsubscribes and must be called exactly once.
	OnSelectionChange(handler SelectionHandler) (unsubscribe func(), err error)
}

// Notifier is the user-notification sink.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
