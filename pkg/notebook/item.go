// Package notebook owns the research notebook: an ordered, newest-first list
// of evidence items kept in memory and mirrored as a whole to a durable
// key-value slot.
//
// A Store is created by its owner and passed to consumers explicitly. Every
// mutation goes through Append or Remove, which update memory first and then
// overwrite the durable slot with the complete resulting list. There is no
// merge or diff protocol.
package notebook

import (
	"fmt"
	"time"
)

// ItemType is the closed set of evidence kinds.
type ItemType string

const (
	// TypeQuote is text the user selected on a page.
	TypeQuote ItemType = "quote"

	// TypeInsight is generated summary text the user chose to keep.
	TypeInsight ItemType = "insight"
)

// Valid reports whether t is one of the defined item types.
func (t ItemType) Valid() bool {
	return t == TypeQuote || t == TypeInsight
}

// ParseItemType converts s into an ItemType.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q (valid: quote, insight)", ErrInvalidType, s)
	}
	return t, nil
}

// EvidenceItem is a single saved piece of research evidence. Items are
// immutable once created; the JSON field names match the durable slot format
// and exports reuse them.
type EvidenceItem struct {
	// ID is unique within a notebook and never reused.
	ID string `json:"id" yaml:"id"`

	// Timestamp is the creation time in epoch milliseconds.
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	SourceURL   string `json:"sourceUrl" yaml:"sourceUrl"`
	SourceTitle string `json:"sourceTitle" yaml:"sourceTitle"`

	// Content is the captured text, either a verbatim selection or an insight.
	Content string   `json:"content" yaml:"content"`
	Type    ItemType `json:"type" yaml:"type"`
}

// CreatedAt returns Timestamp as a time.Time.
func (i EvidenceItem) CreatedAt() time.Time {
	return time.UnixMilli(i.Timestamp)
}
