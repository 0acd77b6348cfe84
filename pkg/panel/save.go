package panel

import (
	"context"
	"errors"
	"strings"

	"github.com/papercomputeco/verso/pkg/eventstream"
	"github.com/papercomputeco/verso/pkg/notebook"
)

// Save appends content to the notebook, attributed to the active page.
//
// When the durable write fails the item is still returned, alongside the
// *notebook.PersistError; the user is not told it was saved.
func (p *Panel) Save(ctx context.Context, content string, itemType notebook.ItemType) (notebook.EvidenceItem, error) {
	info, ok := p.PageInfo()
	if !ok {
		return notebook.EvidenceItem{}, ErrNoPage
	}

	item, err := p.store.Append(ctx, content, itemType, info.URL, info.Title)
	var perr *notebook.PersistError
	if err != nil && !errors.As(err, &perr) {
		return item, err
	}

	p.publish(ctx, eventstream.EventTypeItemAdded, item, perr == nil)

	if perr != nil {
		return item, err
	}

	p.notify(ctx)
	return item, nil
}

// SaveSelection saves the latest selection as a quote. The host is asked
// directly when no selection change has been observed yet.
func (p *Panel) SaveSelection(ctx context.Context) (notebook.EvidenceItem, error) {
	text := p.Selection()
	if text == "" {
		sel, err := p.page.Selection(ctx)
		if err != nil {
			return notebook.EvidenceItem{}, err
		}
		text = sel
	}

	if strings.TrimSpace(text) == "" {
		return notebook.EvidenceItem{}, ErrNoSelection
	}

	return p.Save(ctx, text, notebook.TypeQuote)
}

// SaveInsight saves the brief summary as an insight.
func (p *Panel) SaveInsight(ctx context.Context) (notebook.EvidenceItem, error) {
	b := p.Brief()
	if b == nil {
		return notebook.EvidenceItem{}, ErrNoBrief
	}

	return p.Save(ctx, b.Summary, notebook.TypeInsight)
}

// Delete removes an item from the notebook. Unknown ids are a no-op.
func (p *Panel) Delete(ctx context.Context, id string) error {
	item, existed := p.store.Get(id)

	err := p.store.Remove(ctx, id)
	var perr *notebook.PersistError
	if err != nil && !errors.As(err, &perr) {
		return err
	}

	if existed {
		p.publish(ctx, eventstream.EventTypeItemRemoved, item, perr == nil)
	}

	return err
}

func (p *Panel) publish(ctx context.Context, eventType string, item notebook.EvidenceItem, persisted bool) {
	event := eventstream.NewNotebookEvent(eventType, item, p.store.Len(), persisted)
	if err := p.publisher.PublishNotebook(ctx, event); err != nil {
		p.logger.Warn("publishing notebook event",
			"event_type", eventType,
			"item_id", item.ID,
			"error", err,
		)
	}
}

func (p *Panel) notify(ctx context.Context) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(ctx, SavedNotification); err != nil {
		p.logger.Warn("sending notification", "error", err)
	}
}
