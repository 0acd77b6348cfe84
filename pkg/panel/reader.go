package panel

import (
	"context"
	"fmt"
	"html"

	"github.com/papercomputeco/verso/pkg/host"
)

// ReaderCSS styles the reading-mode overlay.
const ReaderCSS = `
.verso-reader {
  position: fixed; inset: 0; z-index: 2147483647;
  overflow-y: auto; background: #fdfcf8; color: #1e293b;
  padding: 48px max(24px, calc((100vw - 720px) / 2));
  font: 19px/1.7 Georgia, serif;
}
.verso-reader h1 { font-size: 32px; line-height: 1.25; margin-bottom: 24px; }
.verso-reader img { max-width: 100%; height: auto; }
.verso-reader-close {
  position: fixed; top: 20px; right: 20px; cursor: pointer;
  background: #eee; padding: 8px 16px; border-radius: 4px;
  font: 14px/1.4 sans-serif;
}
`

// ReaderCloseID is the element id of the overlay's close control.
const ReaderCloseID = "verso-reader-close"

// ReaderPosition is where the reading-mode widget is inserted.
const ReaderPosition = "center"

// ReadingMode identifies the host resources added by EnableReadingMode.
type ReadingMode struct {
	StyleID  string `json:"styleId"`
	WidgetID string `json:"widgetId"`
}

// EnableReadingMode extracts the page article and overlays it in a reader view.
func (p *Panel) EnableReadingMode(ctx context.Context) (ReadingMode, error) {
	article, err := p.page.ExtractArticle(ctx)
	if err != nil {
		return ReadingMode{}, fmt.Errorf("extracting article: %w", err)
	}

	styleID, err := p.page.InjectCSS(ctx, ReaderCSS)
	if err != nil {
		return ReadingMode{}, fmt.Errorf("injecting reader css: %w", err)
	}

	widgetID, err := p.page.InsertWidget(ctx, host.Widget{
		HTML:     readerHTML(article),
		Position: ReaderPosition,
	})
	if err != nil {
		if rmErr := p.page.RemoveCSS(ctx, styleID); rmErr != nil {
			p.logger.Warn("removing reader css", "style_id", styleID, "error", rmErr)
		}
		return ReadingMode{}, fmt.Errorf("inserting reader widget: %w", err)
	}

	p.logger.Debug("reading mode enabled", "style_id", styleID, "widget_id", widgetID)
	return ReadingMode{StyleID: styleID, WidgetID: widgetID}, nil
}

// readerHTML renders the overlay. Article content is host-extracted markup
// and is inserted as-is. The close control removes the whole overlay.
func readerHTML(a host.Article) string {
	return fmt.Sprintf(`<div class="verso-reader">`+
		`<div class="verso-reader-close" id="%s" role="button" onclick="this.parentNode.remove()">Close Reader</div>`+
		`<h1>%s</h1>%s</div>`, ReaderCloseID, html.EscapeString(a.Title), a.Content)
}
