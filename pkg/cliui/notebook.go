package cliui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/verso/pkg/notebook"
)

// minContentWidth keeps excerpts readable on narrow terminals.
const minContentWidth = 20

// PrintNotebook writes one block per evidence item, newest first, with the
// excerpt truncated to fit width.
func PrintNotebook(w io.Writer, items []notebook.EvidenceItem, width int) {
	if len(items) == 0 {
		fmt.Fprintf(w, "\n  %s Notebook is empty.\n\n", DimStyle.Render("●"))
		return
	}

	contentWidth := max(width-4, minContentWidth)

	fmt.Fprintf(w, "\n  %s %s\n\n",
		HeaderStyle.Render("Research notebook"),
		DimStyle.Render(fmt.Sprintf("(%d)", len(items))),
	)
	for _, item := range items {
		when := time.UnixMilli(item.Timestamp).Local().Format("2006-01-02 15:04")
		fmt.Fprintf(w, "  %s  %s  %s\n",
			KeyStyle.Render(string(item.Type)),
			NameStyle.Render(item.ID),
			DimStyle.Render(when),
		)
		fmt.Fprintf(w, "  %s\n", ValueStyle.Render(Excerpt(item.Content, contentWidth)))
		if item.SourceTitle != "" || item.SourceURL != "" {
			fmt.Fprintf(w, "  %s\n", DimStyle.Render(Excerpt(item.SourceTitle+" "+item.SourceURL, contentWidth)))
		}
		fmt.Fprintln(w)
	}
}

// Excerpt collapses whitespace and truncates s to width display cells.
func Excerpt(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
