package cliui

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/verso/pkg/brief"
)

// BriefMarkdown lays a brief out as markdown.
func BriefMarkdown(title string, b *brief.Brief) string {
	if b == nil {
		return ""
	}

	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	fmt.Fprintf(&sb, "%s\n\n", b.Summary)

	if len(b.KeyPoints) > 0 {
		sb.WriteString("## Key points\n\n")
		for _, p := range b.KeyPoints {
			fmt.Fprintf(&sb, "- %s\n", p)
		}
		sb.WriteString("\n")
	}

	if len(b.Entities) > 0 {
		sb.WriteString("## Entities\n\n")
		for _, e := range b.Entities {
			fmt.Fprintf(&sb, "- **%s** (%s): %s\n", e.Name, e.Type, e.Description)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "_%.0f min read · %s · %s_\n",
		b.Metrics.ReadingTime, b.Metrics.Complexity, b.Metrics.Sentiment)

	return sb.String()
}

// RenderBrief renders a brief for the terminal, falling back to plain
// markdown when glamour fails.
func RenderBrief(title string, b *brief.Brief) string {
	md := BriefMarkdown(title, b)
	out, err := RenderMarkdown(md)
	if err != nil {
		return md
	}
	return out
}
