package notebookcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/notebook"
)

const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
)

const exportLongDesc string = `Export the research notebook.

Formats:
  json       The durable slot format, one array of items
  yaml       The same fields as YAML
  markdown   One section per item, grouped by source

Examples:
  verso notebook export
  verso notebook export --format yaml -o notes.yaml
  verso notebook export --format markdown > notes.md`

func newExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the notebook as JSON, YAML or markdown",
		Long:  exportLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutil.SessionConfig(cmd, true)
			if err != nil {
				return err
			}
			sess, err := cmdutil.OpenSession(cmd, cfg, cmdutil.NewLogger(cmd, false), true)
			if err != nil {
				return err
			}
			defer sess.Close()

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}

			return Export(out, sess.Store.Items(), format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "Output format (json, yaml, markdown)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatJSON, FormatYAML, FormatMarkdown}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// Export writes items to w in the given format.
func Export(w io.Writer, items []notebook.EvidenceItem, format string) error {
	if items == nil {
		items = []notebook.EvidenceItem{}
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)

	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()

	case FormatMarkdown, "md":
		return exportMarkdown(w, items)

	default:
		return fmt.Errorf("unsupported export format: %q (valid: json, yaml, markdown)", format)
	}
}

func exportMarkdown(w io.Writer, items []notebook.EvidenceItem) error {
	var sb strings.Builder
	sb.WriteString("# Research notebook\n")

	source := "\x00"
	for _, item := range items {
		key := item.SourceURL
		if key != source {
			source = key
			title := item.SourceTitle
			if title == "" {
				title = "Untitled"
			}
			if item.SourceURL != "" {
				fmt.Fprintf(&sb, "\n## [%s](%s)\n", title, item.SourceURL)
			} else {
				fmt.Fprintf(&sb, "\n## %s\n", title)
			}
		}

		when := item.CreatedAt().UTC().Format("2006-01-02 15:04 UTC")
		switch item.Type {
		case notebook.TypeQuote:
			fmt.Fprintf(&sb, "\n> %s\n", strings.ReplaceAll(strings.TrimSpace(item.Content), "\n", "\n> "))
		default:
			fmt.Fprintf(&sb, "\n**Insight:** %s\n", strings.TrimSpace(item.Content))
		}
		fmt.Fprintf(&sb, "\n_%s · %s_\n", when, item.ID)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
