// Package readcmder provides the read command, which switches the page host
// into reading mode.
package readcmder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/cliui"
)

const readLongDesc string = `Overlay the page article in a reading view.

Extracts the article (article.json, or the page title and text), injects the
reader stylesheet and inserts the reader widget. The resulting page is
written to reader.html in the page directory (or --output) and the ids of
the injected style and widget are printed.

Examples:
  verso read
  verso read -o article.html
  verso read --json`

// ReaderFile is written to the page directory when --output is unset.
const ReaderFile = "reader.html"

const readShortDesc string = "Show the current page in reading mode"

func NewReadCmd() *cobra.Command {
	var (
		asJSON bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: readShortDesc,
		Long:  readLongDesc,
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

			sess.Panel.LoadPage(cmd.Context())
			mode, err := sess.Panel.EnableReadingMode(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" {
				output = filepath.Join(sess.Host.Dir(), ReaderFile)
			}
			var title string
			if info, ok := sess.Panel.PageInfo(); ok {
				title = info.Title
			}
			if err := os.WriteFile(output, []byte(sess.Host.Document(title)), 0o644); err != nil {
				return fmt.Errorf("writing reader page: %w", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(mode)
			}

			fmt.Fprintf(out, "\n  %s Reading mode enabled\n", cliui.SuccessMark)
			fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("style: "), cliui.ValueStyle.Render(mode.StyleID))
			fmt.Fprintf(out, "  %s %s\n", cliui.KeyStyle.Render("widget:"), cliui.ValueStyle.Render(mode.WidgetID))
			fmt.Fprintf(out, "  %s %s\n\n", cliui.KeyStyle.Render("page:  "), cliui.DimStyle.Render(output))
			return nil
		},
	}

	cmdutil.AddFlags(cmd, cmdutil.StorageFlags...)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the style and widget ids as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Where to write the reader page (default: <page-dir>/reader.html)")

	return cmd
}
