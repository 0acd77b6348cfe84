package notebookcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/cliui"
	"github.com/papercomputeco/verso/pkg/notebook"
)

const addLongDesc string = `Add an item to the research notebook.

The item is attributed to the page currently described by page.json in the
page directory. With no content argument the current selection is saved as
a quote.

Examples:
  verso notebook add "Inflation fell to 2.1% in March"
  verso notebook add --type insight "The author conflates correlation and cause"
  verso notebook add`

func newAddCmd() *cobra.Command {
	var itemType string

	cmd := &cobra.Command{
		Use:   "add [content...]",
		Short: "Add an item to the notebook",
		Long:  addLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := notebook.ParseItemType(itemType)
			if err != nil {
				return err
			}

			cfg, err := cmdutil.SessionConfig(cmd, true)
			if err != nil {
				return err
			}
			sess, err := cmdutil.OpenSession(cmd, cfg, cmdutil.NewLogger(cmd, false), true)
			if err != nil {
				return err
			}
			defer sess.Close()

			ctx := cmd.Context()
			sess.Panel.LoadPage(ctx)

			var item notebook.EvidenceItem
			content := strings.TrimSpace(strings.Join(args, " "))
			if content == "" {
				if t != notebook.TypeQuote {
					return fmt.Errorf("content is required for %s items", t)
				}
				item, err = sess.Panel.SaveSelection(ctx)
			} else {
				item, err = sess.Panel.Save(ctx, content, t)
			}

			if item.ID == "" {
				return err
			}
			if err != nil {
				printPersistWarning(cmd, err)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Added %s %s\n\n",
				cliui.SuccessMark,
				string(item.Type),
				cliui.NameStyle.Render(item.ID),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&itemType, "type", "t", string(notebook.TypeQuote), "Item type (quote, insight)")
	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{string(notebook.TypeQuote), string(notebook.TypeInsight)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}
