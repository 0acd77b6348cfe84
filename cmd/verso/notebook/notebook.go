// Package notebookcmder provides the notebook command for listing and editing
// the research notebook from the terminal.
package notebookcmder

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/cliui"
)

const notebookLongDesc string = `Inspect and edit the research notebook.

The notebook is stored under the research_notebook key of the configured
storage backend (sqlite by default, at .verso/verso.db). Items are listed
newest first.

Examples:
  verso notebook list
  verso notebook add "A quote worth keeping"
  verso notebook rm 3f1c9a2e-...
  verso notebook export --format yaml -o notes.yaml`

const notebookShortDesc string = "Inspect and edit the research notebook"

func NewNotebookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notebook",
		Aliases: []string{"nb"},
		Short:   notebookShortDesc,
		Long:    notebookLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newExportCmd())

	for _, sub := range cmd.Commands() {
		cmdutil.AddFlags(sub, cmdutil.StorageFlags...)
	}

	return cmd
}

const listLongDesc string = `List the items in the research notebook, newest first.

Examples:
  verso notebook list
  verso notebook list --json`

func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notebook items",
		Long:    listLongDesc,
		Args:    cobra.NoArgs,
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
			items := sess.Store.Items()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}

			cliui.PrintNotebook(out, items, cliui.TerminalWidth(out, 80))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print items as JSON")

	return cmd
}

// printPersistWarning reports a saved-but-not-persisted mutation.
func printPersistWarning(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "\n  %s %s\n\n",
		cliui.WarnStyle.Render("!"),
		cliui.DimStyle.Render(err.Error()),
	)
}
