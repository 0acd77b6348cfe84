package notebookcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/cliui"
)

const rmLongDesc string = `Remove items from the research notebook by id.

Unknown ids are ignored.

Examples:
  verso notebook rm 3f1c9a2e-5b7d-4e61-9a0c-1d2e3f4a5b6c`

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove"},
		Short:   "Remove notebook items",
		Long:    rmLongDesc,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			fmt.Fprintln(out)
			for _, id := range args {
				_, existed := sess.Store.Get(id)
				if err := sess.Panel.Delete(cmd.Context(), id); err != nil {
					printPersistWarning(cmd, err)
					return err
				}
				if existed {
					fmt.Fprintf(out, "  %s Removed %s\n", cliui.SuccessMark, cliui.NameStyle.Render(id))
				} else {
					fmt.Fprintf(out, "  %s No item %s\n", cliui.DimStyle.Render("●"), cliui.NameStyle.Render(id))
				}
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	return cmd
}
