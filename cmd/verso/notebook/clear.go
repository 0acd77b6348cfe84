package notebookcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/cliui"
	"github.com/papercomputeco/verso/pkg/notebook"
	"github.com/papercomputeco/verso/pkg/session"
	"github.com/papercomputeco/verso/pkg/storage"
)

const clearLongDesc string = `Delete the whole research notebook from storage.

This removes the research_notebook slot. It cannot be undone; pass --yes
to confirm.

Examples:
  verso notebook clear --yes`

func newClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole notebook",
		Long:  clearLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear the notebook without --yes")
			}

			cfg, err := cmdutil.LoadConfig(cmd, cmdutil.StorageFlags...)
			if err != nil {
				return err
			}
			log := cmdutil.NewLogger(cmd, false)

			driver, err := session.NewStorageDriver(cmd.Context(), cfg.Storage, cmdutil.ConfigDir(cmd), log)
			if err != nil {
				return err
			}
			defer driver.Close()

			if err := driver.Delete(cmd.Context(), notebook.Key); err != nil && !storage.IsNotFound(err) {
				return fmt.Errorf("clearing notebook: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Notebook cleared\n\n", cliui.SuccessMark)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")

	return cmd
}
