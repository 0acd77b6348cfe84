// Package watchcmder provides the watch command, which follows selection
// changes in the page directory and optionally saves each one.
package watchcmder

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/cliui"
	"github.com/papercomputeco/verso/pkg/notebook"
	"github.com/papercomputeco/verso/pkg/session"
)

type watchCommander struct {
	save bool
	out  io.Writer
	sess *session.Session
}

const watchLongDesc string = `Follow selection changes on the current page.

Watches selection.txt in the page directory and prints each new selection.
With --save every non-empty selection is added to the notebook as a quote,
attributed to the page in page.json at that moment. Runs until interrupted.

Examples:
  verso watch
  verso watch --save --page-dir ~/bridge/page`

const watchShortDesc string = "Follow selection changes on the current page"

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddFlags(cmd, cmdutil.StorageFlags...)
	cmd.Flags().BoolVar(&cmder.save, "save", false, "Save every selection to the notebook as a quote")

	return cmd
}

func (c *watchCommander) run(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := cmdutil.SessionConfig(cmd, true)
	if err != nil {
		return err
	}
	log := cmdutil.NewLogger(cmd, true)

	c.sess, err = cmdutil.OpenSession(cmd, cfg, log, true)
	if err != nil {
		return err
	}
	defer c.sess.Close()

	c.out = cmd.OutOrStdout()

	unsubscribe, err := c.sess.Host.OnSelectionChange(func(text string) {
		c.handleSelection(ctx, text)
	})
	if err != nil {
		return err
	}
	defer unsubscribe()

	log.Info("watching selection", "dir", c.sess.Host.Dir(), "save", c.save)
	<-ctx.Done()
	log.Info("stopped watching")
	return nil
}

func (c *watchCommander) handleSelection(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	fmt.Fprintf(c.out, "  %s %s\n", cliui.DimStyle.Render("selected"), cliui.Excerpt(text, 72))
	if !c.save {
		return
	}

	c.sess.Panel.LoadPage(ctx)
	item, err := c.sess.Panel.Save(ctx, text, notebook.TypeQuote)
	if err != nil {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.FailMark, err)
		return
	}
	fmt.Fprintf(c.out, "  %s saved %s\n", cliui.SuccessMark, cliui.NameStyle.Render(item.ID))
}
