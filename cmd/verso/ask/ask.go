// Package askcmder provides the ask command for questioning the research
// assistant about the current page.
package askcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/cliui"
)

type askCommander struct {
	noStream bool
	markdown bool
}

const askLongDesc string = `Ask the research assistant a question about the current page.

The page text from the page directory is sent as context. Answers stream to
the terminal as they arrive; --no-stream waits for the full answer and
renders it as markdown.

Examples:
  verso ask "What is the main argument?"
  verso ask --no-stream "List the sources the author cites"
  echo "Who funded the study?" | verso ask -`

const askShortDesc string = "Ask a question about the current page"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if question == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading question from stdin: %w", err)
				}
				question = string(data)
			}
			return cmder.run(cmd, question)
		},
	}

	cmdutil.AddFlags(cmd, cmdutil.StorageFlags...)
	cmdutil.AddFlags(cmd, cmdutil.LLMFlags...)
	cmd.Flags().BoolVar(&cmder.noStream, "no-stream", false, "Wait for the full answer instead of streaming it")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, question string) error {
	cfg, err := cmdutil.SessionConfig(cmd, false)
	if err != nil {
		return err
	}
	sess, err := cmdutil.OpenSession(cmd, cfg, cmdutil.NewLogger(cmd, false), false)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	p := sess.Panel
	out := cmd.OutOrStdout()

	if _, ok := p.LoadPage(ctx); !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s\n",
			cliui.WarnStyle.Render("!"),
			cliui.DimStyle.Render("no page text, asking without context"),
		)
	}

	if c.noStream {
		var answer string
		err := cliui.Step(cmd.ErrOrStderr(), "Thinking", func() error {
			var askErr error
			answer, askErr = p.Ask(ctx, question)
			return askErr
		})
		if err != nil {
			return err
		}
		rendered, err := cliui.RenderMarkdown(answer)
		if err != nil {
			rendered = answer
		}
		fmt.Fprintln(out, rendered)
		return nil
	}

	answer, err := p.AskStream(ctx, question, func(delta string) {
		fmt.Fprint(out, delta)
	})
	if err != nil {
		return err
	}
	if !strings.HasSuffix(answer, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}
