// Package briefcmder provides the brief command for generating a research
// brief of the current page.
package briefcmder

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/cliui"
)

// ErrNoBrief is returned when the page yielded no brief.
var ErrNoBrief = errors.New("no brief generated: the page text may be too short, see --debug for details")

type briefCommander struct {
	asJSON bool
	save   bool
}

const briefLongDesc string = `Generate a research brief of the current page.

Reads page.json and page.txt from the page directory, sends the text to the
configured model and prints the summary, key points, entities and reading
metrics. --save keeps the summary in the notebook as an insight.

Examples:
  verso brief
  verso brief --llm-provider anthropic --save
  verso brief --json`

const briefShortDesc string = "Generate a research brief of the current page"

func NewBriefCmd() *cobra.Command {
	cmder := &briefCommander{}

	cmd := &cobra.Command{
		Use:   "brief",
		Short: briefShortDesc,
		Long:  briefLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddFlags(cmd, cmdutil.StorageFlags...)
	cmdutil.AddFlags(cmd, cmdutil.LLMFlags...)
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the brief as JSON")
	cmd.Flags().BoolVar(&cmder.save, "save", false, "Save the summary to the notebook as an insight")

	return cmd
}

func (c *briefCommander) run(cmd *cobra.Command) error {
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

	msg := fmt.Sprintf("Generating brief with %s", cfg.LLM.Provider)
	err = cliui.Step(cmd.ErrOrStderr(), msg, func() error {
		p.Refresh(ctx)
		if p.Brief() == nil {
			return ErrNoBrief
		}
		return nil
	})
	if err != nil {
		return err
	}

	b := p.Brief()
	out := cmd.OutOrStdout()

	if c.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(b); err != nil {
			return err
		}
	} else {
		var title string
		if info, ok := p.PageInfo(); ok {
			title = info.Title
		}
		fmt.Fprintln(out, cliui.RenderBrief(title, b))
	}

	if !c.save {
		return nil
	}

	item, err := p.SaveInsight(ctx)
	if err != nil {
		return fmt.Errorf("saving insight: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "  %s Saved insight %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(item.ID))
	return nil
}
