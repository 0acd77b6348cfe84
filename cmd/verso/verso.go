// Package versocmder is the root verso command.
package versocmder

import (
	"github.com/spf13/cobra"

	versioncmder "github.com/papercomputeco/verso/cmd/version"
	askcmder "github.com/papercomputeco/verso/cmd/verso/ask"
	authcmder "github.com/papercomputeco/verso/cmd/verso/auth"
	briefcmder "github.com/papercomputeco/verso/cmd/verso/brief"
	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	configcmder "github.com/papercomputeco/verso/cmd/verso/config"
	initcmder "github.com/papercomputeco/verso/cmd/verso/init"
	notebookcmder "github.com/papercomputeco/verso/cmd/verso/notebook"
	readcmder "github.com/papercomputeco/verso/cmd/verso/read"
	servecmder "github.com/papercomputeco/verso/cmd/verso/serve"
	watchcmder "github.com/papercomputeco/verso/cmd/verso/watch"
)

const versoLongDesc string = `Verso is a research notebook for the page you are reading.

It keeps a notebook of quotes and insights, writes research briefs of the
current page and answers questions about it. A browser bridge (or you) keeps
the page directory up to date; verso reads it.

Get started:
  verso init --preset gemini     Create .verso/ with a config.toml
  verso auth gemini              Store an API key
  verso brief                    Brief the current page
  verso notebook list            Show the notebook
  verso serve                    Run the HTTP and MCP API`

const versoShortDesc string = "Verso - research notebook and page briefs"

func NewVersoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "verso",
		Short:        versoShortDesc,
		Long:         versoLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP(cmdutil.FlagDebug, "d", false, "Enable debug logging")
	cmd.PersistentFlags().String(cmdutil.FlagConfigDir, "", "Override path to .verso/ config directory")
	cmd.PersistentFlags().Bool(cmdutil.FlagLogJSON, false, "Write logs as JSON")

	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(notebookcmder.NewNotebookCmd())
	cmd.AddCommand(briefcmder.NewBriefCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(readcmder.NewReadCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
