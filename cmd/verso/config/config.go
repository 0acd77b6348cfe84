// Package configcmder provides the config command for managing persistent
// verso configuration stored in the .verso/ directory.
package configcmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/pkg/cliui"
	"github.com/papercomputeco/verso/pkg/config"
)

const configLongDesc string = `Manage persistent verso configuration.

Configuration is stored as config.toml in the .verso/ directory and provides
default values for command flags. CLI flags and VERSO_ environment variables
always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  llm.provider, llm.model, llm.base_url, llm.language, llm.timeout_seconds,
  api.listen,
  events.provider, events.kafka_brokers, events.kafka_topic,
  host.page_dir

Use subcommands to get, set, or list configuration values:
  verso config set <key> <value>    Set a configuration value
  verso config get <key>            Get a configuration value
  verso config list                 List all configuration values

Examples:
  verso config set llm.provider anthropic
  verso config set storage.provider postgres
  verso config get llm.model
  verso config list`

const configShortDesc string = "Manage persistent verso configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func printTarget(out io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(out, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(out, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
}
