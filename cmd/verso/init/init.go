// Package initcmder provides the init command for initializing a local .verso
// directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/pkg/cliui"
	"github.com/papercomputeco/verso/pkg/config"
	"github.com/papercomputeco/verso/pkg/dotdir"
)

const fetchTimeout = 15 * time.Second

const initLongDesc string = `Initialize a new .verso/ directory in the current working directory.

Creates a local .verso/ directory that takes precedence over the default
~/.verso/ directory for configuration, credentials and the notebook
database, and writes a config.toml into it.

--preset takes either a provider name (gemini, openai, anthropic, ollama)
or an http(s) URL pointing at a config.toml to fetch. Without --preset an
existing config.toml is left untouched.

Examples:
  verso init
  verso init --preset anthropic
  verso init --preset https://example.com/team/verso.toml`

const initShortDesc string = "Initialize a local .verso/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Provider preset name or URL of a config.toml")
	_ = cmd.RegisterFlagCompletionFunc("preset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInit(ctx context.Context, out io.Writer, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dotdir.DirName)
	configPath := filepath.Join(dir, "config.toml")

	// Resolve the config before touching disk so a bad preset leaves nothing behind.
	var cfg *config.Config
	switch {
	case isURL(preset):
		cfg, err = fetchConfig(ctx, preset)
	case preset != "":
		cfg, err = config.PresetConfig(preset)
	default:
		if _, statErr := os.Stat(configPath); statErr == nil {
			fmt.Fprintf(out, "\n  %s Already initialized: %s\n\n", cliui.DimStyle.Render("●"), dir)
			return nil
		}
		cfg = config.NewDefaultConfig()
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .verso directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Initialized %s\n", cliui.SuccessMark, cliui.NameStyle.Render(dir))
	fmt.Fprintf(out, "  %s %s\n\n", cliui.KeyStyle.Render("llm.provider:"), cliui.ValueStyle.Render(cfg.LLM.Provider))
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func fetchConfig(ctx context.Context, url string) (*config.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("fetching remote config: empty body")
	}

	return config.ParseConfigTOML(data)
}
