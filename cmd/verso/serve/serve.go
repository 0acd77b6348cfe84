// Package servecmder provides the serve command, which runs a panel session
// behind the HTTP and MCP API.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/api"
	"github.com/papercomputeco/verso/cmd/verso/cmdutil"
	"github.com/papercomputeco/verso/pkg/config"
)

type serveCommander struct {
	withoutAssistant bool
	disableMCP       bool
	logFile          string
}

const serveLongDesc string = `Run a research panel session behind the verso API.

Loads the notebook and the current page, generates a brief and follows
selection changes, then serves the HTTP bridge API and the MCP endpoint
(/mcp) on --listen until interrupted.

Examples:
  verso serve
  verso serve --listen :9000 --storage postgres --postgres "postgres://..."
  verso serve --events kafka --kafka-brokers localhost:9092
  verso serve --without-assistant --no-mcp
  verso serve --log-file verso.log`

const serveShortDesc string = "Run the verso API server"

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmdutil.AddFlags(cmd, config.FlagAPIListen)
	cmdutil.AddFlags(cmd, cmdutil.StorageFlags...)
	cmdutil.AddFlags(cmd, cmdutil.LLMFlags...)
	cmd.Flags().BoolVar(&cmder.withoutAssistant, "without-assistant", false, "Run without a model: no brief and no ask")
	cmd.Flags().BoolVar(&cmder.disableMCP, "no-mcp", false, "Do not mount the MCP endpoint")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := cmdutil.SessionConfig(cmd, c.withoutAssistant, config.FlagAPIListen)
	if err != nil {
		return err
	}
	log := cmdutil.NewLogger(cmd, true)
	if c.logFile != "" {
		var closeLog func() error
		log, closeLog, err = cmdutil.NewFileLogger(cmd, c.logFile)
		if err != nil {
			return err
		}
		defer closeLog()
	}

	sess, err := cmdutil.OpenSession(cmd, cfg, log, c.withoutAssistant)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Panel.Start(ctx); err != nil {
		return fmt.Errorf("starting panel: %w", err)
	}

	server, err := api.NewServer(api.Config{
		ListenAddr: cfg.API.Listen,
		DisableMCP: c.disableMCP,
	}, sess.Panel, log)
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("received signal, shutting down")
	}

	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("shutting down api server: %w", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
		log.Debug("api server stopped", "error", err)
	}

	if sess.Store.Dirty() {
		log.Warn("notebook has unsaved changes, retrying write")
		if err := sess.Store.Sync(context.Background()); err != nil {
			return err
		}
	}
	return nil
}
