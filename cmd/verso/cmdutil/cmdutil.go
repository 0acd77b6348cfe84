// Package cmdutil holds the config, logging and session plumbing shared by
// verso subcommands.
package cmdutil

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/verso/pkg/config"
	"github.com/papercomputeco/verso/pkg/logger"
	"github.com/papercomputeco/verso/pkg/session"
)

// Persistent flag names set on the root command.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
	FlagLogJSON   = "log-json"
)

// StorageFlags are the registry keys of every command that opens the notebook.
var StorageFlags = []string{
	config.FlagStorage,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEvents,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
	config.FlagPageDir,
}

// LLMFlags are the registry keys of every command that calls a model.
var LLMFlags = []string{
	config.FlagLLMProvider,
	config.FlagLLMModel,
	config.FlagLLMBaseURL,
	config.FlagLLMLanguage,
	config.FlagLLMTimeout,
}

// AddFlags registers the registry flags named by keys on cmd. String and
// uint flags are told apart by their viper key.
func AddFlags(cmd *cobra.Command, keys ...string) {
	for _, key := range keys {
		if key == config.FlagLLMTimeout {
			var target uint
			config.AddUintFlag(cmd, config.Flags, key, &target)
			continue
		}
		var target string
		config.AddStringFlag(cmd, config.Flags, key, &target)
	}
}

// ConfigDir returns the --config-dir override, or "".
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString(FlagConfigDir)
	return dir
}

// LoadConfig resolves the configuration for cmd: flags named by keys, then
// VERSO_ environment variables, then config.toml, then defaults.
func LoadConfig(cmd *cobra.Command, keys ...string) (*config.Config, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, keys)
	return config.FromViper(v), nil
}

// NewLogger builds the stderr logger for cmd. Long-running commands log at
// info; one-shot commands only surface warnings unless --debug is set.
func NewLogger(cmd *cobra.Command, longRunning bool) *slog.Logger {
	opts, _ := loggerOptions(cmd, longRunning)
	return logger.New(opts...)
}

// NewFileLogger is NewLogger for a long-running command that also appends
// JSON records to path. With --log-json the file and stderr share one JSON
// handler; otherwise pretty stderr output is fanned out next to the file.
// The returned func closes the file.
func NewFileLogger(cmd *cobra.Command, path string) (*slog.Logger, func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	opts, jsonLogs := loggerOptions(cmd, true)
	if jsonLogs {
		opts = append(opts, logger.WithWriters(os.Stderr, f))
		return logger.New(opts...), f.Close, nil
	}

	debug, _ := cmd.Flags().GetBool(FlagDebug)
	fileLog := logger.New(
		logger.WithWriter(f),
		logger.WithJSON(true),
		logger.WithDebug(debug),
	)
	return logger.Multi(logger.New(opts...), fileLog), f.Close, nil
}

func loggerOptions(cmd *cobra.Command, longRunning bool) ([]logger.Option, bool) {
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	jsonLogs, _ := cmd.Flags().GetBool(FlagLogJSON)

	opts := []logger.Option{
		logger.WithWriter(os.Stderr),
		logger.WithJSON(jsonLogs),
		logger.WithPretty(!jsonLogs),
	}
	switch {
	case debug:
		opts = append(opts, logger.WithDebug(true))
	case !longRunning:
		opts = append(opts, logger.WithLevel(slog.LevelWarn))
	}
	return opts, jsonLogs
}

// SessionConfig resolves the configuration of a command that opens a
// session: the storage flags, the model flags unless withoutAssistant is
// set, and any extra registry keys.
func SessionConfig(cmd *cobra.Command, withoutAssistant bool, extra ...string) (*config.Config, error) {
	keys := append([]string(nil), StorageFlags...)
	if !withoutAssistant {
		keys = append(keys, LLMFlags...)
	}
	keys = append(keys, extra...)
	return LoadConfig(cmd, keys...)
}

// OpenSession opens a session from cfg and loads the notebook. A load
// failure is returned rather than logged so that a command never
// overwrites a notebook it could not read.
func OpenSession(cmd *cobra.Command, cfg *config.Config, log *slog.Logger, withoutAssistant bool) (*session.Session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sess, err := session.Open(ctx, session.Options{
		Config:           cfg,
		ConfigDir:        ConfigDir(cmd),
		WithoutAssistant: withoutAssistant,
		Logger:           log,
	})
	if err != nil {
		return nil, err
	}

	if _, err := sess.Store.Load(ctx); err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("loading notebook: %w", err)
	}

	return sess, nil
}
