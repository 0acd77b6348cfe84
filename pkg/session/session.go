// Package session assembles a panel and its collaborators from a resolved
// Config. It is the one place that knows which storage, events and model
// backends a configuration maps to.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/papercomputeco/verso/pkg/brief"
	"github.com/papercomputeco/verso/pkg/config"
	"github.com/papercomputeco/verso/pkg/credentials"
	"github.com/papercomputeco/verso/pkg/dotdir"
	"github.com/papercomputeco/verso/pkg/eventstream"
	"github.com/papercomputeco/verso/pkg/eventstream/kafka"
	"github.com/papercomputeco/verso/pkg/eventstream/nop"
	"github.com/papercomputeco/verso/pkg/host/local"
	"github.com/papercomputeco/verso/pkg/llm"
	"github.com/papercomputeco/verso/pkg/logger"
	"github.com/papercomputeco/verso/pkg/notebook"
	"github.com/papercomputeco/verso/pkg/panel"
	"github.com/papercomputeco/verso/pkg/storage"
	"github.com/papercomputeco/verso/pkg/storage/inmemory"
	"github.com/papercomputeco/verso/pkg/storage/postgres"
	"github.com/papercomputeco/verso/pkg/storage/sqlite"
)

const (
	// DefaultSQLiteFile is created in the .verso/ directory when
	// storage.sqlite_path is unset.
	DefaultSQLiteFile = "verso.db"

	// DefaultPageDir is the page directory under .verso/ when
	// host.page_dir is unset.
	DefaultPageDir = "page"
)

// Options configures Open.
type Options struct {
	// Config is the resolved configuration. Required.
	Config *config.Config

	// ConfigDir overrides .verso/ directory resolution.
	ConfigDir string

	// WithoutAssistant skips model setup; the panel has no brief or chat.
	WithoutAssistant bool

	// HTTPClient is used for model calls. Defaults to a client with
	// llm.timeout_seconds as its timeout.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Session owns a panel and everything it was built from.
type Session struct {
	Panel *panel.Panel
	Store *notebook.Store
	Host  *local.Host

	driver    storage.Driver
	publisher eventstream.Publisher
	logger    *slog.Logger
}

// Open builds the storage driver, notebook store, page host, assistant and
// event publisher described by opts.Config and wires them into a panel.
// The panel is not started.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	cfg := opts.Config

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	s := &Session{logger: log}

	var err error
	s.driver, err = NewStorageDriver(ctx, cfg.Storage, opts.ConfigDir, log)
	if err != nil {
		return nil, err
	}

	s.Store, err = notebook.NewStore(s.driver, notebook.WithLogger(log))
	if err != nil {
		s.Close()
		return nil, err
	}

	pageDir, err := PageDir(cfg.Host, opts.ConfigDir)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Host, err = local.New(local.Config{Dir: pageDir, Logger: log})
	if err != nil {
		s.Close()
		return nil, err
	}

	s.publisher, err = NewPublisher(cfg.Events, log)
	if err != nil {
		s.Close()
		return nil, err
	}

	panelCfg := panel.Config{
		Store:     s.Store,
		Page:      s.Host,
		Notifier:  s.Host,
		Publisher: s.publisher,
		Logger:    log,
	}

	if !opts.WithoutAssistant {
		assistant, err := NewAssistant(cfg.LLM, opts.ConfigDir, opts.HTTPClient, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		panelCfg.Generator = assistant
		panelCfg.Chatter = assistant
	}

	s.Panel, err = panel.New(panelCfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the panel subscription, the publisher and the storage
// driver.
func (s *Session) Close() error {
	var errs []error
	if s.Panel != nil {
		errs = append(errs, s.Panel.Close())
	}
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.driver != nil {
		errs = append(errs, s.driver.Close())
	}
	return errors.Join(errs...)
}

// Driver returns the storage driver backing the notebook.
func (s *Session) Driver() storage.Driver {
	return s.driver
}

// NewStorageDriver opens the durable slot backend named by cfg.Provider.
func NewStorageDriver(ctx context.Context, cfg config.StorageConfig, configDir string, log *slog.Logger) (storage.Driver, error) {
	switch strings.ToLower(cfg.Provider) {
	case "memory", "inmemory":
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case "", "sqlite":
		path := cfg.SQLitePath
		if path == "" {
			dir, err := dotdir.NewManager().Ensure(configDir)
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, DefaultSQLiteFile)
		}
		driver, err := sqlite.NewSQLiteDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		log.Info("using SQLite storage", "path", path)
		return driver, nil

	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, errors.New("storage.postgres_dsn is required for postgres storage")
		}
		driver, err := postgres.NewDriver(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres storer: %w", err)
		}
		log.Info("using postgres storage")
		return driver, nil

	default:
		return nil, fmt.Errorf("unsupported storage provider: %q (valid: memory, sqlite, postgres)", cfg.Provider)
	}
}

// NewPublisher creates the notebook event publisher named by cfg.Provider.
func NewPublisher(cfg config.EventsConfig, log *slog.Logger) (eventstream.Publisher, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nop.NewPublisher(), nil

	case "kafka":
		brokers := SplitBrokers(cfg.KafkaBrokers)
		if len(brokers) == 0 {
			return nil, errors.New("events.kafka_brokers is required for kafka events")
		}
		log.Info("publishing notebook events to kafka", "brokers", brokers, "topic", cfg.KafkaTopic)
		return kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   cfg.KafkaTopic,
			Logger:  log,
		})

	default:
		return nil, fmt.Errorf("unsupported events provider: %q (valid: none, kafka)", cfg.Provider)
	}
}

// SplitBrokers parses a comma-separated broker list, dropping blanks and
// duplicates.
func SplitBrokers(s string) []string {
	brokers := lo.Map(strings.Split(s, ","), func(b string, _ int) string {
		return strings.TrimSpace(b)
	})
	return lo.Uniq(lo.Compact(brokers))
}

// NewAssistant builds the brief generator and chat assistant for cfg. The
// API key comes from credentials.toml, the provider's environment variable
// or .verso/.env, in that order.
func NewAssistant(cfg config.LLMConfig, configDir string, client *http.Client, log *slog.Logger) (*brief.Assistant, error) {
	provider := strings.ToLower(cfg.Provider)

	var apiKey string
	if credentials.IsSupportedProvider(provider) {
		mgr, err := credentials.NewManager(configDir)
		if err != nil {
			return nil, fmt.Errorf("loading credentials: %w", err)
		}
		apiKey, err = mgr.Resolve(provider)
		if err != nil {
			return nil, fmt.Errorf("resolving %s api key: %w", provider, err)
		}
	}

	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	llmCfg := llm.Config{
		Provider:   provider,
		Model:      cfg.Model,
		APIKey:     apiKey,
		BaseURL:    cfg.BaseURL,
		HTTPClient: client,
		Logger:     log,
	}

	call, err := llm.NewCaller(llmCfg)
	if err != nil {
		return nil, err
	}
	stream, err := llm.NewStreamer(llmCfg)
	if err != nil {
		return nil, err
	}

	return brief.NewAssistant(brief.Config{
		Call:     call,
		Stream:   stream,
		Language: cfg.Language,
		Logger:   log,
	})
}

// PageDir resolves the directory the local page host reads.
func PageDir(cfg config.HostConfig, configDir string) (string, error) {
	if cfg.PageDir != "" {
		return cfg.PageDir, nil
	}
	dir, err := dotdir.NewManager().Ensure(configDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultPageDir), nil
}
