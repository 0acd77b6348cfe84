// Package local implements the page host over a plain directory, so a browser
// bridge (or a person with an editor) can drive verso by writing files:
//
//	page.json      {"url": "...", "title": "...", "favIconUrl": "..."}
//	page.txt       raw page text
//	selection.txt  current text selection, watched for changes
//	article.json   optional {"title": "...", "content": "..."}
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/verso/pkg/host"
	"github.com/papercomputeco/verso/pkg/logger"
)

const (
	PageInfoFile  = "page.json"
	PageTextFile  = "page.txt"
	SelectionFile = "selection.txt"
	ArticleFile   = "article.json"
)

// Config configures a directory-backed Host.
type Config struct {
	// Dir is the page directory. It is created if missing.
	Dir string

	Logger *slog.Logger
}

// Host is a host.Page and host.Notifier over a directory. Injected styles,
// widgets and notifications are kept in memory for inspection.
type Host struct {
	dir    string
	logger *slog.Logger

	mu            sync.Mutex
	styles        map[string]string
	widgets       map[string]host.Widget
	notifications []host.Notification
}

var (
	_ host.Page     = (*Host)(nil)
	_ host.Notifier = (*Host)(nil)
)

// New creates a Host rooted at cfg.Dir.
func New(cfg Config) (*Host, error) {
	if cfg.Dir == "" {
		return nil, errors.New("page directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating page directory: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Host{
		dir:     cfg.Dir,
		logger:  log,
		styles:  make(map[string]string),
		widgets: make(map[string]host.Widget),
	}, nil
}

// Dir returns the page directory.
func (h *Host) Dir() string {
	return h.dir
}

func (h *Host) PageInfo(_ context.Context) (host.PageInfo, error) {
	var info host.PageInfo
	data, err := os.ReadFile(h.path(PageInfoFile))
	if err != nil {
		return info, fmt.Errorf("reading page info: %w", err)
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("parsing page info: %w", err)
	}
	return info, nil
}

// PageText returns the contents of page.txt, or "" when it does not exist.
func (h *Host) PageText(_ context.Context) (string, error) {
	return h.readOptional(PageTextFile)
}

func (h *Host) Selection(_ context.Context) (string, error) {
	text, err := h.readOptional(SelectionFile)
	return strings.TrimSpace(text), err
}

// ExtractArticle reads article.json, falling back to the page title and text.
func (h *Host) ExtractArticle(ctx context.Context) (host.Article, error) {
	data, err := os.ReadFile(h.path(ArticleFile))
	switch {
	case err == nil:
		var article host.Article
		if err := json.Unmarshal(data, &article); err != nil {
			return host.Article{}, fmt.Errorf("parsing article: %w", err)
		}
		if strings.TrimSpace(article.Content) == "" {
			return host.Article{}, host.ErrNoArticle
		}
		return article, nil
	case !errors.Is(err, os.ErrNotExist):
		return host.Article{}, fmt.Errorf("reading article: %w", err)
	}

	text, err := h.PageText(ctx)
	if err != nil {
		return host.Article{}, err
	}
	if strings.TrimSpace(text) == "" {
		return host.Article{}, host.ErrNoArticle
	}

	article := host.Article{Content: text}
	if info, err := h.PageInfo(ctx); err == nil {
		article.Title = info.Title
	}
	return article, nil
}

func (h *Host) InjectCSS(_ context.Context, css string) (string, error) {
	id := "verso-style-" + uuid.NewString()

	h.mu.Lock()
	h.styles[id] = css
	h.mu.Unlock()

	h.logger.Debug("css injected", "style_id", id, "bytes", len(css))
	return id, nil
}

func (h *Host) RemoveCSS(_ context.Context, styleID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.styles[styleID]; !ok {
		return fmt.Errorf("unknown style id: %s", styleID)
	}
	delete(h.styles, styleID)
	return nil
}

func (h *Host) InsertWidget(_ context.Context, w host.Widget) (string, error) {
	id := "verso-widget-" + uuid.NewString()

	h.mu.Lock()
	h.widgets[id] = w
	h.mu.Unlock()

	h.logger.Debug("widget inserted", "widget_id", id, "position", w.Position)
	return id, nil
}

// Styles returns the currently injected stylesheets by id.
func (h *Host) Styles() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.styles)
}

// Widgets returns the inserted widgets by id.
func (h *Host) Widgets() map[string]host.Widget {
	h.mu.Lock()
	defer h.mu.Unlock()
	return maps.Clone(h.widgets)
}

// Document renders the injected styles and inserted widgets as a standalone
// HTML page, ordered by id.
func (h *Host) Document(title string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(title))
	for _, id := range slices.Sorted(maps.Keys(h.styles)) {
		fmt.Fprintf(&sb, "<style id=%q>%s</style>\n", id, h.styles[id])
	}
	sb.WriteString("</head>\n<body>\n")
	for _, id := range slices.Sorted(maps.Keys(h.widgets)) {
		fmt.Fprintf(&sb, "<div id=%q data-position=%q>%s</div>\n", id, h.widgets[id].Position, h.widgets[id].HTML)
	}
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// Notify logs the notification and records it.
func (h *Host) Notify(_ context.Context, n host.Notification) error {
	h.mu.Lock()
	h.notifications = append(h.notifications, n)
	h.mu.Unlock()

	h.logger.Info(n.Title, "message", n.Message)
	return nil
}

// Notifications returns every notification sent so far.
func (h *Host) Notifications() []host.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]host.Notification, len(h.notifications))
	copy(out, h.notifications)
	return out
}

func (h *Host) path(name string) string {
	return filepath.Join(h.dir, name)
}

func (h *Host) readOptional(name string) (string, error) {
	data, err := os.ReadFile(h.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return string(data), nil
}
