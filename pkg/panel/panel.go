// Package panel runs a research panel session: it loads the page and the
// notebook, keeps the latest selection, generates a brief and turns user
// actions into notebook mutations, notifications and change events.
package panel

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/papercomputeco/verso/pkg/brief"
	"github.com/papercomputeco/verso/pkg/eventstream"
	"github.com/papercomputeco/verso/pkg/eventstream/nop"
	"github.com/papercomputeco/verso/pkg/host"
	"github.com/papercomputeco/verso/pkg/logger"
	"github.com/papercomputeco/verso/pkg/notebook"
	"github.com/papercomputeco/verso/pkg/utils"
)

// PageTextLimit caps the page text kept as question context. The brief
// generator receives the full text and applies its own cap.
const PageTextLimit = 5000

var (
	// ErrNoPage is returned when saving before page info is known.
	ErrNoPage = errors.New("no page info")

	// ErrNoBrief is returned when saving an insight before a brief exists.
	ErrNoBrief = errors.New("no brief for this page")

	// ErrNoSelection is returned when saving a selection while nothing is selected.
	ErrNoSelection = errors.New("nothing selected")

	// ErrNoAssistant is returned by Ask when no Chatter is configured.
	ErrNoAssistant = errors.New("no assistant configured")

	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("panel already started")
)

// SavedNotification is sent to the user after a successful save.
var SavedNotification = host.Notification{
	Title:   "Saved to notebook",
	Message: "The excerpt was added to your research notebook.",
}

// Config wires a Panel to its collaborators. Store and Page are required.
type Config struct {
	Store     *notebook.Store
	Page      host.Page
	Notifier  host.Notifier
	Generator brief.Generator
	Chatter   brief.Chatter
	Publisher eventstream.Publisher
	Logger    *slog.Logger
}

// Panel is one session over a page and a notebook.
type Panel struct {
	store     *notebook.Store
	page      host.Page
	notifier  host.Notifier
	generator brief.Generator
	chatter   brief.Chatter
	publisher eventstream.Publisher
	logger    *slog.Logger

	mu          sync.RWMutex
	started     bool
	info        *host.PageInfo
	pageText    string
	brief       *brief.Brief
	selection   string
	unsubscribe func()
}

// New creates a Panel. Call Start to run the startup sequence.
func New(cfg Config) (*Panel, error) {
	if cfg.Store == nil {
		return nil, errors.New("notebook store is required")
	}
	if cfg.Page == nil {
		return nil, errors.New("page host is required")
	}

	p := &Panel{
		store:     cfg.Store,
		page:      cfg.Page,
		notifier:  cfg.Notifier,
		generator: cfg.Generator,
		chatter:   cfg.Chatter,
		publisher: cfg.Publisher,
		logger:    cfg.Logger,
	}
	if p.publisher == nil {
		p.publisher = nop.NewPublisher()
	}
	if p.logger == nil {
		p.logger = logger.Nop()
	}

	return p, nil
}

// Start loads page info, the notebook and the page text, generates a brief
// when the text is long enough and subscribes to selection changes. Step
// failures are logged and do not stop later steps.
func (p *Panel) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.started = true
	p.mu.Unlock()

	p.loadInfo(ctx)

	if _, err := p.store.Load(ctx); err != nil {
		p.logger.Error("loading notebook", "error", err)
	}

	if text, ok := p.loadText(ctx); ok {
		p.generateBrief(ctx, text)
	}

	unsubscribe, err := p.page.OnSelectionChange(p.setSelection)
	if err != nil {
		p.logger.Warn("selection changes unavailable", "error", err)
		return nil
	}

	p.mu.Lock()
	p.unsubscribe = unsubscribe
	p.mu.Unlock()

	return nil
}

// Refresh re-reads page info and text and regenerates the brief.
func (p *Panel) Refresh(ctx context.Context) {
	text, ok := p.LoadPage(ctx)
	if !ok {
		return
	}
	p.generateBrief(ctx, text)
}

// LoadPage re-reads page info and text without generating a brief. It
// returns the full page text and reports false when it could not be read.
// Only the first PageTextLimit characters are kept as question context.
// The previous brief is discarded once new text arrives.
func (p *Panel) LoadPage(ctx context.Context) (string, bool) {
	p.loadInfo(ctx)
	return p.loadText(ctx)
}

func (p *Panel) loadInfo(ctx context.Context) {
	info, err := p.page.PageInfo(ctx)
	if err != nil {
		p.logger.Warn("reading page info", "error", err)
		return
	}
	p.mu.Lock()
	p.info = &info
	p.mu.Unlock()
}

func (p *Panel) loadText(ctx context.Context) (string, bool) {
	text, err := p.page.PageText(ctx)
	if err != nil {
		p.logger.Warn("reading page text", "error", err)
		return "", false
	}

	p.mu.Lock()
	p.pageText = utils.Truncate(text, PageTextLimit)
	p.brief = nil
	p.mu.Unlock()

	return text, true
}

func (p *Panel) generateBrief(ctx context.Context, text string) {
	if p.generator == nil {
		return
	}

	b, err := p.generator.Generate(ctx, text)
	switch {
	case errors.Is(err, brief.ErrTextTooShort):
		p.logger.Debug("page too short for a brief")
		return
	case err != nil:
		p.logger.Error("generating brief", "error", err)
		return
	}

	p.mu.Lock()
	p.brief = b
	p.mu.Unlock()
}

func (p *Panel) setSelection(text string) {
	p.mu.Lock()
	p.selection = text
	p.mu.Unlock()
}

// Selection returns the most recent selection reported by the host.
func (p *Panel) Selection() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selection
}

// PageInfo returns the active page, if known.
func (p *Panel) PageInfo() (host.PageInfo, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.info == nil {
		return host.PageInfo{}, false
	}
	return *p.info, true
}

// Brief returns the brief of the active page, or nil.
func (p *Panel) Brief() *brief.Brief {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.brief
}

// Store returns the notebook store the panel mutates.
func (p *Panel) Store() *notebook.Store {
	return p.store
}

// Close unsubscribes from selection changes. It is safe to call more than once.
func (p *Panel) Close() error {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	return nil
}

func (p *Panel) pageContext() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pageText
}

// Ask answers question from the page context.
func (p *Panel) Ask(ctx context.Context, question string) (string, error) {
	if p.chatter == nil {
		return "", ErrNoAssistant
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is required")
	}

	return p.chatter.Ask(ctx, question, p.pageContext())
}

// AskStream is Ask with the answer passed to onDelta as it arrives. A
// Chatter that cannot stream delivers its answer as a single delta.
func (p *Panel) AskStream(ctx context.Context, question string, onDelta func(string)) (string, error) {
	sc, ok := p.chatter.(brief.StreamChatter)
	if !ok {
		answer, err := p.Ask(ctx, question)
		if err == nil && onDelta != nil {
			onDelta(answer)
		}
		return answer, err
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is required")
	}

	return sc.AskStream(ctx, question, p.pageContext(), onDelta)
}
