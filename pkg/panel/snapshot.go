package panel

import (
	"github.com/papercomputeco/verso/pkg/brief"
	"github.com/papercomputeco/verso/pkg/host"
	"github.com/papercomputeco/verso/pkg/notebook"
)

// Snapshot is a point-in-time view of the panel.
type Snapshot struct {
	Page      *host.PageInfo          `json:"page"`
	Brief     *brief.Brief            `json:"brief"`
	Selection string                  `json:"selection"`
	Notebook  []notebook.EvidenceItem `json:"notebook"`

	// Dirty is true when notebook changes have not reached durable storage.
	Dirty bool `json:"dirty"`
}

// Snapshot returns the current panel state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.RLock()
	s := Snapshot{
		Brief:     p.brief,
		Selection: p.selection,
	}
	if p.info != nil {
		info := *p.info
		s.Page = &info
	}
	p.mu.RUnlock()

	s.Notebook = p.store.Items()
	s.Dirty = p.store.Dirty()
	return s
}
