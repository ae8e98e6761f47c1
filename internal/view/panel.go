package view

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"docinspect/internal/inspector"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	typeStyle  = lipgloss.NewStyle().Faint(true)
	labelStyle = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("244"))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// Panel is the inspector panel: a container holding one header and one details view.
type Panel struct {
	header  *Header
	details *Details
}

var _ inspector.Container = (*Panel)(nil)

// NewPanel returns an empty panel whose details view formats times in loc.
func NewPanel(loc *time.Location) *Panel {
	return &Panel{header: NewHeader(), details: NewDetails(loc)}
}

// FindView returns the child view registered under id, or nil.
func (p *Panel) FindView(id string) any {
	switch id {
	case inspector.HeaderViewID:
		return p.header
	case inspector.DetailsViewID:
		return p.details
	}
	return nil
}

// Header returns the panel's header view.
func (p *Panel) Header() *Header { return p.header }

// Details returns the panel's details view.
func (p *Panel) Details() *Details { return p.details }

// Snapshot is the panel's serialisable form.
type Snapshot struct {
	Header  HeaderState `json:"header"`
	Details []Row       `json:"details"`
}

// Snapshot captures both views. ok is false until the panel has been updated.
func (p *Panel) Snapshot() (s Snapshot, ok bool) {
	h, hok := p.header.State()
	rows, dok := p.details.Rows()
	return Snapshot{Header: h, Details: rows}, hok && dok
}

// MarshalJSON renders the current snapshot.
func (p *Panel) MarshalJSON() ([]byte, error) {
	s, _ := p.Snapshot()
	return json.Marshal(s)
}

// Render draws the panel for a terminal.
func (p *Panel) Render() string {
	s, ok := p.Snapshot()
	if !ok {
		return panelStyle.Render(typeStyle.Render("No document loaded"))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Header.Title))
	b.WriteString("\n")
	b.WriteString(typeStyle.Render(s.Header.TypeLabel))
	b.WriteString("\n")
	for _, r := range s.Details {
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(r.Label), r.Value))
	}
	return panelStyle.Render(b.String())
}
