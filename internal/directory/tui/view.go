package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	e "github.com/gartstein/companydir/internal/directory/errors"
	"github.com/gartstein/companydir/internal/directory/filter"
)

// Colors.
var (
	ColorTitle    = lipgloss.Color("63")
	ColorMuted    = lipgloss.Color("241")
	ColorLabel    = lipgloss.Color("245")
	ColorValue    = lipgloss.Color("252")
	ColorError    = lipgloss.Color("196")
	ColorSelected = lipgloss.Color("57")
)

// Styles.
var (
	TitleStyle    = lipgloss.NewStyle().Foreground(ColorTitle).Bold(true).MarginBottom(1)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	DisabledStyle = lipgloss.NewStyle().Foreground(ColorMuted).Faint(true)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	SpinnerStyle  = lipgloss.NewStyle().Foreground(ColorTitle)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Padding(0, 1).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(ColorMuted)
	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(ColorSelected)
)

// tableChromeHeight is the number of lines the table header takes.
const tableChromeHeight = 2

const title = "Companies Directory"

func newCompanyTable() table.Model {
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Industry", Width: 16},
		{Title: "Location", Width: 16},
		{Title: "Employees", Width: 10},
		{Title: "Founded", Width: 8},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(tableChromeHeight),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	return t
}

// View renders the current screen.
func (m *Model) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return fmt.Sprintf("%s\n %s Loading companies...\n\n%s\n",
			TitleStyle.Render(title), m.spinner.View(), MutedStyle.Render("q quit"))
	case ViewStateFailed:
		return fmt.Sprintf("%s\n%s\n\n%s\n",
			TitleStyle.Render(title), ErrorStyle.Render(e.Message(m.err)), MutedStyle.Render("r reload • q quit"))
	case ViewStateReady:
		return m.renderDirectory()
	default:
		return ""
	}
}

func (m *Model) renderDirectory() string {
	var b strings.Builder
	q := m.view.Query
	page := m.view.Page

	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(strings.Join([]string{
		field("Location", selectionLabel(q.Filter.Location)),
		field("Industry", selectionLabel(q.Filter.Industry)),
		field("Sort", q.Sort.Label()),
		field("Size", fmt.Sprintf("%d / page", page.Size)),
	}, "  "))
	b.WriteString("\n\n")

	b.WriteString(LabelStyle.Render(fmt.Sprintf("Showing %d companies", page.Total)))
	b.WriteString("\n")
	if page.Empty() {
		b.WriteString(MutedStyle.Render("No companies match your filters."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(strings.Join([]string{
		pagerItem("« First", page.HasPrev()),
		pagerItem("‹ Prev", page.HasPrev()),
		ValueStyle.Render(fmt.Sprintf("Page %d of %d", page.Page, page.TotalPages)),
		pagerItem("Next ›", page.HasNext()),
		pagerItem("Last »", page.HasNext()),
	}, "  "))
	b.WriteString("  ")
	b.WriteString(MutedStyle.Render(page.Range()))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(ErrorStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render("/ search • L location • I industry • s sort • z size • ←/→ page • home/end • r reload • q quit"))
	b.WriteString("\n")

	out := b.String()
	if m.width > 0 {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

func selectionLabel(sel filter.Selection) string {
	if v, ok := sel.Value(); ok {
		return v
	}
	return "All"
}

func field(label, value string) string {
	return LabelStyle.Render(label+": ") + ValueStyle.Render(value)
}

func pagerItem(label string, enabled bool) string {
	if !enabled {
		return DisabledStyle.Render(label)
	}
	return ValueStyle.Render(label)
}
