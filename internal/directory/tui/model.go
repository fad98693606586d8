// Package tui is the terminal front end of the directory: a Bubble Tea model
// that drives a controller.Session and renders the current page as a table.
package tui

import (
	"context"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gartstein/companydir/internal/directory/controller"
	"github.com/gartstein/companydir/internal/directory/filter"
	"github.com/gartstein/companydir/internal/directory/pagination"
	"github.com/gartstein/companydir/internal/directory/sorting"
)

// Key bindings.
const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyReload   = "r"
	keySearch   = "/"
	keyLocation = "L"
	keyIndustry = "I"
	keySort     = "s"
	keySize     = "z"
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyPrev     = "left"
	keyNext     = "right"
	keyFirst    = "home"
	keyLast     = "end"
)

const searchCharLimit = 64

// ViewState is the screen the model currently shows.
type ViewState int

const (
	ViewStateLoading ViewState = iota
	ViewStateReady
	ViewStateFailed
	ViewStateQuitting
)

// Loader is the directory as seen by the terminal UI. *controller.Directory
// implements it.
type Loader interface {
	controller.Querier
	Load(ctx context.Context) error
	Wait(ctx context.Context) error
}

// loadedMsg reports the end of a load started by the model.
type loadedMsg struct {
	err error
}

// Model is the Bubble Tea model of the directory screen.
type Model struct {
	ctx     context.Context
	dir     Loader
	session *controller.Session

	state ViewState
	err   error
	view  controller.View
	// notice holds the last rejected change, shown until the next one.
	notice string

	search    textinput.Model
	searching bool
	table     table.Model
	spinner   spinner.Model
	width     int
}

// New builds a model over dir. Nothing is fetched until Init.
func New(ctx context.Context, dir Loader) *Model {
	ti := textinput.New()
	ti.Placeholder = "Search companies..."
	ti.CharLimit = searchCharLimit
	ti.Prompt = "Search: "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	return &Model{
		ctx:     ctx,
		dir:     dir,
		session: controller.NewSession(dir),
		state:   ViewStateLoading,
		search:  ti,
		table:   newCompanyTable(),
		spinner: sp,
	}
}

// Init starts the first load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// load switches to the loading screen and returns the command that runs
// the fetch to completion.
func (m *Model) load() tea.Cmd {
	m.state = ViewStateLoading
	m.err = nil
	ctx, dir := m.ctx, m.dir
	return func() tea.Msg {
		if err := dir.Load(ctx); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{err: dir.Wait(ctx)}
	}
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case loadedMsg:
		return m.handleLoaded(msg)
	case spinner.TickMsg:
		if m.state != ViewStateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = ViewStateFailed
		m.err = msg.err
		return m, nil
	}
	m.state = ViewStateReady
	m.apply(m.session.View())
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyCtrlC {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}
	if m.searching {
		return m.handleSearchInput(msg)
	}

	switch m.state {
	case ViewStateLoading:
		if msg.String() == keyQuit {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		return m, nil
	case ViewStateFailed:
		switch msg.String() {
		case keyQuit:
			m.state = ViewStateQuitting
			return m, tea.Quit
		case keyReload:
			return m, tea.Batch(m.spinner.Tick, m.load())
		}
		return m, nil
	case ViewStateReady:
		return m.handleReadyKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter, keyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.apply(m.session.SetSearch(m.search.Value()))
	}
	return m, cmd
}

func (m *Model) handleReadyKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	q := m.session.Query()
	opts := m.view.Options

	switch msg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyReload:
		return m, tea.Batch(m.spinner.Tick, m.load())
	case keySearch:
		m.searching = true
		return m, m.search.Focus()
	case keyLocation:
		m.apply(m.session.SetLocation(nextSelection(q.Filter.Location, opts.Locations)))
	case keyIndustry:
		m.apply(m.session.SetIndustry(nextSelection(q.Filter.Industry, opts.Industries)))
	case keySort:
		m.apply(m.session.SetSort(nextMode(q.Sort)))
	case keySize:
		m.apply(m.session.SetPageSize(nextSize(q.Page.Size)))
	case keyFirst:
		m.apply(m.session.First())
	case keyPrev:
		m.apply(m.session.Prev())
	case keyNext:
		m.apply(m.session.Next())
	case keyLast:
		m.apply(m.session.Last())
	default:
		// Row movement within the page.
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

// apply stores a freshly derived view, or records why it was rejected.
func (m *Model) apply(view controller.View, err error) {
	if err != nil {
		m.notice = err.Error()
		return
	}
	m.notice = ""
	m.view = view
	m.table.SetRows(companyRows(view))
	m.table.SetHeight(view.Page.Size + tableChromeHeight)
	m.table.SetCursor(0)
}

// nextSelection cycles Any → each value in order → Any.
func nextSelection(current filter.Selection, values []string) filter.Selection {
	v, ok := current.Value()
	if !ok {
		if len(values) == 0 {
			return filter.Any()
		}
		return filter.Exactly(values[0])
	}
	i := slices.Index(values, v)
	if i < 0 || i == len(values)-1 {
		return filter.Any()
	}
	return filter.Exactly(values[i+1])
}

func nextMode(current sorting.Mode) sorting.Mode {
	i := slices.Index(sorting.Modes, current)
	return sorting.Modes[(i+1)%len(sorting.Modes)]
}

func nextSize(current int) int {
	i := slices.Index(pagination.Sizes, current)
	return pagination.Sizes[(i+1)%len(pagination.Sizes)]
}

func companyRows(view controller.View) []table.Row {
	rows := make([]table.Row, len(view.Page.Items))
	for i, c := range view.Page.Items {
		rows[i] = table.Row{c.Name, c.Industry, c.Location, strconv.Itoa(c.Employees), strconv.Itoa(c.Founded)}
	}
	return rows
}

// State returns the screen currently shown.
func (m *Model) State() ViewState {
	return m.state
}

// Err returns the last load error.
func (m *Model) Err() error {
	return m.err
}
