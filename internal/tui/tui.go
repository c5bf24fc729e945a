// Package tui is the interactive view over the todo backend.
//
// It is a plain Elm-architecture model: two input cells (the active filter
// and the new-title text box), one derived snapshot (the last fetched
// list), and commands for the four REST calls. Everything runs on the
// Bubble Tea event loop, so the only ordering discipline needed is the
// fetch sequence number below.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoc/internal/api"
	"github.com/idilsaglam/todoc/internal/config"
	"github.com/idilsaglam/todoc/internal/model"
	"github.com/idilsaglam/todoc/internal/store/snapshot"
)

// Config wires the view to the outside world.
type Config struct {
	Backend      string // empty: show the configuration form
	Token        string
	Logger       *log.Logger
	SnapshotPath string // empty: no cache writes

	// NewClient lets tests inject a client factory. Defaults to api.New
	// with the token and logger above.
	NewClient func(base string) (*api.Client, error)
}

type mutationOp int

const (
	opCreate mutationOp = iota
	opToggle
	opDelete
)

// fetchedMsg carries a list response together with the sequence number of
// the request that produced it.
type fetchedMsg struct {
	seq   int
	items []model.Item
	err   error
}

// mutatedMsg reports the outcome of one write call.
type mutatedMsg struct {
	op    mutationOp
	title string
	err   error
}

// listItem adapts model.Item to bubbles/list.Item.
type listItem struct {
	Text string
	Done bool
}

func (i listItem) Title() string       { return i.Text }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.Text }

// Model is the Bubble Tea model for the todo view.
type Model struct {
	cfg    Config
	client *api.Client

	// view-state cells
	filter model.DoneFilter
	input  textinput.Model

	// derived snapshot
	items  []model.Item
	list   list.Model
	loaded bool // at least one fetch has been applied

	// fetch lifecycle; seq is compared against the response's seq so a
	// stale result for an old filter can never overwrite a newer one
	loading  bool
	fetchSeq int

	// inline add
	adding bool
	addErr string

	// fatal error state: replaces the whole interactive region
	fatal error

	// configuration gate
	configuring bool
	backendIn   textinput.Model
	configErr   string

	width, height int
}

// New builds the model. With an empty backend the configuration form is
// shown first; everything else waits until a URL is entered.
func New(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.NewClient == nil {
		token, logger := cfg.Token, cfg.Logger
		cfg.NewClient = func(base string) (*api.Client, error) {
			return api.New(base, api.WithToken(token), api.WithLogger(logger))
		}
	}

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	filterBind := key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter"))
	refetchBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	extra := func() []key.Binding { return []key.Binding{addBind, filterBind, refetchBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New item title..."
	ti.CharLimit = 200

	bi := textinput.New()
	bi.Prompt = "> "
	bi.Placeholder = "http://localhost:8000"
	bi.CharLimit = 500

	m := Model{
		cfg:       cfg,
		list:      l,
		input:     ti,
		backendIn: bi,
		width:     80,
		height:    24,
	}
	m.list.Title = m.headerTitle()

	if cfg.Backend == "" {
		m.configuring = true
		m.backendIn.Focus()
		return m
	}
	if err := m.connect(cfg.Backend); err != nil {
		m.configuring = true
		m.configErr = err.Error()
		m.backendIn.SetValue(cfg.Backend)
		m.backendIn.Focus()
		return m
	}
	m.loading = true // Init issues the first fetch
	return m
}

// connect builds the API client for a backend URL.
func (m *Model) connect(backend string) error {
	c, err := m.cfg.NewClient(backend)
	if err != nil {
		return err
	}
	m.client = c
	return nil
}

// Init starts the initial fetch unless the configuration form is up.
// Bubble Tea keeps the model passed to NewProgram, not one mutated here,
// so the initial request runs under the sequence number New left in place.
func (m Model) Init() tea.Cmd {
	if m.configuring {
		return textinput.Blink
	}
	return m.fetchCmd()
}

// fetchCmd issues one list request for the current filter, tagged with
// the current sequence number.
func (m Model) fetchCmd() tea.Cmd {
	seq, f, c := m.fetchSeq, m.filter, m.client
	return func() tea.Msg {
		items, err := c.List(context.Background(), f)
		return fetchedMsg{seq: seq, items: items, err: err}
	}
}

// startFetch marks the view loading and issues exactly one list request
// under a fresh sequence number. Responses carrying an older sequence are
// dropped on arrival.
func (m *Model) startFetch() tea.Cmd {
	m.fetchSeq++
	m.loading = true
	return m.fetchCmd()
}

func (m Model) createCmd(title string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.Create(context.Background(), model.Item{Title: title, Done: false})
		return mutatedMsg{op: opCreate, title: title, err: err}
	}
}

func (m Model) toggleCmd(title string, done bool) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.SetDone(context.Background(), title, done)
		return mutatedMsg{op: opToggle, title: title, err: err}
	}
}

func (m Model) deleteCmd(title string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.Delete(context.Background(), title)
		return mutatedMsg{op: opDelete, title: title, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case fetchedMsg:
		if msg.seq != m.fetchSeq {
			// Response to a superseded request; a newer filter owns the
			// view now.
			return m, nil
		}
		if msg.err != nil {
			m.fatal = msg.err
			m.loading = false
			return m, nil
		}
		m.applyFetch(msg.items)
		return m, nil

	case mutatedMsg:
		if msg.err != nil {
			// The new-title input deliberately keeps its text so nothing
			// typed is lost; only a success clears it.
			m.fatal = msg.err
			return m, nil
		}
		if msg.op == opCreate {
			m.input.SetValue("")
			m.input.Blur()
			m.adding = false
			m.addErr = ""
		}
		cmd := m.startFetch()
		return m, cmd
	}

	if m.fatal != nil {
		return m.updateFatal(msg)
	}
	if m.configuring {
		return m.updateConfigForm(msg)
	}
	if m.adding {
		return m.updateAdding(msg)
	}
	return m.updateList(msg)
}

// applyFetch replaces the displayed snapshot with a fresh result.
func (m *Model) applyFetch(items []model.Item) {
	m.items = items
	m.loading = false
	m.loaded = true

	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{Text: it.Title, Done: it.Done})
	}
	m.list.SetItems(li)
	m.list.Title = m.headerTitle()

	if m.cfg.SnapshotPath != "" && m.filter == model.FilterAll {
		// Cache is best-effort; a write failure must not disturb the view.
		if err := snapshot.Save(m.cfg.SnapshotPath, m.client.BaseURL(), items); err != nil {
			m.cfg.Logger.Warn("snapshot save failed", "err", err)
		}
	}
}

func (m Model) headerTitle() string {
	var done, pending int
	for _, it := range m.items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return fmt.Sprintf("%s   %s %d  %s %d  %s %s",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("view"), m.filter.String(),
	)
}

// updateFatal: the error state is terminal; only quitting is left.
func (m Model) updateFatal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) updateConfigForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch x := msg.(type) {
	case tea.KeyMsg:
		switch x.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter", "ctrl+s":
			backend := m.backendIn.Value()
			if backend == "" {
				m.configErr = "Backend URL is required"
				return m, nil
			}
			if err := m.connect(backend); err != nil {
				m.configErr = err.Error()
				return m, nil
			}
			if x.String() == "ctrl+s" {
				m.persistBackend(backend)
			}
			m.configuring = false
			m.configErr = ""
			m.backendIn.Blur()
			cmd := m.startFetch()
			return m, cmd
		}
	}
	m.backendIn, cmd = m.backendIn.Update(msg)
	return m, cmd
}

// persistBackend saves the entered URL as the new default, best-effort.
func (m *Model) persistBackend(backend string) {
	cfg, err := config.Load()
	if err != nil {
		m.cfg.Logger.Warn("load config", "err", err)
		return
	}
	cfg.Backend = backend
	if err := cfg.Save(); err != nil {
		m.cfg.Logger.Warn("save config", "err", err)
	}
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch x := msg.(type) {
	case tea.KeyMsg:
		switch x.String() {
		case "enter":
			title := trimTitle(m.input.Value())
			if title == "" {
				m.addErr = "Title cannot be empty"
				return m, nil
			}
			m.addErr = ""
			// Input keeps its value until the backend confirms.
			return m, m.createCmd(title)
		case "esc":
			m.adding = false
			m.input.SetValue("")
			m.input.Blur()
			m.addErr = ""
			return m, nil
		}
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch k.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case " ":
			if it, ok := m.list.SelectedItem().(listItem); ok {
				return m, m.toggleCmd(it.Text, !it.Done)
			}
			return m, nil

		case "d":
			if it, ok := m.list.SelectedItem().(listItem); ok {
				return m, m.deleteCmd(it.Text)
			}
			return m, nil

		case "a":
			m.adding = true
			m.input.SetValue("")
			m.input.Focus()
			return m, textinput.Blink

		case "f", "tab":
			m.filter = m.filter.Next()
			cmd := m.startFetch()
			return m, cmd

		case "r":
			cmd := m.startFetch()
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Filter reports the active filter (tests).
func (m Model) Filter() model.DoneFilter { return m.filter }

// Items reports the displayed snapshot (tests).
func (m Model) Items() []model.Item { return m.items }

// InputValue reports the new-title text box content (tests).
func (m Model) InputValue() string { return m.input.Value() }

// Err reports the fatal error, if the view has failed (tests).
func (m Model) Err() error { return m.fatal }

// Run starts the interactive program and blocks until it quits.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
