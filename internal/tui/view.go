package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoc/internal/ui"
)

var (
	titleStyle    = ui.TitleStyle
	successStyle  = ui.SuccessStyle
	pendingStyle  = ui.PendingStyle
	accentStyle   = ui.AccentStyle
	mutedStyle    = ui.MutedStyle
	errorStyle    = ui.ErrorStyle
	selectedStyle = ui.SelectedStyle
	doneStyle     = ui.DoneStyle
	helpStyle     = ui.HelpStyle

	boxChecked   = "☑"
	boxUnchecked = "☐"
)

func trimTitle(s string) string { return strings.TrimSpace(s) }

// itemDelegate renders one item per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)

	box := mutedStyle.Render(boxUnchecked)
	text := it.Text
	if it.Done {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

func (m Model) View() string {
	if m.configuring {
		return m.viewConfigForm()
	}
	if m.fatal != nil {
		return m.viewFatal()
	}

	listHeight := m.height - 4
	if m.adding {
		listHeight = m.height - 6
	}
	m.list.SetSize(m.width-2, listHeight)

	var content string
	switch {
	case m.loading && !m.loaded:
		content = m.list.Title + "\n\n" + mutedStyle.Render("Loading...")
	case m.loaded && len(m.items) == 0 && !m.loading:
		content = m.list.Title + "\n\n" + mutedStyle.Render("No items. Press a to add one.")
	default:
		content = m.list.View()
	}

	if m.adding {
		title := "Add new item"
		if m.addErr != "" {
			title += "  " + errorStyle.Render(m.addErr)
		}
		content += "\n" + ui.BorderStyle.Render(title+"\n"+m.input.View())
	}
	return ui.BorderStyle.Render(content)
}

// viewFatal replaces the whole interactive region. There is no retry
// affordance; restarting the program is the way back.
func (m Model) viewFatal() string {
	lines := []string{
		errorStyle.Render("Error loading data"),
		"",
		mutedStyle.Render(m.fatal.Error()),
		"",
		helpStyle.Render("q quit · restart todoc to try again"),
	}
	return ui.BorderStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewConfigForm() string {
	lines := []string{
		titleStyle.Render("Configure backend"),
		"",
		"No backend URL is configured. Enter the base URL of a running",
		"todo backend to connect to.",
		"",
		m.backendIn.View(),
	}
	if m.configErr != "" {
		lines = append(lines, "", errorStyle.Render(m.configErr))
	}
	lines = append(lines, "",
		helpStyle.Render("enter use once · ctrl+s save as default · esc quit"))
	return ui.BorderStyle.Render(strings.Join(lines, "\n"))
}
