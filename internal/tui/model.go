package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/cyclewm/internal/ipc"
)

const refreshInterval = 2 * time.Second

// windowItem is a list entry for one mapped window.
type windowItem struct {
	win ipc.WindowData
}

func (i windowItem) Title() string {
	title := i.win.Title
	if title == "" {
		title = "(untitled)"
	}
	if i.win.Focused {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●") + " " + title
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("·") + " " + title
}

func (i windowItem) Description() string {
	desc := fmt.Sprintf("0x%x  %dx%d+%d+%d", i.win.ID, i.win.Width, i.win.Height, i.win.X, i.win.Y)
	if i.win.Maximized {
		desc += "  maximized"
	}
	return desc
}

func (i windowItem) FilterValue() string { return i.win.Title }

type refreshMsg struct {
	status  *ipc.StatusData
	windows []ipc.WindowData
	err     error
}

type actionMsg struct {
	action string
	window uint32
	err    error
}

type tickMsg time.Time

// model is the root bubbletea model of the switcher.
type model struct {
	daemon Daemon
	opts   Options

	list    list.Model
	status  *ipc.StatusData
	lastErr string
	notice  string

	width  int
	height int
}

func newModel(daemon Daemon, opts Options) model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	return model{daemon: daemon, opts: opts, list: l}
}

// refresh fetches status and the window list.
func (m model) refresh() tea.Msg {
	status, err := m.daemon.GetStatus()
	if err != nil {
		return refreshMsg{err: err}
	}
	windows, err := m.daemon.ListWindows()
	return refreshMsg{status: status, windows: windows, err: err}
}

func (m model) focus(id uint32) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{action: "focus", window: id, err: m.daemon.FocusWindow(id)}
	}
}

func (m model) cycle() tea.Msg {
	id, err := m.daemon.Cycle()
	return actionMsg{action: "cycle", window: id, err: err}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.refresh, tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, m.listHeight())
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			item, ok := m.list.SelectedItem().(windowItem)
			if !ok {
				return m, nil
			}
			return m, m.focus(item.win.ID)
		case "c", "tab":
			return m, m.cycle
		case "r":
			return m, m.refresh
		}

	case refreshMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
			m.status = nil
			return m, m.list.SetItems(nil)
		}
		m.lastErr = ""
		m.status = msg.status
		items := make([]list.Item, 0, len(msg.windows))
		for _, w := range msg.windows {
			items = append(items, windowItem{w})
		}
		return m, m.list.SetItems(items)

	case actionMsg:
		if msg.err != nil {
			m.lastErr = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			return m, nil
		}
		m.lastErr = ""
		m.notice = fmt.Sprintf("%s: 0x%x", msg.action, msg.window)
		if msg.action == "focus" && m.opts.CloseOnFocus {
			return m, tea.Quit
		}
		return m, m.refresh

	case tickMsg:
		return m, tea.Batch(m.refresh, tick())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// listHeight is the height left after the status and help bars.
func (m model) listHeight() int {
	return max(m.height-2, 1)
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatusBar(m.status, m.lastErr, m.notice, m.width),
		m.list.View(),
		renderHelpBar(m.width),
	)
}
