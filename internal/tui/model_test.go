package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/cyclewm/internal/ipc"
)

type fakeDaemon struct {
	windows  []ipc.WindowData
	focused  uint32
	cycles   int
	listErr  error
	focusErr error
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	return &ipc.StatusData{WindowCount: len(f.windows), FocusedWindow: f.focused, CursorMode: "passthrough", DaemonRunning: true}, nil
}

func (f *fakeDaemon) ListWindows() ([]ipc.WindowData, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.windows, nil
}

func (f *fakeDaemon) FocusWindow(id uint32) error {
	if f.focusErr != nil {
		return f.focusErr
	}
	f.focused = id
	return nil
}

func (f *fakeDaemon) Cycle() (uint32, error) {
	f.cycles++
	if len(f.windows) > 1 {
		f.focused = f.windows[1].ID
	}
	return f.focused, nil
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T, want model", next)
	}
	return nm, cmd
}

func loadedModel(t *testing.T, d *fakeDaemon, opts Options) model {
	t.Helper()
	m := newModel(d, opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = update(t, m, m.refresh())
	return m
}

func TestModel_RefreshListsWindows(t *testing.T) {
	d := &fakeDaemon{
		windows: []ipc.WindowData{
			{ID: 0x400003, Title: "editor", Width: 640, Height: 480, Focused: true},
			{ID: 0x600001, Title: "shell", Width: 800, Height: 600},
		},
		focused: 0x400003,
	}
	m := loadedModel(t, d, Options{})

	if got := len(m.list.Items()); got != 2 {
		t.Fatalf("items = %d, want 2", got)
	}
	view := m.View()
	for _, want := range []string{"editor", "shell", "windows:2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_FocusAndCycle(t *testing.T) {
	d := &fakeDaemon{
		windows: []ipc.WindowData{{ID: 3, Title: "a", Focused: true}, {ID: 1, Title: "b"}},
		focused: 3,
	}
	m := loadedModel(t, d, Options{})

	m.list.Select(1)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter returned no command")
	}
	msg := cmd()
	if d.focused != 1 {
		t.Fatalf("focused = %d, want 1", d.focused)
	}
	m, cmd = update(t, m, msg)
	if cmd == nil {
		t.Fatalf("focus result did not trigger a refresh")
	}
	if _, ok := cmd().(refreshMsg); !ok {
		t.Fatalf("focus result command did not refresh")
	}

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if cmd == nil {
		t.Fatalf("c returned no command")
	}
	if res, ok := cmd().(actionMsg); !ok || res.action != "cycle" || d.cycles != 1 {
		t.Fatalf("cycle result = %#v, cycles = %d", res, d.cycles)
	}
}

func TestModel_CloseOnFocus(t *testing.T) {
	d := &fakeDaemon{windows: []ipc.WindowData{{ID: 7, Title: "only"}}}
	m := loadedModel(t, d, Options{CloseOnFocus: true})

	_, cmd := update(t, m, actionMsg{action: "focus", window: 7})
	if cmd == nil {
		t.Fatalf("no command after focus")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("focus with CloseOnFocus did not quit")
	}
}

func TestModel_Errors(t *testing.T) {
	d := &fakeDaemon{listErr: errors.New("cyclewm is not running")}
	m := loadedModel(t, d, Options{})

	if m.lastErr == "" || len(m.list.Items()) != 0 {
		t.Fatalf("lastErr = %q, items = %d", m.lastErr, len(m.list.Items()))
	}
	if !strings.Contains(m.View(), "not running") {
		t.Fatalf("view does not show the error:\n%s", m.View())
	}

	m, _ = update(t, m, actionMsg{action: "focus", window: 9, err: errors.New("window 9 is not mapped")})
	if !strings.Contains(m.lastErr, "focus failed") {
		t.Fatalf("lastErr = %q, want focus failed", m.lastErr)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newModel(&fakeDaemon{}, Options{})
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := update(t, m, key)
		if cmd == nil {
			t.Fatalf("%s returned no command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s did not quit", key)
		}
	}
}
