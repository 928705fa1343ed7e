// Package tui is an interactive window switcher backed by the IPC socket.
package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/cyclewm/internal/ipc"
)

// Daemon is the subset of the IPC client the switcher uses.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows() ([]ipc.WindowData, error)
	FocusWindow(id uint32) error
	Cycle() (uint32, error)
}

// Options controls switcher behaviour.
type Options struct {
	// CloseOnFocus exits after a window has been focused with enter.
	CloseOnFocus bool
}

// Run starts the switcher and blocks until the user quits.
func Run(daemon Daemon, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	if daemon == nil {
		daemon = ipc.NewClient()
	}

	p := tea.NewProgram(newModel(daemon, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
