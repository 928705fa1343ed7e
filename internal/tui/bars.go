package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/cyclewm/internal/ipc"
)

func renderStatusBar(status *ipc.StatusData, lastErr, notice string, width int) string {
	var parts []string
	switch {
	case lastErr != "":
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("●")
		parts = append(parts, dot+" "+lastErr)
	case status == nil:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("●")
		parts = append(parts, dot+" connecting...")
	default:
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("●")
		parts = append(parts,
			dot+" cyclewm",
			fmt.Sprintf("windows:%d", status.WindowCount),
			"cursor:"+status.CursorMode,
		)
		if status.Cycling {
			parts = append(parts, "cycling")
		}
		if status.KeyboardLayout != "" {
			parts = append(parts, "layout:"+status.KeyboardLayout)
		}
		if notice != "" {
			parts = append(parts, notice)
		}
	}

	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(strings.Join(parts, "  "))
}

func renderHelpBar(width int) string {
	help := "enter: focus  c/tab: cycle  r: refresh  /: filter  q/esc: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
