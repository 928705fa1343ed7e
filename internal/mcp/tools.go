package mcp

import (
	"context"
	"fmt"
	"log"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/cyclewm/internal/ipc"
)

const maxCycleSteps = 32

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, fmt.Errorf("get status: %w", err)
	}
	return nil, GetStatusOutput{
		WindowCount:    status.WindowCount,
		FocusedWindow:  status.FocusedWindow,
		CursorMode:     status.CursorMode,
		Cycling:        status.Cycling,
		KeyboardLayout: status.KeyboardLayout,
		UptimeSeconds:  status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	if args.Limit < 0 {
		return nil, ListWindowsOutput{}, fmt.Errorf("limit must be >= 0")
	}
	windows, err := s.daemon.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, fmt.Errorf("list windows: %w", err)
	}
	if args.Limit > 0 && len(windows) > args.Limit {
		windows = windows[:args.Limit]
	}

	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(windows))}
	for _, w := range windows {
		out.Windows = append(out.Windows, toWindowInfo(w))
	}
	return nil, out, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, FocusWindowOutput, error) {
	id := args.WindowID
	title := ""
	if id == 0 {
		if strings.TrimSpace(args.Title) == "" {
			return nil, FocusWindowOutput{}, fmt.Errorf("window_id or title is required")
		}
		windows, err := s.daemon.ListWindows()
		if err != nil {
			return nil, FocusWindowOutput{}, fmt.Errorf("list windows: %w", err)
		}
		match, err := matchTitle(windows, args.Title)
		if err != nil {
			return nil, FocusWindowOutput{}, err
		}
		id, title = match.ID, match.Title
	}

	if err := s.daemon.FocusWindow(id); err != nil {
		return nil, FocusWindowOutput{}, fmt.Errorf("focus window %d: %w", id, err)
	}
	log.Printf("MCP: focused window %d", id)
	return nil, FocusWindowOutput{WindowID: id, Title: title}, nil
}

func (s *Server) handleCycleWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args CycleWindowsInput) (*mcpsdk.CallToolResult, CycleWindowsOutput, error) {
	steps := args.Steps
	if steps == 0 {
		steps = 1
	}
	if steps < 0 || steps > maxCycleSteps {
		return nil, CycleWindowsOutput{}, fmt.Errorf("steps must be between 1 and %d", maxCycleSteps)
	}

	var focused uint32
	for i := 0; i < steps; i++ {
		id, err := s.daemon.Cycle()
		if err != nil {
			return nil, CycleWindowsOutput{}, fmt.Errorf("cycle: %w", err)
		}
		focused = id
	}
	return nil, CycleWindowsOutput{FocusedWindow: focused}, nil
}

// matchTitle picks the single window whose title contains needle. An exact
// (case-insensitive) title match wins over substring matches.
func matchTitle(windows []ipc.WindowData, needle string) (ipc.WindowData, error) {
	needle = strings.ToLower(strings.TrimSpace(needle))
	var matches []ipc.WindowData
	for _, w := range windows {
		title := strings.ToLower(w.Title)
		if title == needle {
			return w, nil
		}
		if strings.Contains(title, needle) {
			matches = append(matches, w)
		}
	}
	switch len(matches) {
	case 0:
		return ipc.WindowData{}, fmt.Errorf("no window title matches %q", needle)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, fmt.Sprintf("%d (%s)", m.ID, m.Title))
		}
		return ipc.WindowData{}, fmt.Errorf("title %q is ambiguous: %s", needle, strings.Join(ids, ", "))
	}
}

func toWindowInfo(w ipc.WindowData) WindowInfo {
	return WindowInfo{
		ID:        w.ID,
		Title:     w.Title,
		X:         w.X,
		Y:         w.Y,
		Width:     w.Width,
		Height:    w.Height,
		Focused:   w.Focused,
		Maximized: w.Maximized,
	}
}
