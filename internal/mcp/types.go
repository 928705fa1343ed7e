package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	WindowCount    int    `json:"window_count"`
	FocusedWindow  uint32 `json:"focused_window,omitempty"`
	CursorMode     string `json:"cursor_mode"`
	Cycling        bool   `json:"cycling"`
	KeyboardLayout string `json:"keyboard_layout,omitempty"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of windows to return, most recently used first (default: all)"`
}

// WindowInfo describes a single mapped window.
type WindowInfo struct {
	ID        uint32 `json:"id"`
	Title     string `json:"title,omitempty"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Focused   bool   `json:"focused"`
	Maximized bool   `json:"maximized"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
}

// FocusWindowInput is the input for the focus_window tool.
type FocusWindowInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"X11 window ID to focus, as reported by list_windows"`
	Title    string `json:"title,omitempty" jsonschema:"Case-insensitive title substring; used when window_id is not set"`
}

// FocusWindowOutput is the output for the focus_window tool.
type FocusWindowOutput struct {
	WindowID uint32 `json:"window_id"`
	Title    string `json:"title,omitempty"`
}

// CycleWindowsInput is the input for the cycle_windows tool.
type CycleWindowsInput struct {
	Steps int `json:"steps,omitempty" jsonschema:"How many windows to advance in MRU order (default: 1)"`
}

// CycleWindowsOutput is the output for the cycle_windows tool.
type CycleWindowsOutput struct {
	FocusedWindow uint32 `json:"focused_window,omitempty"`
}
