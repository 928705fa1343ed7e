package compositor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/1broseidon/cyclewm/internal/platform"
)

// WindowInfo describes one window record.
type WindowInfo struct {
	ID        platform.WindowID `json:"id"`
	Box       platform.Rect     `json:"box"`
	Mapped    bool              `json:"mapped"`
	Maximized bool              `json:"maximized"`
	Focused   bool              `json:"focused"`
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	// Windows lists mapped windows in MRU order, followed by unmapped
	// records in handle order.
	Windows      []WindowInfo          `json:"windows"`
	MRU          []platform.WindowID   `json:"mru"`
	Stack        []platform.WindowID   `json:"stack"`
	Focused      platform.WindowID     `json:"focused"`
	CycleTarget  platform.WindowID     `json:"cycle_target,omitempty"`
	CursorMode   string                `json:"cursor_mode"`
	Grabbed      platform.WindowID     `json:"grabbed,omitempty"`
	CursorX      float64               `json:"cursor_x"`
	CursorY      float64               `json:"cursor_y"`
	Keyboards    int                   `json:"keyboards"`
	Pointers     int                   `json:"pointers"`
	Capabilities platform.Capabilities `json:"capabilities"`
	Layout       string                `json:"keyboard_layout,omitempty"`
}

// Mode returns the current cursor mode.
func (s *Server) Mode() CursorMode {
	return s.grab.mode
}

// Grabbed returns the window under an interactive grab, if any.
func (s *Server) Grabbed() platform.WindowID {
	return s.grab.window
}

// Focused returns the keyboard-focused window, if any.
func (s *Server) Focused() platform.WindowID {
	return s.focused
}

// CycleTarget returns the window highlighted by an in-progress cycle.
func (s *Server) CycleTarget() (platform.WindowID, bool) {
	return s.cycleTarget, s.cycleActive
}

// MRU returns the mapped windows, most recently used first.
func (s *Server) MRU() []platform.WindowID {
	return s.mru.Values()
}

// Stack returns the mapped windows, topmost first.
func (s *Server) Stack() []platform.WindowID {
	return s.stack.Values()
}

// Cursor returns the cursor position in layout coordinates.
func (s *Server) Cursor() (x, y float64) {
	return s.cursorX, s.cursorY
}

// IsMapped reports whether id is a mapped window.
func (s *Server) IsMapped(id platform.WindowID) bool {
	_, ok := s.mappedWindow(id)
	return ok
}

// Known reports whether id has a window record.
func (s *Server) Known(id platform.WindowID) bool {
	_, ok := s.lookup(id)
	return ok
}

// Box returns a window's visible geometry in layout coordinates.
func (s *Server) Box(id platform.WindowID) (platform.Rect, bool) {
	w, ok := s.lookup(id)
	if !ok {
		return platform.Rect{}, false
	}
	return w.box(), true
}

// Maximized reports whether id is currently maximized.
func (s *Server) Maximized(id platform.WindowID) bool {
	w, ok := s.lookup(id)
	return ok && w.maximized
}

// Snapshot copies the current state.
func (s *Server) Snapshot() Snapshot {
	snap := Snapshot{
		MRU:          s.mru.Values(),
		Stack:        s.stack.Values(),
		Focused:      s.focused,
		CursorMode:   s.grab.mode.String(),
		Grabbed:      s.grab.window,
		CursorX:      s.cursorX,
		CursorY:      s.cursorY,
		Keyboards:    len(s.keyboards),
		Pointers:     len(s.pointers),
		Capabilities: s.caps,
		Layout:       s.layout,
	}
	if s.cycleActive {
		snap.CycleTarget = s.cycleTarget
	}

	for _, id := range snap.MRU {
		if w, ok := s.windows[id]; ok {
			snap.Windows = append(snap.Windows, s.info(w))
		}
	}
	var unmapped []platform.WindowID
	for id, w := range s.windows {
		if !w.mapped {
			unmapped = append(unmapped, id)
		}
	}
	slices.Sort(unmapped)
	for _, id := range unmapped {
		snap.Windows = append(snap.Windows, s.info(s.windows[id]))
	}
	return snap
}

func (s *Server) info(w *window) WindowInfo {
	return WindowInfo{
		ID:        w.id,
		Box:       w.box(),
		Mapped:    w.mapped,
		Maximized: w.maximized,
		Focused:   w.id == s.focused,
	}
}

// CheckInvariants verifies the cross-references between the window table,
// both registries, focus, cycle and grab state. It returns nil when the state
// is consistent.
func (s *Server) CheckInvariants() error {
	var errs []error

	mapped := make(map[platform.WindowID]bool)
	for id, w := range s.windows {
		if w.mapped {
			mapped[id] = true
		}
	}

	errs = append(errs, checkRegistry("focus registry", s.mru.Values(), mapped)...)
	errs = append(errs, checkRegistry("stacking order", s.stack.Values(), mapped)...)

	if s.grab.mode == CursorPassthrough && s.grab.window != platform.NoWindow {
		errs = append(errs, fmt.Errorf("passthrough grab holds window %d", s.grab.window))
	}
	if s.grab.mode != CursorPassthrough && !mapped[s.grab.window] {
		errs = append(errs, fmt.Errorf("%s grab on unmapped window %d", s.grab.mode, s.grab.window))
	}
	if s.cycleActive && !mapped[s.cycleTarget] {
		errs = append(errs, fmt.Errorf("cycle target %d is not mapped", s.cycleTarget))
	}
	if s.focused != platform.NoWindow && !mapped[s.focused] {
		errs = append(errs, fmt.Errorf("focused window %d is not mapped", s.focused))
	}
	if s.seatKeyboard != 0 {
		if _, ok := s.keyboards[s.seatKeyboard]; !ok {
			errs = append(errs, fmt.Errorf("seat keyboard %d is not attached", s.seatKeyboard))
		}
	}
	return errors.Join(errs...)
}

func checkRegistry(name string, ids []platform.WindowID, mapped map[platform.WindowID]bool) []error {
	var errs []error
	seen := make(map[platform.WindowID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			errs = append(errs, fmt.Errorf("%s: duplicate window %d", name, id))
		}
		seen[id] = true
		if !mapped[id] {
			errs = append(errs, fmt.Errorf("%s: window %d is not mapped", name, id))
		}
	}
	for id := range mapped {
		if !seen[id] {
			errs = append(errs, fmt.Errorf("%s: mapped window %d missing", name, id))
		}
	}
	return errs
}
