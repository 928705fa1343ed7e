// Package compositor implements the window-management core: the window
// table, focus and MRU ordering, Alt+Tab cycling, interactive move/resize
// and input routing.
//
// Every handler is a function of (event, state) that mutates the Server and
// returns the Effects the backend has to apply. A Server must only be used
// from a single goroutine; see Queue for handing work to it from elsewhere.
package compositor

import (
	"log/slog"

	"github.com/1broseidon/cyclewm/internal/platform"
	"github.com/1broseidon/cyclewm/internal/registry"
)

const (
	defaultRepeatRate  = 25
	defaultRepeatDelay = 600
)

// Options configures a Server.
type Options struct {
	// HitTester answers point-in-scene queries. Required for pointer focus
	// and click-to-focus; without it the pointer never hits anything.
	HitTester platform.HitTester
	Logger    *slog.Logger

	KeyboardLayout string
	RepeatRate     int
	RepeatDelay    int
}

// Server is the window-management controller. The zero value is not usable;
// construct one with New.
type Server struct {
	hit    platform.HitTester
	logger *slog.Logger

	layout      string
	repeatRate  int
	repeatDelay int

	windows map[platform.WindowID]*window
	// stack is the z-order, head = topmost.
	stack *registry.List[platform.WindowID]
	// mru is the focus registry, head = most recently committed.
	mru *registry.List[platform.WindowID]

	focused     platform.WindowID
	cycleTarget platform.WindowID
	cycleActive bool

	grab    grabState
	cursorX float64
	cursorY float64

	keyboards    map[platform.DeviceID]*keyboard
	pointers     map[platform.DeviceID]struct{}
	seatKeyboard platform.DeviceID
	caps         platform.Capabilities

	pointerFocus    platform.Hit
	hasPointerFocus bool

	terminated bool
}

// New creates an empty Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rate := opts.RepeatRate
	if rate <= 0 {
		rate = defaultRepeatRate
	}
	delay := opts.RepeatDelay
	if delay <= 0 {
		delay = defaultRepeatDelay
	}

	return &Server{
		hit:         opts.HitTester,
		logger:      logger,
		layout:      opts.KeyboardLayout,
		repeatRate:  rate,
		repeatDelay: delay,
		windows:     make(map[platform.WindowID]*window),
		stack:       registry.New[platform.WindowID](),
		mru:         registry.New[platform.WindowID](),
		keyboards:   make(map[platform.DeviceID]*keyboard),
		pointers:    make(map[platform.DeviceID]struct{}),
	}
}

// SetHitTester replaces the hit tester. Backends that need the Server
// before their scene exists can wire it late.
func (s *Server) SetHitTester(h platform.HitTester) {
	s.hit = h
}

// SetKeyboardLayout changes the layout applied to keyboards and re-applies it
// to every attached keyboard.
func (s *Server) SetKeyboardLayout(layout string) Effects {
	if layout == s.layout {
		return nil
	}
	s.layout = layout
	var fx Effects
	for _, id := range s.keyboardIDs() {
		kb := s.keyboards[id]
		kb.layout = layout
		fx.add(s.configureKeyboard(id))
	}
	s.logger.Info("keyboard layout changed", "layout", layout, "keyboards", len(s.keyboards))
	return fx
}

// Terminated reports whether a shutdown has been requested.
func (s *Server) Terminated() bool {
	return s.terminated
}

// Terminate requests a graceful shutdown.
func (s *Server) Terminate() Effects {
	s.terminated = true
	s.logger.Info("shutdown requested")
	return Effects{Terminate{}}
}

func (s *Server) hitTest() (platform.Hit, bool) {
	if s.hit == nil {
		return platform.Hit{}, false
	}
	return s.hit.NodeAt(s.cursorX, s.cursorY)
}
