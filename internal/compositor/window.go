package compositor

import "github.com/1broseidon/cyclewm/internal/platform"

// window is the per-toplevel record. It lives from OnCreate (or the first
// OnMap) until OnDestroy; mapped tracks registry membership.
type window struct {
	id platform.WindowID

	// x, y is the scene node position in layout coordinates.
	x, y int
	// geometry is the client's window geometry relative to its node: X and
	// Y are the offset of the visible box inside the surface.
	geometry platform.Rect

	mapped      bool
	initialized bool
	maximized   bool

	restore    platform.Rect
	hasRestore bool
}

// box returns the visible geometry in layout coordinates.
func (w *window) box() platform.Rect {
	return platform.Rect{
		X:      w.x + w.geometry.X,
		Y:      w.y + w.geometry.Y,
		Width:  w.geometry.Width,
		Height: w.geometry.Height,
	}
}

// Commit describes a surface commit on a toplevel.
type Commit struct {
	// Initial is set for the first commit of a toplevel, before it has
	// been configured.
	Initial bool
	// Geometry is the window geometry relative to the scene node.
	Geometry platform.Rect
}

func (s *Server) lookup(id platform.WindowID) (*window, bool) {
	if id == platform.NoWindow {
		return nil, false
	}
	w, ok := s.windows[id]
	return w, ok
}

func (s *Server) mappedWindow(id platform.WindowID) (*window, bool) {
	w, ok := s.lookup(id)
	if !ok || !w.mapped {
		return nil, false
	}
	return w, true
}

// OnCreate records a new toplevel. It is not inserted into any registry until
// it maps.
func (s *Server) OnCreate(id platform.WindowID) Effects {
	if id == platform.NoWindow {
		s.logger.Warn("create: ignoring zero window handle")
		return nil
	}
	if _, ok := s.windows[id]; ok {
		s.logger.Debug("create: window already known", "window", id)
		return nil
	}
	s.windows[id] = &window{id: id}
	return nil
}

// OnCommit handles a surface commit. The initial commit is answered with a
// 0x0 size so the client chooses its own dimensions.
func (s *Server) OnCommit(id platform.WindowID, c Commit) Effects {
	w, ok := s.lookup(id)
	if !ok {
		s.logger.Debug("commit: unknown window", "window", id)
		return nil
	}
	w.geometry = c.Geometry
	if !c.Initial {
		return nil
	}
	w.initialized = true
	return Effects{RequestSize{Window: id}}
}

// OnMap inserts the window at the head of both registries and focuses it.
// initial is the window's layout box when it appears; its origin becomes the
// node position. Unknown handles are created on the fly.
func (s *Server) OnMap(id platform.WindowID, initial platform.Rect) Effects {
	if id == platform.NoWindow {
		s.logger.Warn("map: ignoring zero window handle")
		return nil
	}
	w, ok := s.windows[id]
	if !ok {
		w = &window{id: id}
		s.windows[id] = w
	}
	if w.mapped {
		s.logger.Debug("map: window already mapped", "window", id)
		return nil
	}

	w.mapped = true
	w.x, w.y = initial.X, initial.Y
	if w.geometry.Empty() {
		w.geometry = platform.Rect{Width: initial.Width, Height: initial.Height}
	}
	s.stack.PushFront(id)
	s.mru.PushFront(id)
	s.logger.Debug("window mapped", "window", id, "windows", s.mru.Len())

	var fx Effects
	s.focus(id, &fx)
	return fx
}

// OnUnmap removes the window from both registries. Any grab, cycle cursor,
// keyboard focus or pointer focus referring to it is dropped first.
func (s *Server) OnUnmap(id platform.WindowID) Effects {
	w, ok := s.mappedWindow(id)
	if !ok {
		s.logger.Debug("unmap: window not mapped", "window", id)
		return nil
	}

	var fx Effects
	if s.grab.window == id {
		s.resetGrab()
	}
	if s.cycleActive && s.cycleTarget == id {
		s.clearCycle()
	}
	if s.focused == id {
		s.focused = platform.NoWindow
		fx.add(KeyboardClearFocus{})
	}
	if s.hasPointerFocus && s.pointerFocus.Window == id {
		s.pointerFocus = platform.Hit{}
		s.hasPointerFocus = false
		fx.add(PointerClearFocus{})
	}

	w.mapped = false
	if !s.mru.Remove(id) {
		s.logger.Warn("unmap: window missing from focus registry", "window", id)
	}
	if !s.stack.Remove(id) {
		s.logger.Warn("unmap: window missing from stacking order", "window", id)
	}
	s.logger.Debug("window unmapped", "window", id, "windows", s.mru.Len())
	return fx
}

// OnDestroy frees the window record, unmapping it first if needed.
func (s *Server) OnDestroy(id platform.WindowID) Effects {
	w, ok := s.lookup(id)
	if !ok {
		s.logger.Debug("destroy: unknown window", "window", id)
		return nil
	}
	var fx Effects
	if w.mapped {
		fx = s.OnUnmap(id)
	}
	delete(s.windows, id)
	return fx
}

// OnGeometryRequest forwards a client size request. 0x0 passes through as the
// "client decides" hint; other non-positive dimensions are clamped to 1.
func (s *Server) OnGeometryRequest(id platform.WindowID, width, height int) Effects {
	if _, ok := s.lookup(id); !ok {
		s.logger.Debug("geometry request: unknown window", "window", id)
		return nil
	}
	if width != 0 || height != 0 {
		width = max(width, 1)
		height = max(height, 1)
	}
	return Effects{RequestSize{Window: id, Width: width, Height: height}}
}

// OnRequestMaximize toggles maximization within output. Maximizing snapshots
// the current geometry and fills output; restoring re-applies the snapshot
// size (half the output without one) centred in output.
func (s *Server) OnRequestMaximize(id platform.WindowID, output platform.Rect) Effects {
	w, ok := s.lookup(id)
	if !ok {
		s.logger.Debug("maximize: unknown window", "window", id)
		return nil
	}
	if !w.initialized {
		s.logger.Debug("maximize: window not initialized", "window", id)
		return nil
	}
	if output.Empty() {
		s.logger.Warn("maximize: output has no usable resolution", "window", id,
			"width", output.Width, "height", output.Height)
		return Effects{SetMaximized{Window: id, Maximized: false}}
	}

	var fx Effects
	if w.maximized {
		width, height := output.Width/2, output.Height/2
		if w.hasRestore {
			width, height = w.restore.Width, w.restore.Height
		}
		w.maximized = false
		w.hasRestore = false
		w.x = output.X + output.Width/4
		w.y = output.Y + output.Height/4
		fx.add(
			SetMaximized{Window: id, Maximized: false},
			RequestSize{Window: id, Width: width, Height: height},
			SetPosition{Window: id, X: w.x, Y: w.y},
		)
	} else {
		w.restore = w.box()
		w.hasRestore = !w.restore.Empty()
		w.maximized = true
		if s.grab.window == id {
			s.resetGrab()
		}
		w.x, w.y = output.X, output.Y
		fx.add(
			SetMaximized{Window: id, Maximized: true},
			RequestSize{Window: id, Width: output.Width, Height: output.Height},
			SetPosition{Window: id, X: w.x, Y: w.y},
		)
	}
	fx.add(ScheduleConfigure{Window: id})
	s.logger.Debug("maximize toggled", "window", id, "maximized", w.maximized)
	return fx
}

// OnRequestFullscreen re-schedules a configure once the window is
// initialised. Fullscreen layout itself is not implemented.
func (s *Server) OnRequestFullscreen(id platform.WindowID) Effects {
	w, ok := s.lookup(id)
	if !ok || !w.initialized {
		return nil
	}
	return Effects{ScheduleConfigure{Window: id}}
}
