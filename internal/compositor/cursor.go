package compositor

import "github.com/1broseidon/cyclewm/internal/platform"

// CursorMode is the interaction mode of the shared cursor.
type CursorMode int

const (
	CursorPassthrough CursorMode = iota
	CursorMove
	CursorResize
)

func (m CursorMode) String() string {
	switch m {
	case CursorPassthrough:
		return "passthrough"
	case CursorMove:
		return "move"
	case CursorResize:
		return "resize"
	default:
		return "unknown"
	}
}

// grabState is the in-progress interactive gesture. window is non-zero iff
// mode is not passthrough.
type grabState struct {
	mode   CursorMode
	window platform.WindowID
	// grabX, grabY is the cursor offset from the node origin (move) or from
	// the dragged border (resize).
	grabX, grabY float64
	// box is the window geometry in layout coordinates at grab time.
	box   platform.Rect
	edges platform.Edges
}

func (s *Server) resetGrab() {
	if s.grab.mode != CursorPassthrough {
		s.logger.Debug("grab released", "mode", s.grab.mode, "window", s.grab.window)
	}
	s.grab = grabState{}
}

// OnRequestMove starts an interactive move of id. Maximized and unmapped
// windows are refused.
func (s *Server) OnRequestMove(id platform.WindowID) Effects {
	w, ok := s.mappedWindow(id)
	if !ok {
		s.logger.Debug("move request: window not mapped", "window", id)
		return nil
	}
	if w.maximized {
		return nil
	}
	s.grab = grabState{
		mode:   CursorMove,
		window: id,
		grabX:  s.cursorX - float64(w.x),
		grabY:  s.cursorY - float64(w.y),
	}
	s.logger.Debug("grab started", "mode", CursorMove, "window", id)
	return nil
}

// OnRequestResize starts an interactive resize of id along edges. Maximized
// and unmapped windows are refused.
func (s *Server) OnRequestResize(id platform.WindowID, edges platform.Edges) Effects {
	w, ok := s.mappedWindow(id)
	if !ok {
		s.logger.Debug("resize request: window not mapped", "window", id)
		return nil
	}
	if w.maximized {
		return nil
	}

	borderX := float64(w.x + w.geometry.X)
	if edges&platform.EdgeRight != 0 {
		borderX += float64(w.geometry.Width)
	}
	borderY := float64(w.y + w.geometry.Y)
	if edges&platform.EdgeBottom != 0 {
		borderY += float64(w.geometry.Height)
	}

	s.grab = grabState{
		mode:   CursorResize,
		window: id,
		grabX:  s.cursorX - borderX,
		grabY:  s.cursorY - borderY,
		box:    w.box(),
		edges:  edges,
	}
	s.logger.Debug("grab started", "mode", CursorResize, "window", id, "edges", edges)
	return nil
}

// OnMotion moves the cursor to (x, y) in layout coordinates and processes the
// motion according to the current mode.
func (s *Server) OnMotion(timeMsec uint32, x, y float64) Effects {
	s.cursorX, s.cursorY = x, y
	return s.processMotion(timeMsec)
}

// OnMotionRelative moves the cursor by a delta.
func (s *Server) OnMotionRelative(timeMsec uint32, dx, dy float64) Effects {
	return s.OnMotion(timeMsec, s.cursorX+dx, s.cursorY+dy)
}

func (s *Server) processMotion(timeMsec uint32) Effects {
	switch s.grab.mode {
	case CursorMove:
		return s.processMove()
	case CursorResize:
		return s.processResize()
	}

	var fx Effects
	hit, ok := s.hitTest()
	if !ok || hit.Window == platform.NoWindow {
		fx.add(SetCursorImage{Name: "default"})
	}
	if ok && hit.Surface != 0 {
		fx.add(
			PointerEnter{Surface: hit.Surface, SX: hit.SX, SY: hit.SY},
			PointerMotion{TimeMsec: timeMsec, SX: hit.SX, SY: hit.SY},
		)
		s.pointerFocus = hit
		s.hasPointerFocus = true
	} else {
		fx.add(PointerClearFocus{})
		s.pointerFocus = platform.Hit{}
		s.hasPointerFocus = false
	}
	return fx
}

func (s *Server) processMove() Effects {
	w, ok := s.mappedWindow(s.grab.window)
	if !ok {
		s.resetGrab()
		return nil
	}
	w.x = int(s.cursorX - s.grab.grabX)
	w.y = int(s.cursorY - s.grab.grabY)
	return Effects{SetPosition{Window: w.id, X: w.x, Y: w.y}}
}

func (s *Server) processResize() Effects {
	w, ok := s.mappedWindow(s.grab.window)
	if !ok {
		s.resetGrab()
		return nil
	}

	borderX := s.cursorX - s.grab.grabX
	borderY := s.cursorY - s.grab.grabY
	box := s.grab.box
	left, right := box.X, box.X+box.Width
	top, bottom := box.Y, box.Y+box.Height

	edges := s.grab.edges
	if edges&platform.EdgeTop != 0 {
		top = int(borderY)
		if top >= bottom {
			top = bottom - 1
		}
	} else if edges&platform.EdgeBottom != 0 {
		bottom = int(borderY)
		if bottom <= top {
			bottom = top + 1
		}
	}
	if edges&platform.EdgeLeft != 0 {
		left = int(borderX)
		if left >= right {
			left = right - 1
		}
	} else if edges&platform.EdgeRight != 0 {
		right = int(borderX)
		if right <= left {
			right = left + 1
		}
	}

	w.x = left - w.geometry.X
	w.y = top - w.geometry.Y
	return Effects{
		SetPosition{Window: w.id, X: w.x, Y: w.y},
		RequestSize{Window: w.id, Width: max(right-left, 1), Height: max(bottom-top, 1)},
	}
}
