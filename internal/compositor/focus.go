package compositor

import (
	"fmt"

	"github.com/1broseidon/cyclewm/internal/platform"
)

// focus activates id, raises it to the top of the stacking order and gives it
// keyboard focus. It does not touch the MRU registry.
func (s *Server) focus(id platform.WindowID, fx *Effects) {
	if _, ok := s.mappedWindow(id); !ok {
		s.logger.Debug("focus: window not mapped", "window", id)
		return
	}
	if s.focused == id {
		return
	}

	if _, ok := s.mappedWindow(s.focused); ok {
		fx.add(SetActivated{Window: s.focused, Activated: false})
	}
	s.stack.MoveToFront(id)
	fx.add(
		RaiseToTop{Window: id},
		SetActivated{Window: id, Activated: true},
	)
	s.focused = id

	if kb, ok := s.keyboards[s.seatKeyboard]; ok {
		fx.add(KeyboardEnter{
			Window:    id,
			Keycodes:  kb.keycodes(),
			Modifiers: kb.modifiers,
		})
	}
}

// focusNextInCycle advances the cycle cursor one step through the MRU order,
// wrapping at the tail, and previews the target without reordering MRU.
func (s *Server) focusNextInCycle(fx *Effects) {
	if s.mru.Len() < 2 {
		return
	}
	cur := s.cycleTarget
	if !s.cycleActive || !s.mru.Contains(cur) {
		cur = s.mru.Front().Value
	}
	next, ok := s.mru.After(cur)
	if !ok {
		return
	}
	s.cycleTarget = next
	s.cycleActive = true
	s.logger.Debug("cycle", "target", next)
	s.focus(next, fx)
}

// commitCycle moves the cycle target to the head of the MRU registry and ends
// the cycle.
func (s *Server) commitCycle() {
	if !s.cycleActive {
		return
	}
	target := s.cycleTarget
	s.clearCycle()
	if !s.mru.MoveToFront(target) {
		s.logger.Debug("cycle commit: target no longer mapped", "window", target)
		return
	}
	s.logger.Debug("cycle committed", "window", target)
}

func (s *Server) clearCycle() {
	s.cycleTarget = platform.NoWindow
	s.cycleActive = false
}

// Focus commits focus to id as if it had been clicked: it moves to the head of
// the MRU registry and receives focus.
func (s *Server) Focus(id platform.WindowID) (Effects, error) {
	if _, ok := s.mappedWindow(id); !ok {
		return nil, fmt.Errorf("window %d is not mapped", id)
	}
	var fx Effects
	s.mru.MoveToFront(id)
	s.focus(id, &fx)
	return fx, nil
}

// Cycle performs one complete Alt+Tab step: it advances to the next window
// and commits immediately, since no modifier release will follow.
func (s *Server) Cycle() Effects {
	var fx Effects
	s.focusNextInCycle(&fx)
	s.commitCycle()
	return fx
}
