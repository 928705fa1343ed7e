package compositor

import (
	"slices"

	"github.com/1broseidon/cyclewm/internal/platform"
)

// keyboard is the per-device state of an attached keyboard.
type keyboard struct {
	layout    string
	modifiers platform.Modifiers
	pressed   []uint32
}

func (k *keyboard) track(keycode uint32, state platform.KeyState) {
	i := slices.Index(k.pressed, keycode)
	switch {
	case state == platform.KeyPressed && i < 0:
		k.pressed = append(k.pressed, keycode)
	case state == platform.KeyReleased && i >= 0:
		k.pressed = slices.Delete(k.pressed, i, i+1)
	}
}

func (k *keyboard) keycodes() []uint32 {
	return slices.Clone(k.pressed)
}

// KeyEvent is a raw key event together with the keysyms it produces under the
// keyboard's current keymap state.
type KeyEvent struct {
	TimeMsec uint32
	Keycode  uint32
	State    platform.KeyState
	Syms     []platform.Keysym
}

// keybinding is a compositor shortcut run while Alt is held.
type keybinding func(s *Server, fx *Effects)

var keybindings = map[platform.Keysym]keybinding{
	platform.KeyEscape: func(s *Server, fx *Effects) {
		fx.add(s.Terminate()...)
	},
	platform.KeyTab: func(s *Server, fx *Effects) {
		s.focusNextInCycle(fx)
	},
}

func isCycleModifier(sym platform.Keysym) bool {
	return sym == platform.KeyAltL || sym == platform.KeyAltR
}

// OnNewInput registers a hot-plugged device and republishes the seat
// capabilities.
func (s *Server) OnNewInput(dev platform.DeviceID, typ platform.DeviceType) Effects {
	var fx Effects
	switch typ {
	case platform.DeviceKeyboard:
		if _, ok := s.keyboards[dev]; ok {
			s.logger.Debug("input: keyboard already attached", "device", dev)
			return nil
		}
		s.keyboards[dev] = &keyboard{layout: s.layout}
		s.seatKeyboard = dev
		fx.add(s.configureKeyboard(dev), SetSeatKeyboard{Device: dev})
	case platform.DevicePointer:
		if _, ok := s.pointers[dev]; ok {
			s.logger.Debug("input: pointer already attached", "device", dev)
			return nil
		}
		s.pointers[dev] = struct{}{}
		fx.add(AttachPointer{Device: dev})
	default:
		s.logger.Debug("input: ignoring device", "device", dev, "type", typ)
	}
	s.logger.Info("input device added", "device", dev, "type", typ)
	fx.add(s.publishCapabilities())
	return fx
}

// OnInputRemoved tears down a device. Focus order and grab state are
// unaffected.
func (s *Server) OnInputRemoved(dev platform.DeviceID) Effects {
	var fx Effects
	if _, ok := s.keyboards[dev]; ok {
		delete(s.keyboards, dev)
		if s.seatKeyboard == dev {
			s.seatKeyboard = 0
		}
	} else if _, ok := s.pointers[dev]; ok {
		delete(s.pointers, dev)
		fx.add(DetachPointer{Device: dev})
	} else {
		s.logger.Debug("input: removing unknown device", "device", dev)
		return nil
	}
	s.logger.Info("input device removed", "device", dev)
	fx.add(s.publishCapabilities())
	return fx
}

func (s *Server) configureKeyboard(dev platform.DeviceID) ConfigureKeyboard {
	return ConfigureKeyboard{
		Device:      dev,
		Layout:      s.keyboards[dev].layout,
		RepeatRate:  s.repeatRate,
		RepeatDelay: s.repeatDelay,
	}
}

func (s *Server) publishCapabilities() SetCapabilities {
	caps := platform.CapPointer
	if len(s.keyboards) > 0 {
		caps |= platform.CapKeyboard
	}
	s.caps = caps
	return SetCapabilities{Capabilities: caps}
}

func (s *Server) keyboardIDs() []platform.DeviceID {
	ids := make([]platform.DeviceID, 0, len(s.keyboards))
	for id := range s.keyboards {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Server) useSeatKeyboard(dev platform.DeviceID, fx *Effects) {
	if s.seatKeyboard == dev {
		return
	}
	s.seatKeyboard = dev
	fx.add(SetSeatKeyboard{Device: dev})
}

// OnModifiers records a keyboard's modifier state and forwards it to the
// focused client.
func (s *Server) OnModifiers(dev platform.DeviceID, mods platform.Modifiers) Effects {
	kb, ok := s.keyboards[dev]
	if !ok {
		s.logger.Debug("modifiers: unknown keyboard", "device", dev)
		return nil
	}
	kb.modifiers = mods
	var fx Effects
	s.useSeatKeyboard(dev, &fx)
	fx.add(NotifyModifiers{Modifiers: mods})
	return fx
}

// OnKey handles a key press or release. Releasing Alt ends an Alt+Tab cycle;
// with Alt held, bound keys are consumed and everything else is forwarded to
// the focused client.
func (s *Server) OnKey(dev platform.DeviceID, ev KeyEvent) Effects {
	kb, ok := s.keyboards[dev]
	if !ok {
		s.logger.Debug("key: unknown keyboard", "device", dev)
		return nil
	}
	kb.track(ev.Keycode, ev.State)

	for _, sym := range ev.Syms {
		if isCycleModifier(sym) && ev.State == platform.KeyReleased && s.cycleActive {
			s.commitCycle()
		}
	}

	var fx Effects
	handled := false
	if kb.modifiers&platform.ModAlt != 0 && ev.State == platform.KeyPressed {
		for _, sym := range ev.Syms {
			if bind, ok := keybindings[sym]; ok {
				bind(s, &fx)
				handled = true
			}
		}
	}
	if handled {
		return fx
	}

	s.useSeatKeyboard(dev, &fx)
	fx.add(NotifyKey{TimeMsec: ev.TimeMsec, Keycode: ev.Keycode, State: ev.State})
	return fx
}

// OnButton forwards a button event. Releasing ends any grab; pressing over a
// window moves it to the MRU head and focuses it.
func (s *Server) OnButton(timeMsec, button uint32, state platform.ButtonState) Effects {
	fx := Effects{PointerButton{TimeMsec: timeMsec, Button: button, State: state}}
	if state == platform.ButtonReleased {
		s.resetGrab()
		return fx
	}

	hit, ok := s.hitTest()
	if !ok || hit.Window == platform.NoWindow {
		return fx
	}
	if !s.mru.MoveToFront(hit.Window) {
		s.logger.Debug("button: hit window not in focus registry", "window", hit.Window)
		return fx
	}
	s.focus(hit.Window, &fx)
	return fx
}

// OnAxis forwards a scroll event to the pointer focus.
func (s *Server) OnAxis(timeMsec uint32, orientation platform.AxisOrientation, delta float64, discrete int32) Effects {
	return Effects{PointerAxis{
		TimeMsec:    timeMsec,
		Orientation: orientation,
		Delta:       delta,
		Discrete:    discrete,
	}}
}

// OnFrame forwards a pointer frame.
func (s *Server) OnFrame() Effects {
	return Effects{PointerFrame{}}
}

// OnRequestSetCursor honours a client's cursor image only while that client
// has pointer focus.
func (s *Server) OnRequestSetCursor(client platform.ClientID, surface platform.SurfaceID, hotspotX, hotspotY int) Effects {
	if !s.hasPointerFocus || s.pointerFocus.Client != client {
		s.logger.Debug("set cursor: client has no pointer focus", "client", client)
		return nil
	}
	return Effects{SetCursorSurface{Surface: surface, HotspotX: hotspotX, HotspotY: hotspotY}}
}

// OnRequestSetSelection forwards a selection request to the seat.
func (s *Server) OnRequestSetSelection(source platform.SourceID, serial uint32) Effects {
	return Effects{SetSelection{Source: source, Serial: serial}}
}
