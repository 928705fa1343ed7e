package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/cyclewm/internal/compositor"
	"github.com/1broseidon/cyclewm/internal/platform"
)

var maximizedStates = []string{"_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ"}

func (b *Backend) applyEffect(e compositor.Effect) {
	xu := b.conn.XUtil
	conn := xu.Conn()

	switch e := e.(type) {
	case compositor.RaiseToTop:
		xproto.ConfigureWindow(conn, xproto.Window(e.Window),
			xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})

	case compositor.SetPosition:
		xwindow.New(xu, xproto.Window(e.Window)).Move(e.X, e.Y)

	case compositor.RequestSize:
		if e.Width <= 0 || e.Height <= 0 {
			return
		}
		xwindow.New(xu, xproto.Window(e.Window)).Resize(e.Width, e.Height)

	case compositor.SetActivated:
		if e.Activated {
			if err := ewmh.ActiveWindowSet(xu, xproto.Window(e.Window)); err != nil {
				b.logger.Debug("set _NET_ACTIVE_WINDOW failed", "window", e.Window, "error", err)
			}
		}

	case compositor.SetMaximized:
		b.setMaximizedState(xproto.Window(e.Window), e.Maximized)

	case compositor.ScheduleConfigure:
		b.sendConfigureNotify(xproto.Window(e.Window))

	case compositor.KeyboardEnter:
		xproto.SetInputFocus(conn, xproto.InputFocusPointerRoot, xproto.Window(e.Window), xproto.TimeCurrentTime)

	case compositor.KeyboardClearFocus:
		xproto.SetInputFocus(conn, xproto.InputFocusPointerRoot, xproto.InputFocusPointerRoot, xproto.TimeCurrentTime)
		if err := ewmh.ActiveWindowSet(xu, 0); err != nil {
			b.logger.Debug("clear _NET_ACTIVE_WINDOW failed", "error", err)
		}

	case compositor.NotifyKey:
		b.forwardKey(e)

	case compositor.SetCursorImage:
		b.setRootCursor(e.Name)

	case compositor.ConfigureKeyboard:
		// The server owns the keymap and autorepeat under X.
		b.logger.Debug("keyboard configuration left to the X server",
			"layout", e.Layout, "rate", e.RepeatRate, "delay", e.RepeatDelay)

	case compositor.Terminate:
		xevent.Quit(xu)

	default:
		b.logger.Debug("effect handled by the X server", "effect", e)
	}
}

func (b *Backend) setRootCursor(name string) {
	cursor, ok := b.cursors[name]
	if !ok {
		cursor, ok = b.cursors["default"]
		if !ok {
			return
		}
	}
	xproto.ChangeWindowAttributes(b.conn.XUtil.Conn(), b.conn.Root, xproto.CwCursor, []uint32{uint32(cursor)})
}

func (b *Backend) setMaximizedState(win xproto.Window, on bool) {
	xu := b.conn.XUtil
	states, err := ewmh.WmStateGet(xu, win)
	if err != nil {
		states = nil
	}
	for _, name := range maximizedStates {
		states = withState(states, name, on)
	}
	if err := ewmh.WmStateSet(xu, win, states); err != nil {
		b.logger.Debug("set _NET_WM_STATE failed", "window", win, "error", err)
	}
}

// withState adds or removes name from a _NET_WM_STATE list.
func withState(states []string, name string, on bool) []string {
	out := make([]string, 0, len(states)+1)
	for _, s := range states {
		if s != name {
			out = append(out, s)
		}
	}
	if on {
		out = append(out, name)
	}
	return out
}

// sendConfigureNotify tells a client its current geometry, as ICCCM requires
// when a configure request is not honoured verbatim.
func (b *Backend) sendConfigureNotify(win xproto.Window) {
	box, ok := b.srv.Box(platform.WindowID(win))
	if !ok {
		return
	}
	ev := configureNotify(win, box)
	xproto.SendEvent(b.conn.XUtil.Conn(), false, win, xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

func configureNotify(win xproto.Window, box platform.Rect) xproto.ConfigureNotifyEvent {
	return xproto.ConfigureNotifyEvent{
		Event:        win,
		Window:       win,
		AboveSibling: xproto.WindowNone,
		X:            int16(box.X),
		Y:            int16(box.Y),
		Width:        uint16(max(box.Width, 1)),
		Height:       uint16(max(box.Height, 1)),
	}
}

// forwardKey replays an unbound key to the focused window while the cycle
// keyboard grab keeps it from arriving there. Without the grab the client
// already received the key.
func (b *Backend) forwardKey(e compositor.NotifyKey) {
	if !b.keyboardGrabbed || e.Keycode == 0 {
		return
	}
	focused := b.srv.Focused()
	if focused == platform.NoWindow {
		return
	}
	win := xproto.Window(focused)
	pressed := e.State == platform.KeyPressed
	data := keyEventBytes(b.conn.Root, win, e, b.keyState)
	mask := uint32(xproto.EventMaskKeyRelease)
	if pressed {
		mask = xproto.EventMaskKeyPress
	}
	if err := xproto.SendEventChecked(b.conn.XUtil.Conn(), false, win, mask, string(data)).Check(); err != nil {
		b.logger.Debug("forward key failed", "window", focused, "keycode", e.Keycode, "error", err)
	}
}

// keyEventBytes encodes a KeyPress or KeyRelease for win.
func keyEventBytes(root, win xproto.Window, e compositor.NotifyKey, state uint16) []byte {
	ev := xproto.KeyPressEvent{
		Detail:     xproto.Keycode(e.Keycode),
		Time:       xproto.Timestamp(e.TimeMsec),
		Root:       root,
		Event:      win,
		Child:      xproto.WindowNone,
		State:      state,
		SameScreen: true,
	}
	if e.State == platform.KeyPressed {
		return ev.Bytes()
	}
	release := xproto.KeyReleaseEvent(ev)
	return release.Bytes()
}
