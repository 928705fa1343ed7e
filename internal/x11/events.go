package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/cyclewm/internal/compositor"
	"github.com/1broseidon/cyclewm/internal/platform"
)

// _NET_WM_MOVERESIZE directions.
const (
	moveResizeSizeTopLeft     = 0
	moveResizeSizeTop         = 1
	moveResizeSizeTopRight    = 2
	moveResizeSizeRight       = 3
	moveResizeSizeBottomRight = 4
	moveResizeSizeBottom      = 5
	moveResizeSizeBottomLeft  = 6
	moveResizeSizeLeft        = 7
	moveResizeMove            = 8
	moveResizeCancel          = 11
)

// _NET_WM_STATE actions.
const (
	stateRemove = 0
	stateAdd    = 1
	stateToggle = 2
)

func (b *Backend) connectRootHandlers() {
	xu := b.conn.XUtil
	root := b.conn.Root

	xevent.MapRequestFun(b.onMapRequest).Connect(xu, root)
	xevent.ConfigureRequestFun(b.onConfigureRequest).Connect(xu, root)
	xevent.ConfigureNotifyFun(b.onConfigureNotify).Connect(xu, root)
	xevent.UnmapNotifyFun(b.onUnmapNotify).Connect(xu, root)
	xevent.DestroyNotifyFun(b.onDestroyNotify).Connect(xu, root)
	xevent.ClientMessageFun(b.onClientMessage).Connect(xu, root)
	xevent.KeyPressFun(b.onKeyPress).Connect(xu, root)
	xevent.KeyReleaseFun(b.onKeyRelease).Connect(xu, root)
	xevent.EnterNotifyFun(b.onEnterNotify).Connect(xu, root)
	xevent.MotionNotifyFun(b.onRootMotion).Connect(xu, root)
	xevent.ButtonReleaseFun(b.onRootButtonRelease).Connect(xu, root)
}

func (b *Backend) now() uint32 {
	return uint32(b.conn.XUtil.TimeGet())
}

// manage brings win under management and maps it.
func (b *Backend) manage(win xproto.Window, alreadyMapped bool) {
	conn := b.conn.XUtil.Conn()
	id := platform.WindowID(win)

	if mapped, known := b.managed[win]; known && mapped {
		return
	}

	if !isManageable(b.conn, win) {
		if !alreadyMapped {
			xproto.MapWindow(conn, win)
		}
		return
	}

	geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		b.logger.Debug("map: window vanished", "window", id, "error", err)
		return
	}
	box := platform.Rect{X: int(geom.X), Y: int(geom.Y), Width: int(geom.Width), Height: int(geom.Height)}

	var fx compositor.Effects
	if _, known := b.managed[win]; !known {
		b.track(win)
		fx = append(fx, b.srv.OnCreate(id)...)
		fx = append(fx, b.srv.OnCommit(id, compositor.Commit{
			Initial:  true,
			Geometry: platform.Rect{Width: box.Width, Height: box.Height},
		})...)
	}

	if !alreadyMapped {
		xproto.MapWindow(conn, win)
	}
	if err := icccm.WmStateSet(b.conn.XUtil, win, &icccm.WmState{State: icccm.StateNormal}); err != nil {
		b.logger.Debug("set WM_STATE failed", "window", id, "error", err)
	}
	b.managed[win] = true

	fx = append(fx, b.srv.OnMap(id, box)...)
	b.Apply(fx)
	b.logger.Debug("managing window", "window", id, "title", windowTitle(b.conn, win))
}

// track selects events on a new client and installs its pointer bindings.
func (b *Backend) track(win xproto.Window) {
	xu := b.conn.XUtil
	conn := xu.Conn()

	xproto.ChangeWindowAttributes(conn, win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskEnterWindow | xproto.EventMaskPropertyChange})

	// Click to focus: a synchronous grab on every button, replayed to the
	// client once the press is handled. The Alt bindings below take
	// precedence for their combinations.
	xproto.GrabButton(conn, false, win, xproto.EventMaskButtonPress,
		xproto.GrabModeSync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
		xproto.ButtonIndexAny, xproto.ModMaskAny)
	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		b.onClientButtonPress(win, ev)
	}).Connect(xu, win)

	mousebind.Drag(xu, win, win, "Mod1-1", true,
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
			return b.beginDrag(win, rootX, rootY, 1, platform.EdgeNone)
		},
		b.stepDrag, b.endDrag(1))
	mousebind.Drag(xu, win, win, "Mod1-3", true,
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
			return b.beginDrag(win, rootX, rootY, 3, platform.EdgeBottom|platform.EdgeRight)
		},
		b.stepDrag, b.endDrag(3))

	xevent.EnterNotifyFun(b.onEnterNotify).Connect(xu, win)
}

// unmanage forgets win entirely.
func (b *Backend) unmanage(win xproto.Window) {
	if _, known := b.managed[win]; !known {
		return
	}
	delete(b.managed, win)
	xevent.Detach(b.conn.XUtil, win)
	mousebind.Detach(b.conn.XUtil, win)
	b.Apply(b.srv.OnDestroy(platform.WindowID(win)))
}

func (b *Backend) onMapRequest(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
	b.manage(ev.Window, false)
}

func (b *Backend) onUnmapNotify(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
	if !b.managed[ev.Window] {
		return
	}
	b.managed[ev.Window] = false
	if err := icccm.WmStateSet(xu, ev.Window, &icccm.WmState{State: icccm.StateWithdrawn}); err != nil {
		b.logger.Debug("set WM_STATE failed", "window", ev.Window, "error", err)
	}
	b.Apply(b.srv.OnUnmap(platform.WindowID(ev.Window)))
}

func (b *Backend) onDestroyNotify(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
	b.unmanage(ev.Window)
}

func (b *Backend) onConfigureRequest(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
	if _, known := b.managed[ev.Window]; !known {
		mask, values := configureValues(ev.ConfigureRequestEvent)
		xproto.ConfigureWindow(xu.Conn(), ev.Window, mask, values)
		return
	}

	id := platform.WindowID(ev.Window)
	if ev.ValueMask&(xproto.ConfigWindowWidth|xproto.ConfigWindowHeight) != 0 {
		box, _ := b.srv.Box(id)
		width, height := box.Width, box.Height
		if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
			width = int(ev.Width)
		}
		if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
			height = int(ev.Height)
		}
		b.Apply(b.srv.OnGeometryRequest(id, width, height))
	}
	// Position and stacking stay ours; tell the client where it is.
	b.sendConfigureNotify(ev.Window)
}

func (b *Backend) onConfigureNotify(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
	if !b.managed[ev.Window] {
		return
	}
	b.Apply(b.srv.OnCommit(platform.WindowID(ev.Window), compositor.Commit{
		Geometry: platform.Rect{Width: int(ev.Width), Height: int(ev.Height)},
	}))
}

func (b *Backend) onClientMessage(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
	name, err := xprop.AtomName(xu, ev.Type)
	if err != nil {
		return
	}
	id := platform.WindowID(ev.Window)
	data := ev.Data.Data32

	switch name {
	case "_NET_ACTIVE_WINDOW":
		fx, err := b.srv.Focus(id)
		if err != nil {
			b.logger.Debug("activate request ignored", "window", id, "error", err)
			return
		}
		b.Apply(fx)

	case "_NET_WM_STATE":
		if len(data) < 3 {
			return
		}
		b.onStateRequest(id, data[0], data[1], data[2])

	case "_NET_WM_MOVERESIZE":
		if len(data) < 3 {
			return
		}
		b.onMoveResizeRequest(id, int(int32(data[0])), int(int32(data[1])), data[2])
	}
}

func (b *Backend) onStateRequest(id platform.WindowID, action uint32, props ...uint32) {
	maximize, fullscreen := false, false
	for _, atom := range props {
		if atom == 0 {
			continue
		}
		name, err := xprop.AtomName(b.conn.XUtil, xproto.Atom(atom))
		if err != nil {
			continue
		}
		switch name {
		case "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_MAXIMIZED_HORZ":
			maximize = true
		case "_NET_WM_STATE_FULLSCREEN":
			fullscreen = true
		}
	}

	if maximize {
		current := b.srv.Maximized(id)
		if wantState(action, current) != current {
			box, _ := b.srv.Box(id)
			b.Apply(b.srv.OnRequestMaximize(id, b.conn.OutputFor(box)))
		}
	}
	if fullscreen {
		b.Apply(b.srv.OnRequestFullscreen(id))
	}
}

// wantState resolves a _NET_WM_STATE action against the current state.
func wantState(action uint32, current bool) bool {
	switch action {
	case stateRemove:
		return false
	case stateAdd:
		return true
	case stateToggle:
		return !current
	default:
		return current
	}
}

// moveResizeEdges maps a _NET_WM_MOVERESIZE direction to the grab it starts.
// ok is false for keyboard-driven and unknown directions.
func moveResizeEdges(direction uint32) (edges platform.Edges, move bool, ok bool) {
	switch direction {
	case moveResizeSizeTopLeft:
		return platform.EdgeTop | platform.EdgeLeft, false, true
	case moveResizeSizeTop:
		return platform.EdgeTop, false, true
	case moveResizeSizeTopRight:
		return platform.EdgeTop | platform.EdgeRight, false, true
	case moveResizeSizeRight:
		return platform.EdgeRight, false, true
	case moveResizeSizeBottomRight:
		return platform.EdgeBottom | platform.EdgeRight, false, true
	case moveResizeSizeBottom:
		return platform.EdgeBottom, false, true
	case moveResizeSizeBottomLeft:
		return platform.EdgeBottom | platform.EdgeLeft, false, true
	case moveResizeSizeLeft:
		return platform.EdgeLeft, false, true
	case moveResizeMove:
		return platform.EdgeNone, true, true
	default:
		return platform.EdgeNone, false, false
	}
}

func (b *Backend) onMoveResizeRequest(id platform.WindowID, rootX, rootY int, direction uint32) {
	if direction == moveResizeCancel {
		b.releasePointerGrab(0)
		return
	}
	edges, move, ok := moveResizeEdges(direction)
	if !ok {
		b.logger.Debug("unsupported move/resize direction", "window", id, "direction", direction)
		return
	}

	fx := b.srv.OnMotion(b.now(), float64(rootX), float64(rootY))
	if move {
		fx = append(fx, b.srv.OnRequestMove(id)...)
	} else {
		fx = append(fx, b.srv.OnRequestResize(id, edges)...)
	}
	b.Apply(fx)
	if b.srv.Mode() == compositor.CursorPassthrough {
		return
	}

	reply, err := xproto.GrabPointer(b.conn.XUtil.Conn(), false, b.conn.Root,
		xproto.EventMaskButtonRelease|xproto.EventMaskPointerMotion,
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone,
		b.cursors["move"], xproto.TimeCurrentTime).Reply()
	if err != nil || reply.Status != xproto.GrabStatusSuccess {
		b.logger.Debug("pointer grab for move/resize failed", "window", id, "error", err)
		b.Apply(b.srv.OnButton(b.now(), 1, platform.ButtonReleased))
		return
	}
	b.pointerGrabbed = true
}

func (b *Backend) releasePointerGrab(button uint32) {
	if !b.pointerGrabbed {
		return
	}
	b.pointerGrabbed = false
	xproto.UngrabPointer(b.conn.XUtil.Conn(), xproto.TimeCurrentTime)
	if button == 0 {
		button = 1
	}
	b.Apply(b.srv.OnButton(b.now(), button, platform.ButtonReleased))
}

func (b *Backend) onRootMotion(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
	if !b.pointerGrabbed {
		return
	}
	b.Apply(b.srv.OnMotion(uint32(ev.Time), float64(ev.RootX), float64(ev.RootY)))
}

func (b *Backend) onRootButtonRelease(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
	b.releasePointerGrab(uint32(ev.Detail))
}

func (b *Backend) onEnterNotify(xu *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
	if ev.Mode != xproto.NotifyModeNormal {
		return
	}
	b.Apply(b.srv.OnMotion(uint32(ev.Time), float64(ev.RootX), float64(ev.RootY)))
}

func (b *Backend) onClientButtonPress(win xproto.Window, ev xevent.ButtonPressEvent) {
	conn := b.conn.XUtil.Conn()
	defer xproto.AllowEvents(conn, xproto.AllowReplayPointer, ev.Time)

	// Alt+1 and Alt+3 belong to the drag bindings.
	if ev.State&xproto.ModMask1 != 0 && (ev.Detail == 1 || ev.Detail == 3) {
		return
	}
	fx := b.srv.OnMotion(uint32(ev.Time), float64(ev.RootX), float64(ev.RootY))
	fx = append(fx, b.srv.OnButton(uint32(ev.Time), uint32(ev.Detail), platform.ButtonPressed)...)
	b.Apply(fx)
}

func (b *Backend) beginDrag(win xproto.Window, rootX, rootY int, button uint32, edges platform.Edges) (bool, xproto.Cursor) {
	id := platform.WindowID(win)
	now := b.now()

	fx := b.srv.OnMotion(now, float64(rootX), float64(rootY))
	fx = append(fx, b.srv.OnButton(now, button, platform.ButtonPressed)...)
	if edges == platform.EdgeNone {
		fx = append(fx, b.srv.OnRequestMove(id)...)
	} else {
		fx = append(fx, b.srv.OnRequestResize(id, edges)...)
	}
	b.Apply(fx)

	if b.srv.Mode() == compositor.CursorPassthrough {
		return false, 0
	}
	return true, b.cursors["move"]
}

func (b *Backend) stepDrag(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
	b.Apply(b.srv.OnMotion(b.now(), float64(rootX), float64(rootY)))
}

func (b *Backend) endDrag(button uint32) func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
	return func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
		b.Apply(b.srv.OnButton(b.now(), button, platform.ButtonReleased))
	}
}

func (b *Backend) onKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	syms := keysymsFor(xu, ev.Detail)
	b.keyState = ev.State

	fx := b.srv.OnModifiers(keyboardDevice, modifiersFromState(ev.State))
	fx = append(fx, b.srv.OnKey(keyboardDevice, compositor.KeyEvent{
		TimeMsec: uint32(ev.Time),
		Keycode:  uint32(ev.Detail),
		State:    platform.KeyPressed,
		Syms:     syms,
	})...)
	b.Apply(fx)
	b.syncKeyboardGrab()
}

func (b *Backend) onKeyRelease(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
	syms := keysymsFor(xu, ev.Detail)
	b.keyState = ev.State

	fx := b.srv.OnKey(keyboardDevice, compositor.KeyEvent{
		TimeMsec: uint32(ev.Time),
		Keycode:  uint32(ev.Detail),
		State:    platform.KeyReleased,
		Syms:     syms,
	})
	fx = append(fx, b.srv.OnModifiers(keyboardDevice, modifiersAfter(ev.State, syms, platform.KeyReleased))...)
	b.Apply(fx)
	b.syncKeyboardGrab()
}

// syncKeyboardGrab holds an active keyboard grab exactly while a cycle is in
// progress, so the Alt release reaches us whichever window has focus.
func (b *Backend) syncKeyboardGrab() {
	xu := b.conn.XUtil
	_, cycling := b.srv.CycleTarget()

	switch {
	case cycling && !b.keyboardGrabbed:
		if err := keybind.SmartGrab(xu, b.conn.Root); err != nil {
			b.logger.Warn("keyboard grab failed", "error", err)
			return
		}
		b.keyboardGrabbed = true

		// Alt may have been released before the grab took effect.
		reply, err := xproto.QueryPointer(xu.Conn(), b.conn.Root).Reply()
		if err == nil && reply.Mask&xproto.ModMask1 == 0 {
			b.Apply(b.srv.OnKey(keyboardDevice, compositor.KeyEvent{
				TimeMsec: b.now(),
				State:    platform.KeyReleased,
				Syms:     []platform.Keysym{platform.KeyAltL},
			}))
			b.syncKeyboardGrab()
		}

	case !cycling && b.keyboardGrabbed:
		keybind.SmartUngrab(xu)
		b.keyboardGrabbed = false
	}
}

// configureValues forwards a configure request from a window we do not
// manage unchanged.
func configureValues(ev *xproto.ConfigureRequestEvent) (uint16, []uint32) {
	mask := ev.ValueMask
	var values []uint32
	if mask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(int32(ev.X)))
	}
	if mask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(int32(ev.Y)))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(ev.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(ev.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(ev.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(ev.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(ev.StackMode))
	}
	return mask, values
}
