package x11

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/cyclewm/internal/compositor"
	"github.com/1broseidon/cyclewm/internal/platform"
)

// The core protocol exposes one keyboard and one pointer.
const (
	keyboardDevice platform.DeviceID = 1
	pointerDevice  platform.DeviceID = 2
)

// WMName is advertised through _NET_SUPPORTING_WM_CHECK.
const WMName = "cyclewm"

var supportedHints = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_ACTIVE_WINDOW",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
	"_NET_WM_STATE",
	"_NET_WM_STATE_MAXIMIZED_VERT",
	"_NET_WM_STATE_MAXIMIZED_HORZ",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_MOVERESIZE",
}

// Backend drives a compositor.Server from an X11 display: it turns X events
// into handler calls and applies the returned effects to X windows. All
// Server access happens on the goroutine running Run.
type Backend struct {
	conn   *Connection
	srv    *compositor.Server
	queue  *compositor.Queue
	logger *slog.Logger

	idMask uint32
	// managed maps every window we have set up to whether it is mapped.
	managed  map[xproto.Window]bool
	cursors  map[string]xproto.Cursor
	checkWin xproto.Window

	keyboardGrabbed bool
	// keyState is the X modifier state of the key event being dispatched.
	keyState uint16
	// pointerGrabbed is set while a client-initiated move/resize holds
	// the pointer.
	pointerGrabbed bool

	lastClients  []xproto.Window
	lastStacking []xproto.Window
}

// NewBackend wires srv to conn and installs itself as the hit tester.
func NewBackend(conn *Connection, srv *compositor.Server, queue *compositor.Queue, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Backend{
		conn:    conn,
		srv:     srv,
		queue:   queue,
		logger:  logger,
		managed: make(map[xproto.Window]bool),
		cursors: make(map[string]xproto.Cursor),
	}
	srv.SetHitTester(b)
	return b
}

// Start takes over window management of the display. It fails if another
// window manager is running.
func (b *Backend) Start() error {
	xu := b.conn.XUtil
	root := xwindow.New(xu, b.conn.Root)

	err := root.Listen(
		xproto.EventMaskSubstructureRedirect,
		xproto.EventMaskSubstructureNotify,
		xproto.EventMaskEnterWindow,
		xproto.EventMaskPropertyChange,
	)
	if err != nil {
		return fmt.Errorf("another window manager is already running: %w", err)
	}

	b.idMask = xproto.Setup(xu.Conn()).ResourceIdMask

	if err := b.createCursors(); err != nil {
		return err
	}
	if err := b.setHints(); err != nil {
		return err
	}

	b.connectRootHandlers()
	if err := grabBindings(xu, b.conn.Root); err != nil {
		return err
	}

	b.Apply(b.srv.OnNewInput(keyboardDevice, platform.DeviceKeyboard))
	b.Apply(b.srv.OnNewInput(pointerDevice, platform.DevicePointer))

	b.adoptExisting()
	b.logger.Info("managing display", "root", b.conn.Root, "windows", len(b.managed))
	return nil
}

func (b *Backend) createCursors() error {
	for name, glyph := range map[string]uint16{
		"default": xcursor.LeftPtr,
		"move":    xcursor.Fleur,
	} {
		cursor, err := xcursor.CreateCursor(b.conn.XUtil, glyph)
		if err != nil {
			return fmt.Errorf("create %s cursor: %w", name, err)
		}
		b.cursors[name] = cursor
	}
	b.setRootCursor("default")
	return nil
}

func (b *Backend) setHints() error {
	xu := b.conn.XUtil

	check, err := xwindow.Create(xu, b.conn.Root)
	if err != nil {
		return fmt.Errorf("create check window: %w", err)
	}
	b.checkWin = check.Id

	if err := ewmh.SupportingWmCheckSet(xu, b.conn.Root, check.Id); err != nil {
		return fmt.Errorf("set _NET_SUPPORTING_WM_CHECK: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(xu, check.Id, check.Id); err != nil {
		return fmt.Errorf("set _NET_SUPPORTING_WM_CHECK: %w", err)
	}
	if err := ewmh.WmNameSet(xu, check.Id, WMName); err != nil {
		return fmt.Errorf("set _NET_WM_NAME: %w", err)
	}
	if err := ewmh.SupportedSet(xu, supportedHints); err != nil {
		return fmt.Errorf("set _NET_SUPPORTED: %w", err)
	}

	if err := ewmh.NumberOfDesktopsSet(xu, 1); err != nil {
		b.logger.Debug("set _NET_NUMBER_OF_DESKTOPS failed", "error", err)
	}
	if err := ewmh.CurrentDesktopSet(xu, 0); err != nil {
		b.logger.Debug("set _NET_CURRENT_DESKTOP failed", "error", err)
	}
	return nil
}

// adoptExisting manages windows that were mapped before we started.
func (b *Backend) adoptExisting() {
	tree, err := xproto.QueryTree(b.conn.XUtil.Conn(), b.conn.Root).Reply()
	if err != nil {
		b.logger.Warn("query tree failed", "error", err)
		return
	}
	// Children are bottom to top, so the topmost window ends up focused.
	for _, win := range tree.Children {
		if win == b.checkWin {
			continue
		}
		attrs, err := xproto.GetWindowAttributes(b.conn.XUtil.Conn(), win).Reply()
		if err != nil || attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		b.manage(win, true)
	}
}

// Run processes X events and queued work until ctx is cancelled or the
// compositor terminates.
func (b *Backend) Run(ctx context.Context) error {
	pingBefore, pingAfter, pingQuit := xevent.MainPing(b.conn.XUtil)

	for {
		select {
		case <-ctx.Done():
			xevent.Quit(b.conn.XUtil)
			return nil
		case <-pingBefore:
			// The event handler runs on the xevent goroutine; wait for
			// it so the Server is never touched concurrently.
			<-pingAfter
		case fn := <-b.queue.C():
			fn()
		case <-pingQuit:
			return nil
		}

		if b.srv.Terminated() {
			b.logger.Info("compositor terminated")
			return nil
		}
	}
}

// Apply executes effects against the display and republishes the EWMH
// client lists if the registries changed. It must run on the Run goroutine.
func (b *Backend) Apply(fx compositor.Effects) {
	for _, e := range fx {
		b.applyEffect(e)
	}
	b.publishClientLists()
}

// Title returns a window's title, preferring _NET_WM_NAME.
func (b *Backend) Title(id platform.WindowID) string {
	return windowTitle(b.conn, xproto.Window(id))
}

// Forget drops a window the display no longer has, as if it had been
// destroyed. A window that still exists but is no longer viewable is
// treated as unmapped instead.
func (b *Backend) Forget(id platform.WindowID) {
	win := xproto.Window(id)
	attrs, err := xproto.GetWindowAttributes(b.conn.XUtil.Conn(), win).Reply()
	if err != nil {
		b.unmanage(win)
		return
	}
	if attrs.MapState != xproto.MapStateViewable && b.managed[win] {
		b.managed[win] = false
		b.Apply(b.srv.OnUnmap(id))
	}
}

// ListWindows returns the viewable top-level windows on the display.
func (b *Backend) ListWindows() ([]uint32, error) {
	return viewableWindows(b.conn)
}

func (b *Backend) publishClientLists() {
	xu := b.conn.XUtil

	clients := toXWindows(b.srv.MRU())
	if !sameWindows(clients, b.lastClients) {
		if err := ewmh.ClientListSet(xu, clients); err != nil {
			b.logger.Debug("set _NET_CLIENT_LIST failed", "error", err)
		}
		b.lastClients = clients
	}

	// _NET_CLIENT_LIST_STACKING is bottom to top.
	stacking := toXWindows(b.srv.Stack())
	for i, j := 0, len(stacking)-1; i < j; i, j = i+1, j-1 {
		stacking[i], stacking[j] = stacking[j], stacking[i]
	}
	if !sameWindows(stacking, b.lastStacking) {
		if err := ewmh.ClientListStackingSet(xu, stacking); err != nil {
			b.logger.Debug("set _NET_CLIENT_LIST_STACKING failed", "error", err)
		}
		b.lastStacking = stacking
	}
}

func toXWindows(ids []platform.WindowID) []xproto.Window {
	out := make([]xproto.Window, len(ids))
	for i, id := range ids {
		out[i] = xproto.Window(id)
	}
	return out
}

func sameWindows(a, b []xproto.Window) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
