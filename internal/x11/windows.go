package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// windowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func windowTitle(conn *Connection, win xproto.Window) string {
	if name, err := ewmh.WmNameGet(conn.XUtil, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(conn.XUtil, win); err == nil {
		return name
	}
	return ""
}

// isManageable reports whether win should be placed, focused and cycled.
func isManageable(conn *Connection, win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(conn.XUtil.Conn(), win).Reply()
	if err != nil || attrs.OverrideRedirect {
		return false
	}
	types, err := ewmh.WmWindowTypeGet(conn.XUtil, win)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	return manageableType(types)
}

// manageableType rejects desktop, dock, splash and notification windows.
func manageableType(types []string) bool {
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG", "_NET_WM_WINDOW_TYPE_UTILITY":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

// viewableWindows lists the viewable top-level windows that are not
// override-redirect.
func viewableWindows(conn *Connection) ([]uint32, error) {
	xc := conn.XUtil.Conn()
	tree, err := xproto.QueryTree(xc, conn.Root).Reply()
	if err != nil {
		return nil, err
	}

	var out []uint32
	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(xc, win).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		out = append(out, uint32(win))
	}
	return out, nil
}
