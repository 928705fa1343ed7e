package x11

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/cyclewm/internal/platform"
)

// NodeAt implements platform.HitTester by asking the server for the topmost
// child of the root under (x, y). Only managed windows count as hits.
func (b *Backend) NodeAt(x, y float64) (platform.Hit, bool) {
	conn := b.conn.XUtil.Conn()
	rx, ry := int16(x), int16(y)

	reply, err := xproto.TranslateCoordinates(conn, b.conn.Root, b.conn.Root, rx, ry).Reply()
	if err != nil || reply.Child == 0 {
		return platform.Hit{}, false
	}
	if !b.managed[reply.Child] {
		return platform.Hit{}, false
	}

	local, err := xproto.TranslateCoordinates(conn, b.conn.Root, reply.Child, rx, ry).Reply()
	if err != nil {
		return platform.Hit{}, false
	}

	return platform.Hit{
		Window:  platform.WindowID(reply.Child),
		Surface: platform.SurfaceID(reply.Child),
		Client:  clientOf(reply.Child, b.idMask),
		SX:      float64(local.DstX),
		SY:      float64(local.DstY),
	}, true
}

// clientOf derives the owning connection from a resource ID: every client
// allocates IDs from its own base, which is the ID with the mask bits cleared.
func clientOf(win xproto.Window, idMask uint32) platform.ClientID {
	return platform.ClientID(uint32(win) &^ idMask)
}
