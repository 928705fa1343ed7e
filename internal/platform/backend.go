package platform

import "strings"

// WindowID is a platform-neutral toplevel handle. Zero is never a valid
// window.
type WindowID uint32

// NoWindow is the zero handle.
const NoWindow WindowID = 0

// SurfaceID identifies a renderable surface, which may be a toplevel or one of
// its subsurfaces/popups.
type SurfaceID uint32

// ClientID identifies the protocol client that owns a surface.
type ClientID uint32

// DeviceID identifies an input device.
type DeviceID uint32

// Rect describes a rectangular region in layout coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Edges is a bitmask of window borders taking part in a resize.
type Edges uint32

const (
	EdgeNone   Edges = 0
	EdgeTop    Edges = 1 << 0
	EdgeBottom Edges = 1 << 1
	EdgeLeft   Edges = 1 << 2
	EdgeRight  Edges = 1 << 3
)

// String returns a dash-joined list of edge names, e.g. "top-left".
func (e Edges) String() string {
	if e == EdgeNone {
		return "none"
	}
	var parts []string
	if e&EdgeTop != 0 {
		parts = append(parts, "top")
	}
	if e&EdgeBottom != 0 {
		parts = append(parts, "bottom")
	}
	if e&EdgeLeft != 0 {
		parts = append(parts, "left")
	}
	if e&EdgeRight != 0 {
		parts = append(parts, "right")
	}
	return strings.Join(parts, "-")
}

// Modifiers is a keyboard modifier bitmask.
type Modifiers uint32

const (
	ModShift Modifiers = 1 << 0
	ModCaps  Modifiers = 1 << 1
	ModCtrl  Modifiers = 1 << 2
	ModAlt   Modifiers = 1 << 3
	ModMod2  Modifiers = 1 << 4
	ModMod3  Modifiers = 1 << 5
	ModLogo  Modifiers = 1 << 6
	ModMod5  Modifiers = 1 << 7
)

// Keysym is an X keysym value.
type Keysym uint32

const (
	KeyTab    Keysym = 0xff09
	KeyEscape Keysym = 0xff1b
	KeyAltL   Keysym = 0xffe9
	KeyAltR   Keysym = 0xffea
)

// KeyState is the press state of a key.
type KeyState int

const (
	KeyReleased KeyState = iota
	KeyPressed
)

// ButtonState is the press state of a pointer button.
type ButtonState int

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

// AxisOrientation is the direction of a scroll event.
type AxisOrientation int

const (
	AxisVertical AxisOrientation = iota
	AxisHorizontal
)

// DeviceType classifies input devices.
type DeviceType int

const (
	DeviceKeyboard DeviceType = iota
	DevicePointer
	DeviceTouch
	DeviceTablet
	DeviceSwitch
)

func (t DeviceType) String() string {
	switch t {
	case DeviceKeyboard:
		return "keyboard"
	case DevicePointer:
		return "pointer"
	case DeviceTouch:
		return "touch"
	case DeviceTablet:
		return "tablet"
	case DeviceSwitch:
		return "switch"
	default:
		return "unknown"
	}
}

// Capabilities is the seat capability set advertised to clients.
type Capabilities uint32

const (
	CapPointer  Capabilities = 1 << 0
	CapKeyboard Capabilities = 1 << 1
	CapTouch    Capabilities = 1 << 2
)

// Hit is the result of a point-in-scene query. Window is NoWindow when the
// surface under the point does not belong to a managed toplevel.
type Hit struct {
	Window  WindowID
	Surface SurfaceID
	Client  ClientID
	// SX and SY are surface-local coordinates.
	SX float64
	SY float64
}

// HitTester finds the topmost surface at a layout position.
type HitTester interface {
	NodeAt(x, y float64) (Hit, bool)
}

// SourceID identifies a client-provided data source offered as the selection.
type SourceID uint32
