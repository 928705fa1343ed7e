package compositor

import "github.com/1broseidon/cyclewm/internal/platform"

// Effect is a side effect the backend must apply after an event has been
// handled. Effects are plain values; the core never talks to the display
// system directly.
type Effect interface {
	effect()
}

// Effects is the ordered list of effects produced by a single event.
type Effects []Effect

func (fx *Effects) add(e ...Effect) {
	*fx = append(*fx, e...)
}

// RaiseToTop raises a window's scene node above its siblings.
type RaiseToTop struct {
	Window platform.WindowID
}

// SetPosition places a window's scene node in layout coordinates.
type SetPosition struct {
	Window platform.WindowID
	X, Y   int
}

// RequestSize asks the client to resize. A 0x0 request lets the client pick.
type RequestSize struct {
	Window        platform.WindowID
	Width, Height int
}

// SetActivated toggles the activated (focused decoration) state.
type SetActivated struct {
	Window    platform.WindowID
	Activated bool
}

// SetMaximized tells the client whether it is maximized.
type SetMaximized struct {
	Window    platform.WindowID
	Maximized bool
}

// ScheduleConfigure asks the shell to send a configure with pending state.
type ScheduleConfigure struct {
	Window platform.WindowID
}

// KeyboardEnter gives a window keyboard focus.
type KeyboardEnter struct {
	Window    platform.WindowID
	Keycodes  []uint32
	Modifiers platform.Modifiers
}

// KeyboardClearFocus drops keyboard focus.
type KeyboardClearFocus struct{}

// SetSeatKeyboard makes a keyboard the seat's active keyboard.
type SetSeatKeyboard struct {
	Device platform.DeviceID
}

// ConfigureKeyboard applies the keymap layout and repeat info to a keyboard.
type ConfigureKeyboard struct {
	Device      platform.DeviceID
	Layout      string
	RepeatRate  int
	RepeatDelay int
}

// NotifyKey forwards a key event to the focused client.
type NotifyKey struct {
	TimeMsec uint32
	Keycode  uint32
	State    platform.KeyState
}

// NotifyModifiers forwards a modifier change to the focused client.
type NotifyModifiers struct {
	Modifiers platform.Modifiers
}

// AttachPointer attaches a pointer device to the shared cursor.
type AttachPointer struct {
	Device platform.DeviceID
}

// DetachPointer detaches a pointer device from the shared cursor.
type DetachPointer struct {
	Device platform.DeviceID
}

// SetCapabilities publishes the seat capabilities.
type SetCapabilities struct {
	Capabilities platform.Capabilities
}

// PointerEnter gives a surface pointer focus at surface-local coordinates.
type PointerEnter struct {
	Surface platform.SurfaceID
	SX, SY  float64
}

// PointerMotion sends surface-local motion to the pointer focus.
type PointerMotion struct {
	TimeMsec uint32
	SX, SY   float64
}

// PointerClearFocus drops pointer focus.
type PointerClearFocus struct{}

// PointerButton forwards a button event to the pointer focus.
type PointerButton struct {
	TimeMsec uint32
	Button   uint32
	State    platform.ButtonState
}

// PointerAxis forwards a scroll event to the pointer focus.
type PointerAxis struct {
	TimeMsec    uint32
	Orientation platform.AxisOrientation
	Delta       float64
	Discrete    int32
}

// PointerFrame ends a group of pointer events.
type PointerFrame struct{}

// SetCursorImage sets a named cursor image from the theme.
type SetCursorImage struct {
	Name string
}

// SetCursorSurface uses a client surface as the cursor image.
type SetCursorSurface struct {
	Surface  platform.SurfaceID
	HotspotX int
	HotspotY int
}

// SetSelection sets the seat selection.
type SetSelection struct {
	Source platform.SourceID
	Serial uint32
}

// Terminate asks the backend to shut down gracefully.
type Terminate struct{}

func (RaiseToTop) effect()         {}
func (SetPosition) effect()        {}
func (RequestSize) effect()        {}
func (SetActivated) effect()       {}
func (SetMaximized) effect()       {}
func (ScheduleConfigure) effect()  {}
func (KeyboardEnter) effect()      {}
func (KeyboardClearFocus) effect() {}
func (SetSeatKeyboard) effect()    {}
func (ConfigureKeyboard) effect()  {}
func (NotifyKey) effect()          {}
func (NotifyModifiers) effect()    {}
func (AttachPointer) effect()      {}
func (DetachPointer) effect()      {}
func (SetCapabilities) effect()    {}
func (PointerEnter) effect()       {}
func (PointerMotion) effect()      {}
func (PointerClearFocus) effect()  {}
func (PointerButton) effect()      {}
func (PointerAxis) effect()        {}
func (PointerFrame) effect()       {}
func (SetCursorImage) effect()     {}
func (SetCursorSurface) effect()   {}
func (SetSelection) effect()       {}
func (Terminate) effect()          {}
