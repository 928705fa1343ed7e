package x11

import (
	"reflect"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/cyclewm/internal/compositor"
	"github.com/1broseidon/cyclewm/internal/platform"
)

func TestMoveResizeEdges(t *testing.T) {
	tests := []struct {
		direction uint32
		edges     platform.Edges
		move      bool
		ok        bool
	}{
		{0, platform.EdgeTop | platform.EdgeLeft, false, true},
		{1, platform.EdgeTop, false, true},
		{2, platform.EdgeTop | platform.EdgeRight, false, true},
		{3, platform.EdgeRight, false, true},
		{4, platform.EdgeBottom | platform.EdgeRight, false, true},
		{5, platform.EdgeBottom, false, true},
		{6, platform.EdgeBottom | platform.EdgeLeft, false, true},
		{7, platform.EdgeLeft, false, true},
		{8, platform.EdgeNone, true, true},
		{9, platform.EdgeNone, false, false},
		{10, platform.EdgeNone, false, false},
		{11, platform.EdgeNone, false, false},
	}
	for _, tt := range tests {
		edges, move, ok := moveResizeEdges(tt.direction)
		if edges != tt.edges || move != tt.move || ok != tt.ok {
			t.Fatalf("moveResizeEdges(%d) = (%v, %v, %v), want (%v, %v, %v)",
				tt.direction, edges, move, ok, tt.edges, tt.move, tt.ok)
		}
	}
}

func TestWantState(t *testing.T) {
	tests := []struct {
		action  uint32
		current bool
		want    bool
	}{
		{stateRemove, true, false},
		{stateRemove, false, false},
		{stateAdd, false, true},
		{stateAdd, true, true},
		{stateToggle, false, true},
		{stateToggle, true, false},
		{7, true, true},
	}
	for _, tt := range tests {
		if got := wantState(tt.action, tt.current); got != tt.want {
			t.Fatalf("wantState(%d, %v) = %v, want %v", tt.action, tt.current, got, tt.want)
		}
	}
}

func TestModifiers(t *testing.T) {
	state := uint16(xproto.ModMask1 | xproto.ModMaskShift | xproto.ModMaskLock | xproto.KeyButMaskButton1)
	if got, want := modifiersFromState(state), platform.ModAlt|platform.ModShift|platform.ModCaps; got != want {
		t.Fatalf("modifiersFromState() = %v, want %v", got, want)
	}

	tests := []struct {
		name  string
		state uint16
		syms  []platform.Keysym
		key   platform.KeyState
		want  platform.Modifiers
	}{
		{"alt released", uint16(xproto.ModMask1), []platform.Keysym{platform.KeyAltL}, platform.KeyReleased, 0},
		{"alt pressed", 0, []platform.Keysym{platform.KeyAltR}, platform.KeyPressed, platform.ModAlt},
		{"tab keeps alt", uint16(xproto.ModMask1), []platform.Keysym{platform.KeyTab}, platform.KeyReleased, platform.ModAlt},
		{"ctrl pressed", uint16(xproto.ModMask1), []platform.Keysym{0xffe3}, platform.KeyPressed, platform.ModAlt | platform.ModCtrl},
		{"super released", uint16(xproto.ModMask4), []platform.Keysym{0xffeb}, platform.KeyReleased, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := modifiersAfter(tt.state, tt.syms, tt.key); got != tt.want {
				t.Fatalf("modifiersAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIgnoreMasks(t *testing.T) {
	tests := []struct {
		name  string
		locks []uint16
		want  []uint16
	}{
		{"none", nil, []uint16{0}},
		{"caps only", []uint16{2, 0, 0}, []uint16{0, 2}},
		{"caps and num", []uint16{2, 16}, []uint16{0, 2, 16, 18}},
		{"duplicate", []uint16{2, 16, 16}, []uint16{0, 2, 16, 18}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ignoreMasks(tt.locks...); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ignoreMasks(%v) = %v, want %v", tt.locks, got, tt.want)
			}
		})
	}
}

func TestApplyStruts(t *testing.T) {
	left := Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}
	// A 30px top panel spanning only the left monitor.
	panel := &ewmh.WmStrutPartial{Top: 30, TopStartX: 0, TopEndX: 1919}

	if !applyStruts(&left, 3840, 1080, []*ewmh.WmStrutPartial{panel}) {
		t.Fatalf("applyStruts(left) reported no change")
	}
	if want := (Monitor{X: 0, Y: 30, Width: 1920, Height: 1050}); left != want {
		t.Fatalf("left = %+v, want %+v", left, want)
	}

	if applyStruts(&right, 3840, 1080, []*ewmh.WmStrutPartial{panel}) {
		t.Fatalf("applyStruts(right) changed a monitor the panel does not cover")
	}

	full := Monitor{Width: 1000, Height: 800}
	dock := fullStrut(&ewmh.WmStrut{Bottom: 40, Left: 60}, 1000, 800)
	applyStruts(&full, 1000, 800, []*ewmh.WmStrutPartial{dock})
	if want := (Monitor{X: 60, Y: 0, Width: 940, Height: 760}); full != want {
		t.Fatalf("full strut = %+v, want %+v", full, want)
	}
}

func TestIntersectionSize(t *testing.T) {
	if got := intersectionSize(0, 0, 100, 100, 50, 50, 150, 150); got != (intersection{w: 50, h: 50}) {
		t.Fatalf("overlap = %+v", got)
	}
	if got := intersectionSize(0, 0, 100, 100, 100, 0, 200, 100); got != (intersection{}) {
		t.Fatalf("touching = %+v, want empty", got)
	}
}

func TestMonitorContaining(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 1920, Width: 1280, Height: 1024},
	}
	if m := monitorContaining(monitors, 2000, 500); m == nil || m.ID != 1 {
		t.Fatalf("monitorContaining(2000,500) = %+v, want monitor 1", m)
	}
	if m := monitorContaining(monitors, 1920, 1050); m != nil {
		t.Fatalf("monitorContaining(1920,1050) = %+v, want nil", m)
	}
}

func TestConfigureValues(t *testing.T) {
	ev := &xproto.ConfigureRequestEvent{
		ValueMask:   xproto.ConfigWindowX | xproto.ConfigWindowWidth | xproto.ConfigWindowStackMode,
		X:           -10,
		Y:           99,
		Width:       640,
		Height:      480,
		BorderWidth: 2,
		StackMode:   xproto.StackModeBelow,
	}
	mask, values := configureValues(ev)
	if mask != ev.ValueMask {
		t.Fatalf("mask = %#x, want %#x", mask, ev.ValueMask)
	}
	want := []uint32{uint32(0xfffffff6), 640, xproto.StackModeBelow}
	if !reflect.DeepEqual(values, want) {
		t.Fatalf("values = %v, want %v", values, want)
	}
}

func TestWithState(t *testing.T) {
	states := []string{"_NET_WM_STATE_ABOVE", "_NET_WM_STATE_MAXIMIZED_VERT"}

	on := withState(states, "_NET_WM_STATE_MAXIMIZED_VERT", true)
	if want := []string{"_NET_WM_STATE_ABOVE", "_NET_WM_STATE_MAXIMIZED_VERT"}; !reflect.DeepEqual(on, want) {
		t.Fatalf("withState(on) = %v, want %v", on, want)
	}

	off := withState(states, "_NET_WM_STATE_MAXIMIZED_VERT", false)
	if want := []string{"_NET_WM_STATE_ABOVE"}; !reflect.DeepEqual(off, want) {
		t.Fatalf("withState(off) = %v, want %v", off, want)
	}
	if len(states) != 2 {
		t.Fatalf("withState modified its input")
	}
}

func TestManageableType(t *testing.T) {
	tests := []struct {
		types []string
		want  bool
	}{
		{nil, true},
		{[]string{"_NET_WM_WINDOW_TYPE_NORMAL"}, true},
		{[]string{"_NET_WM_WINDOW_TYPE_DIALOG"}, true},
		{[]string{"_NET_WM_WINDOW_TYPE_DOCK"}, false},
		{[]string{"_NET_WM_WINDOW_TYPE_DESKTOP"}, false},
		{[]string{"_KDE_NET_WM_WINDOW_TYPE_OVERRIDE", "_NET_WM_WINDOW_TYPE_NORMAL"}, true},
		{[]string{"_NET_WM_WINDOW_TYPE_TOOLBAR"}, false},
	}
	for _, tt := range tests {
		if got := manageableType(tt.types); got != tt.want {
			t.Fatalf("manageableType(%v) = %v, want %v", tt.types, got, tt.want)
		}
	}
}

func TestConfigureNotify(t *testing.T) {
	ev := configureNotify(42, platform.Rect{X: -5, Y: 10, Width: 0, Height: 300})
	if ev.Window != 42 || ev.Event != 42 || ev.X != -5 || ev.Y != 10 || ev.Width != 1 || ev.Height != 300 {
		t.Fatalf("configureNotify() = %+v", ev)
	}
}

func TestClientOfAndSameWindows(t *testing.T) {
	const mask = 0x001fffff
	if got := clientOf(0x00a00003, mask); got != 0x00a00000 {
		t.Fatalf("clientOf() = %#x, want 0xa00000", got)
	}
	if clientOf(0x00a00003, mask) != clientOf(0x00a1ffff, mask) {
		t.Fatalf("windows of one connection map to different clients")
	}

	if !sameWindows(nil, []xproto.Window{}) {
		t.Fatalf("sameWindows(nil, empty) = false")
	}
	if sameWindows([]xproto.Window{1, 2}, []xproto.Window{2, 1}) {
		t.Fatalf("sameWindows ignores order")
	}
}

func TestKeyEventBytes(t *testing.T) {
	const root, win = xproto.Window(0x100), xproto.Window(0x400003)
	tests := []struct {
		name     string
		state    platform.KeyState
		wantCode byte
	}{
		{"press", platform.KeyPressed, xproto.KeyPress},
		{"release", platform.KeyReleased, xproto.KeyRelease},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compositor.NotifyKey{TimeMsec: 1234, Keycode: 38, State: tt.state}
			data := keyEventBytes(root, win, e, xproto.ModMask1)
			if len(data) != 32 {
				t.Fatalf("len = %d, want 32", len(data))
			}
			if data[0] != tt.wantCode || data[1] != 38 {
				t.Fatalf("code, detail = %d, %d; want %d, 38", data[0], data[1], tt.wantCode)
			}
			ev := xproto.KeyPressEventNew(data).(xproto.KeyPressEvent)
			if ev.Event != win || ev.Root != root || ev.State != xproto.ModMask1 || ev.Time != 1234 {
				t.Fatalf("decoded %+v", ev)
			}
		})
	}
}
