package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/cyclewm/internal/platform"
)

// Passive grabs on the root window. Everything else reaches clients
// directly; while a cycle is running the whole keyboard is grabbed.
var rootBindings = []string{"Mod1-Tab", "Mod1-Escape"}

var ignoreModsOnce sync.Once

// grabBindings installs the passive key grabs for the compositor shortcuts.
func grabBindings(xu *xgbutil.XUtil, root xproto.Window) error {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	for _, binding := range rootBindings {
		mods, keycodes, err := keybind.ParseString(xu, binding)
		if err != nil {
			return fmt.Errorf("parse binding %s: %w", binding, err)
		}
		for _, keycode := range keycodes {
			if err := keybind.GrabChecked(xu, root, mods, keycode); err != nil {
				return fmt.Errorf("grab %s: %w", binding, err)
			}
		}
	}
	return nil
}

// keysymsFor returns the unshifted and shifted keysyms of keycode, without
// duplicates or NoSymbol.
func keysymsFor(xu *xgbutil.XUtil, keycode xproto.Keycode) []platform.Keysym {
	var syms []platform.Keysym
	for column := byte(0); column < 2; column++ {
		sym := keybind.KeysymGet(xu, keycode, column)
		if sym == 0 {
			continue
		}
		if len(syms) > 0 && syms[0] == platform.Keysym(sym) {
			continue
		}
		syms = append(syms, platform.Keysym(sym))
	}
	return syms
}

// modifiersFromState converts a core event state mask. The low byte of the
// mask uses the same bit layout as platform.Modifiers.
func modifiersFromState(state uint16) platform.Modifiers {
	return platform.Modifiers(state & 0xff)
}

// modifiersAfter returns the modifier state after a key event. Core events
// report the state before the key changed it.
func modifiersAfter(state uint16, syms []platform.Keysym, keyState platform.KeyState) platform.Modifiers {
	mods := modifiersFromState(state)
	for _, sym := range syms {
		mask := modifierForKeysym(sym)
		if mask == 0 {
			continue
		}
		if keyState == platform.KeyPressed {
			mods |= mask
		} else {
			mods &^= mask
		}
	}
	return mods
}

func modifierForKeysym(sym platform.Keysym) platform.Modifiers {
	switch sym {
	case platform.KeyAltL, platform.KeyAltR:
		return platform.ModAlt
	case 0xffe1, 0xffe2: // Shift_L, Shift_R
		return platform.ModShift
	case 0xffe3, 0xffe4: // Control_L, Control_R
		return platform.ModCtrl
	case 0xffeb, 0xffec: // Super_L, Super_R
		return platform.ModLogo
	default:
		return 0
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = ignoreMasks(caps, numLock, scrollLock)
}

// ignoreMasks returns every combination of the given lock masks, including
// the empty one. Zero and repeated masks are skipped.
func ignoreMasks(locks ...uint16) []uint16 {
	var base []uint16
	for _, mask := range locks {
		if mask == 0 {
			continue
		}
		dup := false
		for _, b := range base {
			if b == mask {
				dup = true
				break
			}
		}
		if !dup {
			base = append(base, mask)
		}
	}

	ignore := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
