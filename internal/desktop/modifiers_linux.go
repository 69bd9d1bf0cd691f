//go:build linux

package desktop

import "golang.design/x/hotkey"

// X11 has no command key; cmd maps to the super key (Mod4).
func modifier(name string) (hotkey.Modifier, bool) {
	switch name {
	case "cmd", "super":
		return hotkey.Mod4, true
	case "ctrl":
		return hotkey.ModCtrl, true
	case "shift":
		return hotkey.ModShift, true
	case "alt", "option":
		return hotkey.Mod1, true
	}
	return 0, false
}
