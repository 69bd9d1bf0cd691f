//go:build darwin

package desktop

import "golang.design/x/hotkey"

func modifier(name string) (hotkey.Modifier, bool) {
	switch name {
	case "cmd", "super":
		return hotkey.ModCmd, true
	case "ctrl":
		return hotkey.ModCtrl, true
	case "shift":
		return hotkey.ModShift, true
	case "alt", "option":
		return hotkey.ModOption, true
	}
	return 0, false
}
