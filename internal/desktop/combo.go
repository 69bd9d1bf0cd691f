package desktop

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

var keys = map[string]hotkey.Key{
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"up":    hotkey.KeyUp,
	"down":  hotkey.KeyDown,
	"left":  hotkey.KeyLeft,
	"right": hotkey.KeyRight,
	"space": hotkey.KeySpace,
	"enter": hotkey.KeyReturn,
	"esc":   hotkey.KeyEscape,
}

// parseCombo turns "cmd+shift+h" into platform modifiers and a key. The last
// segment is the key; everything before it must be a known modifier.
func parseCombo(combo string) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(combo)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return nil, 0, fmt.Errorf("empty hotkey %q", combo)
	}

	key, ok := keys[parts[len(parts)-1]]
	if !ok {
		return nil, 0, fmt.Errorf("unknown key in %q", combo)
	}

	mods := make([]hotkey.Modifier, 0, len(parts)-1)
	for _, name := range parts[:len(parts)-1] {
		mod, ok := modifier(name)
		if !ok {
			return nil, 0, fmt.Errorf("unknown modifier %q in %q", name, combo)
		}
		mods = append(mods, mod)
	}
	return mods, key, nil
}
