//go:build linux

package hotkey

import (
	xhotkey "golang.design/x/hotkey"

	"cctrans/internal/binding"
)

// platformModifiers переводит маску привязки в модификаторы X11.
func platformModifiers(mods binding.Modifiers) ([]xhotkey.Modifier, error) {
	var out []xhotkey.Modifier
	if mods&binding.ModCtrl != 0 {
		out = append(out, xhotkey.ModCtrl)
	}
	if mods&binding.ModShift != 0 {
		out = append(out, xhotkey.ModShift)
	}
	if mods&binding.ModAlt != 0 {
		out = append(out, xhotkey.Mod1) // Alt = Mod1 на X11
	}
	if mods&binding.ModWin != 0 {
		out = append(out, xhotkey.Mod4) // Super/Win = Mod4 на X11
	}
	return out, nil
}
