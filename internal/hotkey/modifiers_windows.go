//go:build windows

package hotkey

import (
	xhotkey "golang.design/x/hotkey"

	"cctrans/internal/binding"
)

// platformModifiers переводит маску привязки в модификаторы Windows.
func platformModifiers(mods binding.Modifiers) ([]xhotkey.Modifier, error) {
	var out []xhotkey.Modifier
	if mods&binding.ModCtrl != 0 {
		out = append(out, xhotkey.ModCtrl)
	}
	if mods&binding.ModShift != 0 {
		out = append(out, xhotkey.ModShift)
	}
	if mods&binding.ModAlt != 0 {
		out = append(out, xhotkey.ModAlt)
	}
	if mods&binding.ModWin != 0 {
		out = append(out, xhotkey.ModWin)
	}
	return out, nil
}
