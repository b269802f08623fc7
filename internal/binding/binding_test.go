package binding

import (
	"errors"
	"fmt"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		combo   string
		mods    Modifiers
		key     string
		display string
	}{
		{"Ctrl+C", ModCtrl, "c", "Ctrl+C"},
		{"ctrl+c", ModCtrl, "c", "Ctrl+C"},
		{"Control+Shift+V", ModCtrl | ModShift, "v", "Ctrl+Shift+V"},
		{"Ctrl+Alt+F8", ModCtrl | ModAlt, "f8", "Ctrl+Alt+F8"},
		{"F8", 0, "f8", "F8"},
		{"f24", 0, "f24", "F24"},
		{"Win+Space", ModWin, "space", "Win+Space"},
		{"windows+escape", ModWin, "esc", "Win+Esc"},
		{"Ctrl-Alt-Delete", ModCtrl | ModAlt, "delete", "Ctrl+Alt+Delete"},
		{"shift+pageup", ModShift, "pageup", "Shift+PageUp"},
		{"Alt+Enter", ModAlt, "enter", "Alt+Enter"},
		{"return", 0, "enter", "Enter"},
		{"Ctrl+7", ModCtrl, "7", "Ctrl+7"},
		{" Ctrl + C ", ModCtrl, "c", "Ctrl+C"},
	}

	for _, tt := range tests {
		t.Run(tt.combo, func(t *testing.T) {
			b, err := Parse("copy", tt.combo, false)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.combo, err)
			}
			if b.Mods != tt.mods {
				t.Errorf("модификаторы = %v, ожидалось %v", b.Mods, tt.mods)
			}
			if b.Key != tt.key {
				t.Errorf("клавиша = %q, ожидалось %q", b.Key, tt.key)
			}
			if b.Display != tt.display {
				t.Errorf("display = %q, ожидалось %q", b.Display, tt.display)
			}
			if b.Name != "copy" {
				t.Errorf("имя = %q", b.Name)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"Ctrl",
		"Ctrl+Shift",
		"Ctrl+",
		"Ctrl+Kanji",
		"F25",
		"F0",
		"Ctrl+C+V",
		"Ctrl+!",
	}

	for _, combo := range tests {
		t.Run(combo, func(t *testing.T) {
			_, err := Parse("copy", combo, false)
			if err == nil {
				t.Fatalf("Parse(%q): ожидалась ошибка", combo)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ожидался *ParseError, получено %T", err)
			}
		})
	}
}

// TestDisplayRoundTrip проверяет, что разбор каноничной строки даёт
// исходную привязку для всех клавиш, которые парсер умеет порождать.
func TestDisplayRoundTrip(t *testing.T) {
	var keys []string
	for c := 'a'; c <= 'z'; c++ {
		keys = append(keys, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		keys = append(keys, string(c))
	}
	for n := 1; n <= 24; n++ {
		keys = append(keys, fmt.Sprintf("f%d", n))
	}
	for alias := range aliasKeys {
		keys = append(keys, alias)
	}

	masks := []Modifiers{0, ModCtrl, ModAlt, ModShift, ModWin, ModCtrl | ModAlt, ModCtrl | ModAlt | ModShift | ModWin}

	for _, key := range keys {
		for _, mods := range masks {
			combo := ""
			if mods&ModCtrl != 0 {
				combo += "ctrl+"
			}
			if mods&ModAlt != 0 {
				combo += "alt+"
			}
			if mods&ModShift != 0 {
				combo += "shift+"
			}
			if mods&ModWin != 0 {
				combo += "win+"
			}
			combo += key

			original, err := Parse("copy", combo, false)
			if err != nil {
				t.Fatalf("Parse(%q): %v", combo, err)
			}
			reparsed, err := Parse("copy", original.Display, false)
			if err != nil {
				t.Fatalf("Parse(Display=%q): %v", original.Display, err)
			}
			if reparsed != original {
				t.Errorf("round-trip %q: %+v != %+v", combo, reparsed, original)
			}
		}
	}
}
