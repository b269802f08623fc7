// Package binding разбирает текстовое описание горячей клавиши
// ("Ctrl+Alt+F8") в структурную привязку: маска модификаторов,
// код клавиши и каноничная строка для отображения.
package binding

import (
	"fmt"
	"strings"
)

// Modifiers - битовая маска модификаторов.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModAlt
	ModShift
	ModWin
)

// Binding описывает одну зарегистрированную комбинацию.
// Значение неизменяемо: набор привязок строится один раз при старте.
type Binding struct {
	// Name - стабильный идентификатор действия ("copy", "state_dump").
	Name string
	// Mods - маска модификаторов.
	Mods Modifiers
	// Key - нормализованный токен клавиши ("c", "f8", "pageup").
	Key string
	// Display - каноничное представление для диагностики ("Ctrl+C").
	Display string
	// AllowRepeat разрешает автоповтор клавиши на уровне ОС.
	AllowRepeat bool
}

// ParseError - ошибка разбора комбинации. Фатальна только для
// этой привязки: остальные регистрируются как обычно.
type ParseError struct {
	Combo  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("некорректная комбинация %q: %s", e.Combo, e.Reason)
}

// aliasKeys - именованные клавиши, принимаемые в любом регистре.
// Значение - каноничный токен.
var aliasKeys = map[string]string{
	"esc":       "esc",
	"escape":    "esc",
	"tab":       "tab",
	"enter":     "enter",
	"return":    "enter",
	"space":     "space",
	"backspace": "backspace",
	"delete":    "delete",
	"home":      "home",
	"end":       "end",
	"pageup":    "pageup",
	"pagedown":  "pagedown",
	"left":      "left",
	"right":     "right",
	"up":        "up",
	"down":      "down",
}

// displayKeys - отображаемые имена каноничных токенов.
var displayKeys = map[string]string{
	"esc":       "Esc",
	"tab":       "Tab",
	"enter":     "Enter",
	"space":     "Space",
	"backspace": "Backspace",
	"delete":    "Delete",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"pagedown":  "PageDown",
	"left":      "Left",
	"right":     "Right",
	"up":        "Up",
	"down":      "Down",
}

// Parse разбирает текстовую комбинацию в Binding. Разделители "+" и "-"
// равнозначны, регистр не важен. Ошибка возвращается, если в комбинации
// нет клавиши кроме модификаторов, клавиш больше одной или токен неизвестен.
func Parse(name, combo string, allowRepeat bool) (Binding, error) {
	normalized := strings.ReplaceAll(combo, "-", "+")
	var mods Modifiers
	key := ""

	for _, part := range strings.Split(normalized, "+") {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		switch token {
		case "ctrl", "control":
			mods |= ModCtrl
		case "alt":
			mods |= ModAlt
		case "shift":
			mods |= ModShift
		case "win", "windows":
			mods |= ModWin
		default:
			parsed, ok := parseKeyToken(token)
			if !ok {
				return Binding{}, &ParseError{Combo: combo, Reason: fmt.Sprintf("неизвестная клавиша %q", part)}
			}
			if key != "" {
				return Binding{}, &ParseError{Combo: combo, Reason: "больше одной клавиши в комбинации"}
			}
			key = parsed
		}
	}

	if key == "" {
		return Binding{}, &ParseError{Combo: combo, Reason: "нет клавиши кроме модификаторов"}
	}

	b := Binding{
		Name:        name,
		Mods:        mods,
		Key:         key,
		AllowRepeat: allowRepeat,
	}
	b.Display = buildDisplay(b)
	return b, nil
}

func parseKeyToken(token string) (string, bool) {
	if len(token) == 1 {
		c := token[0]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			return token, true
		}
		return "", false
	}
	if fn, ok := parseFunctionKey(token); ok {
		return fn, true
	}
	if alias, ok := aliasKeys[token]; ok {
		return alias, true
	}
	return "", false
}

// parseFunctionKey принимает f1..f24.
func parseFunctionKey(token string) (string, bool) {
	if len(token) < 2 || token[0] != 'f' {
		return "", false
	}
	n := 0
	for _, c := range token[1:] {
		if c < '0' || c > '9' {
			return "", false
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 24 {
		return "", false
	}
	return fmt.Sprintf("f%d", n), true
}

// buildDisplay собирает каноничную строку: модификаторы в фиксированном
// порядке, затем клавиша. Parse(Display) всегда возвращает ту же привязку.
func buildDisplay(b Binding) string {
	var parts []string
	if b.Mods&ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if b.Mods&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if b.Mods&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if b.Mods&ModWin != 0 {
		parts = append(parts, "Win")
	}
	if display, ok := displayKeys[b.Key]; ok {
		parts = append(parts, display)
	} else {
		parts = append(parts, strings.ToUpper(b.Key))
	}
	return strings.Join(parts, "+")
}
