// Package i18n предоставляет строки интерфейса и отображаемые имена языков.
package i18n

import "sync"

// Language представляет язык интерфейса.
type Language string

const (
	RU Language = "ru"
	EN Language = "en"
)

var (
	mu      sync.RWMutex
	current = RU // Язык по умолчанию
)

// Строки интерфейса для поддерживаемых языков.
var translations = map[Language]map[string]string{
	RU: {
		"app_name":    "CCTrans",
		"app_tooltip": "CCTrans - перевод скопированного текста",

		// Tray menu
		"tray_dest":        "Перевод на",
		"tray_toggle":      "Сменить язык",
		"tray_toggle_hint": "Поменять направление перевода",
		"tray_reboot":      "Перезапуск",
		"tray_reboot_hint": "Перерегистрировать горячие клавиши и сбросить переводчик",
		"tray_quit":               "Выход",
		"tray_quit_hint":          "Закрыть приложение",
		"tray_notifications":      "Уведомления",
		"tray_notifications_hint": "Показывать системные уведомления",

		// Notifications
		"notify_degraded":  "Горячие клавиши недоступны",
		"notify_clipboard": "Не удалось прочитать буфер обмена",
		"notify_ready":     "Горячие клавиши активны",

		// Dialogs
		"dialog_title":      "CCTrans",
		"dialog_original":   "Оригинал",
		"dialog_translated": "Перевод",
		"dialog_already":    "CCTrans уже запущен.",
	},
	EN: {
		"app_name":    "CCTrans",
		"app_tooltip": "CCTrans - translate copied text",

		"tray_dest":        "Translate to",
		"tray_toggle":      "Toggle language",
		"tray_toggle_hint": "Swap translation direction",
		"tray_reboot":      "Reboot",
		"tray_reboot_hint": "Re-register hotkeys and reset the translator",
		"tray_quit":               "Exit",
		"tray_quit_hint":          "Close the application",
		"tray_notifications":      "Notifications",
		"tray_notifications_hint": "Show system notifications",

		"notify_degraded":  "Global hotkeys are unavailable",
		"notify_clipboard": "Failed to read the clipboard",
		"notify_ready":     "Global hotkeys are active",

		"dialog_title":      "CCTrans",
		"dialog_original":   "Original",
		"dialog_translated": "Translated",
		"dialog_already":    "CCTrans is already running.",
	},
}

// Отображаемые имена языков перевода.
var languageNames = map[string]string{
	"ja":   "японский",
	"en":   "английский",
	"ru":   "русский",
	"auto": "автоопределение",
}

// SetLanguage устанавливает язык интерфейса.
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := translations[lang]; ok {
		current = lang
	}
}

// T возвращает строку интерфейса по ключу. Неизвестный ключ
// возвращается как есть.
func T(key string) string {
	mu.RLock()
	defer mu.RUnlock()
	if s, ok := translations[current][key]; ok && s != "" {
		return s
	}
	if s, ok := translations[RU][key]; ok && s != "" {
		return s
	}
	return key
}

// LanguageName возвращает отображаемое имя кода языка перевода.
// Пустой код означает автоопределение; незнакомый код возвращается как есть.
func LanguageName(code string) string {
	if code == "" {
		code = "auto"
	}
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
