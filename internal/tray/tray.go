// Package tray предоставляет системный трей с меню.
package tray

import (
	"github.com/getlantern/systray"

	"cctrans/embedded"
	"cctrans/internal/i18n"
)

// Callbacks содержит обработчики событий меню.
type Callbacks struct {
	// OnToggleLanguage меняет направление перевода и возвращает
	// новый код языка назначения для строки статуса.
	OnToggleLanguage func() string
	// OnNotificationsToggle переключает уведомления и возвращает
	// новое состояние для галочки меню.
	OnNotificationsToggle func() bool
	OnReboot              func()
	OnQuit                func()
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks Callbacks
	status    *systray.MenuItem
	toggleBtn *systray.MenuItem
	notifyOn  *systray.MenuItem
	rebootBtn *systray.MenuItem
	quitBtn   *systray.MenuItem

	dest          string // текущий язык назначения для строки статуса
	notifications bool   // начальное состояние галочки уведомлений
}

// New создаёт новый Tray. dest - начальный язык назначения.
func New(callbacks Callbacks, dest string, notifications bool) *Tray {
	return &Tray{
		callbacks:     callbacks,
		dest:          dest,
		notifications: notifications,
	}
}

// Run запускает системный трей. Блокирующая функция.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(embedded.Icon)
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	// Статус
	t.status = systray.AddMenuItem(t.statusTitle(), "")
	t.status.Disable()

	systray.AddSeparator()

	// Направление перевода
	t.toggleBtn = systray.AddMenuItem(i18n.T("tray_toggle"), i18n.T("tray_toggle_hint"))

	// Уведомления
	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), t.notifications)

	// Перезапуск
	t.rebootBtn = systray.AddMenuItem(i18n.T("tray_reboot"), i18n.T("tray_reboot_hint"))

	systray.AddSeparator()

	// Выход
	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	// Обработка событий меню
	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		// Направление перевода
		case <-t.toggleBtn.ClickedCh:
			if t.callbacks.OnToggleLanguage != nil {
				t.SetLanguage(t.callbacks.OnToggleLanguage())
			}

		// Уведомления
		case <-t.notifyOn.ClickedCh:
			if t.callbacks.OnNotificationsToggle != nil {
				if t.callbacks.OnNotificationsToggle() {
					t.notifyOn.Check()
				} else {
					t.notifyOn.Uncheck()
				}
			}

		// Перезапуск
		case <-t.rebootBtn.ClickedCh:
			if t.callbacks.OnReboot != nil {
				t.callbacks.OnReboot()
			}

		// Выход
		case <-t.quitBtn.ClickedCh:
			if t.callbacks.OnQuit != nil {
				t.callbacks.OnQuit()
			}
			systray.Quit()
		}
	}
}

// SetLanguage обновляет строку статуса новым языком назначения.
func (t *Tray) SetLanguage(dest string) {
	if dest != "" {
		t.dest = dest
	}
	if t.status != nil {
		t.status.SetTitle(t.statusTitle())
	}
	systray.SetTooltip(i18n.T("app_tooltip"))
}

func (t *Tray) statusTitle() string {
	return i18n.T("tray_dest") + ": " + i18n.LanguageName(t.dest)
}

func (t *Tray) onExit() {
	// Cleanup при выходе
}

// Quit закрывает системный трей.
func (t *Tray) Quit() {
	systray.Quit()
}
